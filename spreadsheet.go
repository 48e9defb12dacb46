package reportbro

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// cellStyle describes the format of a spreadsheet cell. Each distinct style
// is registered once in the workbook and referenced by its style id.
type cellStyle struct {
	bold            bool
	italic          bool
	underline       bool
	strikethrough   bool
	textWrap        bool
	align           string
	valign          string
	fontColor       string
	backgroundColor string
	borderColor     string
	borderLeft      bool
	borderTop       bool
	borderRight     bool
	borderBottom    bool
	numFormat       string
}

// spreadsheetRenderer writes report elements into an xlsx workbook. Rows and
// columns are zero-based, column widths are tracked and applied when the
// workbook is saved.
type spreadsheetRenderer struct {
	workbook     *excelize.File
	sheet        string
	columnWidths []float64
}

func newSpreadsheetRenderer(creationDate time.Time) *spreadsheetRenderer {
	workbook := excelize.NewFile()
	renderer := &spreadsheetRenderer{
		workbook: workbook,
		sheet:    workbook.GetSheetName(0),
	}
	if !creationDate.IsZero() {
		created := creationDate.Format(time.RFC3339)
		_ = workbook.SetDocProps(&excelize.DocProperties{Created: created})
	}
	return renderer
}

// addFormat registers the cell style in the workbook and returns its id.
func (r *spreadsheetRenderer) addFormat(style *cellStyle) (int, error) {
	font := &excelize.Font{
		Bold:   style.bold,
		Italic: style.italic,
		Strike: style.strikethrough,
	}
	if style.underline {
		font.Underline = "single"
	}
	if style.fontColor != "" {
		font.Color = style.fontColor
	}
	xlsxStyle := &excelize.Style{
		Font: font,
		Alignment: &excelize.Alignment{
			Horizontal: style.align,
			Vertical:   style.valign,
			WrapText:   style.textWrap,
		},
	}
	if style.backgroundColor != "" {
		xlsxStyle.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{style.backgroundColor},
		}
	}
	borderColor := style.borderColor
	if borderColor == "" {
		borderColor = "#000000"
	}
	if style.borderLeft {
		xlsxStyle.Border = append(xlsxStyle.Border, excelize.Border{Type: "left", Color: borderColor, Style: 1})
	}
	if style.borderTop {
		xlsxStyle.Border = append(xlsxStyle.Border, excelize.Border{Type: "top", Color: borderColor, Style: 1})
	}
	if style.borderRight {
		xlsxStyle.Border = append(xlsxStyle.Border, excelize.Border{Type: "right", Color: borderColor, Style: 1})
	}
	if style.borderBottom {
		xlsxStyle.Border = append(xlsxStyle.Border, excelize.Border{Type: "bottom", Color: borderColor, Style: 1})
	}
	if style.numFormat != "" {
		numFormat := style.numFormat
		xlsxStyle.CustomNumFmt = &numFormat
	}
	return r.workbook.NewStyle(xlsxStyle)
}

// updateColumnWidth keeps the maximum width used by any cell in the column.
func (r *spreadsheetRenderer) updateColumnWidth(col int, width float64) {
	for col >= len(r.columnWidths) {
		r.columnWidths = append(r.columnWidths, -1)
	}
	if width > r.columnWidths[col] {
		r.columnWidths[col] = width
	}
}

// write puts a value into the given cell, a colspan > 1 merges the cell with
// its right neighbors. A style id of 0 leaves the cell format unchanged.
func (r *spreadsheetRenderer) write(row, col, colspan int, value any, styleID int, width float64, url string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if colspan > 1 {
		endCell, err := excelize.CoordinatesToCellName(col+colspan, row+1)
		if err != nil {
			return err
		}
		if err := r.workbook.MergeCell(r.sheet, cell, endCell); err != nil {
			return err
		}
		if err := r.workbook.SetCellValue(r.sheet, cell, value); err != nil {
			return err
		}
		if styleID != 0 {
			if err := r.workbook.SetCellStyle(r.sheet, cell, endCell, styleID); err != nil {
				return err
			}
		}
	} else {
		if err := r.workbook.SetCellValue(r.sheet, cell, value); err != nil {
			return err
		}
		if styleID != 0 {
			if err := r.workbook.SetCellStyle(r.sheet, cell, cell, styleID); err != nil {
				return err
			}
		}
		if url == "" {
			r.updateColumnWidth(col, width)
		}
	}
	if url != "" {
		if err := r.workbook.SetCellHyperLink(r.sheet, cell, url, "External"); err != nil {
			return err
		}
	}
	return nil
}

// insertImage places an image with its top-left corner in the given cell.
func (r *spreadsheetRenderer) insertImage(row, col int, filename string, data []byte, imageType string, width float64, url string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	picture := &excelize.Picture{
		Extension: "." + imageType,
		File:      data,
	}
	if url != "" {
		picture.Format = &excelize.GraphicOptions{
			Hyperlink:     url,
			HyperlinkType: "External",
		}
	}
	if err := r.workbook.AddPictureFromBytes(r.sheet, cell, picture); err != nil {
		return err
	}
	r.updateColumnWidth(col, width)
	return nil
}

// finish applies the collected column widths and writes the workbook.
func (r *spreadsheetRenderer) finish(w io.Writer) error {
	for i, columnWidth := range r.columnWidths {
		if columnWidth > 0 {
			colName, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			// setting the column width is an approximation, in a spreadsheet
			// the width is the number of characters in the default font
			if err := r.workbook.SetColWidth(r.sheet, colName, colName, columnWidth/7); err != nil {
				return err
			}
		}
	}
	_, err := r.workbook.WriteTo(w)
	return err
}
