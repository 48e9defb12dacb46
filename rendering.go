package reportbro

import (
	"bytes"
	"hash/fnv"
	"strconv"
)

// imageRenderElement is the rendered slice of an image element. Images are
// never split, the whole image is placed on one page.
type imageRenderElement struct {
	report              *Report
	objectID            int
	x                   float64
	width               float64
	height              float64
	renderY             float64
	renderBottom        float64
	backgroundColor     Color
	horizontalAlignment HorizontalAlignment
	verticalAlignment   VerticalAlignment
	preparedLink        string
	source              string
	imageKey            string
}

func newImageRenderElement(report *Report, renderY float64, image *ImageElement) *imageRenderElement {
	return &imageRenderElement{
		report:              report,
		objectID:            image.id,
		x:                   image.x,
		width:               image.width,
		height:              image.height,
		renderY:             renderY,
		renderBottom:        renderY + image.height,
		backgroundColor:     image.style.backgroundColor,
		horizontalAlignment: image.style.horizontalAlignment,
		verticalAlignment:   image.style.verticalAlignment,
		preparedLink:        image.preparedLink,
		source:              image.source,
		imageKey:            image.imageKey,
	}
}

func (r *imageRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	x := r.x + containerOffsetX
	y := r.renderY + containerOffsetY
	if !r.backgroundColor.Transparent {
		doc.SetFillColor(r.backgroundColor.R, r.backgroundColor.G, r.backgroundColor.B)
		doc.Rect(x, y, r.width, r.height, "F")
	}
	if r.imageKey == "" {
		return nil
	}
	img := r.report.getImage(r.imageKey)
	if img == nil || img.data == nil {
		return nil
	}
	field := "image"
	if r.source != "" {
		field = "source"
	}
	data, imageType, err := img.pdfImage()
	if err != nil {
		return newErrorInfo(msgKeyLoadingImageFailed, r.objectID, field, err.Error())
	}
	imageWidth, imageHeight, err := doc.RegisterImage(r.imageKey, imageType, bytes.NewReader(data))
	if err != nil {
		return newErrorInfo(msgKeyLoadingImageFailed, r.objectID, field, err.Error())
	}

	// horizontal and vertical alignment of image within given width and
	// height by keeping the original image aspect ratio
	displayWidth, displayHeight := getImageDisplaySize(r.width, r.height, imageWidth, imageHeight)
	var offsetX, offsetY float64
	switch r.horizontalAlignment {
	case HAlignCenter:
		offsetX = (r.width - displayWidth) / 2
	case HAlignRight:
		offsetX = r.width - displayWidth
	}
	switch r.verticalAlignment {
	case VAlignMiddle:
		offsetY = (r.height - displayHeight) / 2
	case VAlignBottom:
		offsetY = r.height - displayHeight
	}
	doc.DrawImage(r.imageKey, x+offsetX, y+offsetY, displayWidth, displayHeight)
	if r.preparedLink != "" {
		doc.LinkURL(x+offsetX, y+offsetY, displayWidth, displayHeight, r.preparedLink)
	}
	return nil
}

func (r *imageRenderElement) getRenderBottom() float64 { return r.renderBottom }

func (r *imageRenderElement) cleanup() {}

// barCodeRenderElement registers the generated bar code image with the pdf
// document and draws it with optional value text below the bars.
type barCodeRenderElement struct {
	x            float64
	width        float64
	renderY      float64
	renderBottom float64
	content      string
	contentWidth float64
	renderHeight float64
	displayValue bool
	rotate       bool
	imageKey     string
	imageBytes   []byte
	barcodeWidth float64
	imageHeight  float64
}

func newBarCodeRenderElement(report *Report, renderY, contentWidth, renderHeight float64, barcode *BarCodeElement) *barCodeRenderElement {
	h := fnv.New32a()
	h.Write([]byte(barcode.format))
	h.Write([]byte(barcode.preparedContent))
	return &barCodeRenderElement{
		x:            barcode.x,
		width:        barcode.width,
		renderY:      renderY,
		renderBottom: renderY + renderHeight,
		content:      barcode.preparedContent,
		contentWidth: contentWidth,
		renderHeight: renderHeight,
		displayValue: barcode.displayValue,
		rotate:       barcode.rotate,
		imageKey:     "barcode_" + strconv.Itoa(barcode.id) + "_" + strconv.FormatUint(uint64(h.Sum32()), 16),
		imageBytes:   barcode.imageBytes,
		barcodeWidth: barcode.barcodeWidth,
		imageHeight:  barcode.barcodeHeight,
	}
}

func (r *barCodeRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	if r.imageBytes == nil {
		return nil
	}
	x := r.x + containerOffsetX
	y := r.renderY + containerOffsetY
	if _, _, err := doc.RegisterImage(r.imageKey, "png", bytes.NewReader(r.imageBytes)); err != nil {
		return newInternalError("registering barcode image failed: " + err.Error())
	}
	if r.rotate {
		doc.DrawImage(r.imageKey, x, y, r.width, r.barcodeWidth)
		return nil
	}
	doc.DrawImage(r.imageKey, x, y, r.barcodeWidth, r.imageHeight)
	if r.displayValue {
		if err := doc.SetFont("courier", "B", 18); err != nil {
			return err
		}
		doc.SetTextColor(0, 0, 0)
		offsetX := (r.width - r.contentWidth) / 2
		doc.Text(x+offsetX, y+r.imageHeight+20, r.content)
	}
	return nil
}

func (r *barCodeRenderElement) getRenderBottom() float64 { return r.renderBottom }

func (r *barCodeRenderElement) cleanup() {
	r.imageBytes = nil
}

// tableBandSlice is one rendered table row, kept with its cells so column
// borders can be drawn colspan aware.
type tableBandSlice struct {
	height          float64
	backgroundColor Color
	elements        []renderElement
	cells           []*TableTextElement
}

type tableRenderElement struct {
	report       *Report
	table        *TableElement
	x            float64
	width        float64
	renderY      float64
	renderBottom float64
	height       float64
	bands        []tableBandSlice
	complete     bool
}

func newTableRenderElement(report *Report, table *TableElement, renderY float64) *tableRenderElement {
	return &tableRenderElement{
		report:       report,
		table:        table,
		x:            table.x,
		width:        table.width,
		renderY:      renderY,
		renderBottom: renderY,
	}
}

func (r *tableRenderElement) isEmpty() bool { return len(r.bands) == 0 }

func (r *tableRenderElement) addBand(band *TableBandElement, rowIndex int) {
	if band.renderingComplete || !band.alwaysPrintOnSamePage {
		bandHeight := band.getRenderBottom()
		backgroundColor := band.backgroundColor
		if band.bandType == BandContent && !band.alternateBackgroundColor.Transparent && rowIndex%2 == 1 {
			backgroundColor = band.alternateBackgroundColor
		}
		r.bands = append(r.bands, tableBandSlice{
			height:          bandHeight,
			backgroundColor: backgroundColor,
			elements:        band.getRenderElements(),
			cells:           band.printedCells,
		})
		r.height += bandHeight
		r.renderBottom += bandHeight
	}
}

func (r *tableRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	x := r.x + containerOffsetX
	x1 := x
	x2 := x1 + r.width
	y := r.renderY + containerOffsetY
	rowY := y
	for _, band := range r.bands {
		if !band.backgroundColor.Transparent {
			doc.SetFillColor(band.backgroundColor.R, band.backgroundColor.G, band.backgroundColor.B)
			doc.Rect(x, rowY, r.width, band.height, "F")
		}
		for _, element := range band.elements {
			if err := element.renderPDF(x, rowY, doc); err != nil {
				return err
			}
		}
		rowY += band.height
	}

	if !r.isEmpty() && r.table.border != BorderNone {
		doc.SetDrawColor(r.table.borderColor.R, r.table.borderColor.G, r.table.borderColor.B)
		doc.SetLineWidth(r.table.borderWidth)
		halfBorderWidth := r.table.borderWidth / 2
		x1 += halfBorderWidth
		x2 -= halfBorderWidth
		y1 := y
		y2 := rowY
		if r.table.border == BorderGrid || r.table.border == BorderFrameRow || r.table.border == BorderFrame {
			// draw left and right table borders
			doc.Line(x1, y1, x1, y2)
			doc.Line(x2, y1, x2, y2)
		}
		lineY := y1
		doc.Line(x1, y1, x2, y1)
		if r.table.border != BorderFrame {
			// draw lines between table rows
			for _, band := range r.bands[:len(r.bands)-1] {
				lineY += band.height
				doc.Line(x1, lineY, x2, lineY)
			}
		}
		doc.Line(x1, y2, x2, y2)
		if r.table.border == BorderGrid {
			// rows can have different cells (colspan) than other rows so
			// cell borders are drawn separately if necessary
			cells := r.bands[0].cells
			colX := x1
			colY1 := y1
			colY2 := y1 + r.bands[0].height
			for _, band := range r.bands[1:] {
				currentCells := band.cells
				sameBorders := len(cells) == len(currentCells)
				if sameBorders {
					for i := range cells {
						if cells[i].width != currentCells[i].width {
							sameBorders = false
							break
						}
					}
				}
				if !sameBorders {
					colX = x1
					for _, cell := range cells[:len(cells)-1] {
						colX += cell.width
						doc.Line(colX, colY1, colX, colY2)
					}
					colY1 = colY2
					colX = x1
					cells = currentCells
				}
				colY2 += band.height
			}
			for _, cell := range cells[:len(cells)-1] {
				colX += cell.width
				doc.Line(colX, colY1, colX, colY2)
			}
		}
	}
	return nil
}

func (r *tableRenderElement) getRenderBottom() float64 { return r.renderBottom }

func (r *tableRenderElement) cleanup() {
	for _, band := range r.bands {
		for _, element := range band.elements {
			element.cleanup()
		}
	}
}

// frameRenderElement is one page slice of a frame with the content elements
// which fit on the current page.
type frameRenderElement struct {
	report            *Report
	x                 float64
	width             float64
	borderStyle       borderStyle
	backgroundColor   Color
	renderY           float64
	renderBottom      float64
	elements          []renderElement
	renderElementType RenderElementType
	complete          bool
}

func newFrameRenderElement(report *Report, frame *FrameElement, renderY float64) *frameRenderElement {
	return &frameRenderElement{
		report:            report,
		x:                 frame.x,
		width:             frame.width,
		borderStyle:       frame.style.borderStyle,
		backgroundColor:   frame.style.backgroundColor,
		renderY:           renderY,
		renderBottom:      renderY,
		renderElementType: RenderElementNone,
	}
}

func (r *frameRenderElement) addElements(container *Container, renderElementType RenderElementType, height float64) {
	r.elements = append([]renderElement(nil), container.renderElements...)
	r.renderElementType = renderElementType
	r.renderBottom += height
}

func (r *frameRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	x := r.x + containerOffsetX
	y := r.renderY + containerOffsetY
	height := r.renderBottom - r.renderY

	contentX := x
	contentWidth := r.width
	contentY := y
	contentHeight := height

	if r.borderStyle.borderLeft {
		contentX += r.borderStyle.borderWidth
		contentWidth -= r.borderStyle.borderWidth
	}
	if r.borderStyle.borderRight {
		contentWidth -= r.borderStyle.borderWidth
	}
	if r.borderStyle.borderTop &&
		(r.renderElementType == RenderElementFirst || r.renderElementType == RenderElementComplete) {
		contentY += r.borderStyle.borderWidth
		contentHeight -= r.borderStyle.borderWidth
	}
	if r.borderStyle.borderBottom &&
		(r.renderElementType == RenderElementLast || r.renderElementType == RenderElementComplete) {
		contentHeight -= r.borderStyle.borderWidth
	}

	if !r.backgroundColor.Transparent {
		doc.SetFillColor(r.backgroundColor.R, r.backgroundColor.G, r.backgroundColor.B)
		doc.Rect(contentX, contentY, contentWidth, contentHeight, "F")
	}

	for _, element := range r.elements {
		if err := element.renderPDF(contentX, contentY, doc); err != nil {
			return err
		}
	}

	if r.borderStyle.hasBorder() {
		drawBorder(x, y, r.width, height, r.renderElementType, &r.borderStyle, doc)
	}
	return nil
}

func (r *frameRenderElement) getRenderBottom() float64 { return r.renderBottom }

func (r *frameRenderElement) cleanup() {
	for _, element := range r.elements {
		element.cleanup()
	}
}

// sectionBandSlice is one rendered section band with its height and
// background color.
type sectionBandSlice struct {
	width           float64
	height          float64
	backgroundColor Color
	elements        []renderElement
}

type sectionRenderElement struct {
	report       *Report
	x            float64
	width        float64
	renderY      float64
	renderBottom float64
	height       float64
	bands        []sectionBandSlice
	complete     bool
}

func newSectionRenderElement(report *Report, section *SectionElement, renderY float64) *sectionRenderElement {
	return &sectionRenderElement{
		report:       report,
		x:            section.x,
		width:        section.width,
		renderY:      renderY,
		renderBottom: renderY,
	}
}

func (r *sectionRenderElement) isEmpty() bool { return len(r.bands) == 0 }

func (r *sectionRenderElement) addSectionBand(sectionBand *SectionBandElement, backgroundColor Color) {
	if sectionBand.renderingComplete || !sectionBand.alwaysPrintOnSamePage {
		bandHeight := sectionBand.getRenderBottom()
		r.bands = append(r.bands, sectionBandSlice{
			width:           sectionBand.width,
			height:          bandHeight,
			backgroundColor: backgroundColor,
			elements:        append([]renderElement(nil), sectionBand.container.renderElements...),
		})
		r.height += bandHeight
		r.renderBottom += bandHeight
	}
}

func (r *sectionRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	y := r.renderY + containerOffsetY
	for _, band := range r.bands {
		if !band.backgroundColor.Transparent {
			doc.SetFillColor(band.backgroundColor.R, band.backgroundColor.G, band.backgroundColor.B)
			doc.Rect(r.x+containerOffsetX, y, band.width, band.height, "F")
		}
		for _, element := range band.elements {
			if err := element.renderPDF(containerOffsetX, y, doc); err != nil {
				return err
			}
		}
		y += band.height
	}
	return nil
}

func (r *sectionRenderElement) getRenderBottom() float64 { return r.renderBottom }

func (r *sectionRenderElement) cleanup() {
	for _, band := range r.bands {
		for _, element := range band.elements {
			element.cleanup()
		}
	}
}
