package reportbro

import (
	"strconv"
	"strings"
)

// TableElement renders a data source as table with optional header, footer
// and group bands. Rows are created per entry of the data source array.
type TableElement struct {
	docElementBase
	dataSource               string
	columns                  int
	header                   *TableBandElement
	contentRows              []*TableBandElement
	rowIndexAfterMainContent int
	hasTableBandGroup        bool
	footer                   *TableBandElement
	dataSourceParameter      *Parameter
	dataSourceName           string
	printHeader              bool
	printFooter              bool
	border                   Border
	borderColor              Color
	borderWidth              float64
	rowParameters            map[string]*Parameter
	rows                     []map[string]any
	rowCount                 int
	rowIndex                 int
	contentRowIndex          int
}

func newTableElement(report *Report, data map[string]any) (*TableElement, error) {
	e := &TableElement{
		docElementBase:           newDocElementBase(report, data),
		dataSource:               getStrValue(data, "dataSource"),
		columns:                  getIntValue(data, "columns"),
		rowIndexAfterMainContent: -1,
		rowParameters:            make(map[string]*Parameter),
		rowIndex:                 -1,
		contentRowIndex:          -1,
	}
	e.elementType = elementTypeTable

	columnCount := -1
	if getBoolValue(data, "header") {
		headerData, _ := data["headerData"].(map[string]any)
		header, err := newTableBandElement(report, headerData, BandHeader, false, false)
		if err != nil {
			return nil, err
		}
		e.header = header
		columnCount = len(header.cells)
	}
	contentDataRows, ok := data["contentDataRows"].([]any)
	if !ok {
		return nil, newInternalError("invalid contentDataRows for table element " + strconv.Itoa(e.id))
	}
	mainContentCreated := false
	dataSourceAvailable := strings.TrimSpace(e.dataSource) != ""
	for idx, contentDataRow := range contentDataRows {
		rowData, _ := contentDataRow.(map[string]any)
		bandElement, err := newTableBandElement(report, rowData, BandContent, dataSourceAvailable, !mainContentCreated)
		if err != nil {
			return nil, err
		}
		if bandElement.groupExpression != "" {
			e.hasTableBandGroup = true
		}
		if mainContentCreated {
			if e.rowIndexAfterMainContent == -1 && bandElement.groupExpression != "" {
				e.rowIndexAfterMainContent = idx
			}
		} else if bandElement.groupExpression == "" {
			mainContentCreated = true
		}
		e.contentRows = append(e.contentRows, bandElement)
		if columnCount == -1 {
			columnCount = len(bandElement.cells)
		} else if columnCount != len(bandElement.cells) {
			return nil, newInternalError("table element " + strconv.Itoa(e.id) + " has rows with different column count")
		}
	}
	if getBoolValue(data, "footer") {
		footerData, _ := data["footerData"].(map[string]any)
		footer, err := newTableBandElement(report, footerData, BandFooter, false, false)
		if err != nil {
			return nil, err
		}
		e.footer = footer
		if columnCount != -1 && columnCount != len(footer.cells) {
			return nil, newInternalError("table element " + strconv.Itoa(e.id) + " footer has different column count")
		}
	}

	var style *TableStyle
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		tableStyle, ok := report.styles[styleID].(*TableStyle)
		if !ok {
			return nil, newInternalError("style for table element " + strconv.Itoa(e.id) + " not found")
		}
		style = tableStyle
	} else {
		style = newTableStyle(data, "_table")
	}
	e.border = style.border
	e.borderColor = style.borderColor
	e.borderWidth = style.borderWidth

	e.printIf = getStrValue(data, "printIf")
	e.removeEmptyElement = getBoolValue(data, "removeEmptyElement")
	e.spreadsheetHide = getBoolValue(data, "spreadsheet_hide")
	e.spreadsheetColumn = getIntValue(data, "spreadsheet_column")
	e.spreadsheetAddEmptyRow = getBoolValue(data, "spreadsheet_addEmptyRow")

	// table width is set in prepare, the height is the sum of all band
	// heights and is only needed for the layout bottom
	e.width = 0
	if e.header != nil {
		e.height += e.header.height
	}
	if e.footer != nil {
		e.height += e.footer.height
	}
	for _, contentRow := range e.contentRows {
		e.height += contentRow.height
	}
	e.bottom = e.y + e.height
	e.self = e
	return e, nil
}

func (e *TableElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	if e.header != nil {
		e.printHeader = true
		freeSpace := 0.0 // space freed up by hidden columns
		totalWeight := 0
		for columnIdx, cell := range e.header.cells {
			if !cell.insideColspan && cell.printIf != "" {
				visible, err := ctx.evaluateExpression(cell.printIf, cell.id, "printIf")
				if err != nil {
					return err
				}
				cell.columnVisible = isTruthy(visible)
				if !cell.columnVisible {
					freeSpace += cell.width
				}
				for _, contentRow := range e.contentRows {
					contentRow.cells[columnIdx].columnVisible = cell.columnVisible
				}
				if e.footer != nil {
					e.footer.cells[columnIdx].columnVisible = cell.columnVisible
				}
			}
			if cell.columnVisible {
				totalWeight += cell.growWeight
			}
		}

		// free space of hidden columns is shared among the growable columns
		// depending on their grow weight
		if freeSpace > 0 && totalWeight > 0 {
			for columnIdx, cell := range e.header.cells {
				if cell.growWeight > 0 {
					addedWidth := float64(int((freeSpace/float64(totalWeight))*float64(cell.growWeight) + 0.5))
					cell.width = cell.initialWidth + addedWidth
					for _, contentRow := range e.contentRows {
						contentRow.cells[columnIdx].width = cell.width
					}
					if e.footer != nil {
						e.footer.cells[columnIdx].width = cell.width
					}
				}
			}
		}
	}
	if e.footer != nil {
		e.printFooter = true
	}

	parameterName := stripParameterName(e.dataSource)
	e.dataSourceName = parameterName
	if parameterName != "" {
		ref := ctx.getParameter(parameterName)
		if ref == nil {
			return newError(msgKeyMissingParameter, e.id, "dataSource")
		}
		e.dataSourceParameter = ref.parameter
		if e.dataSourceParameter.Type != ParameterTypeArray {
			return newError(msgKeyInvalidDataSourceParameter, e.id, "dataSource")
		}
		for _, rowParameter := range e.dataSourceParameter.Children {
			e.rowParameters[rowParameter.Name] = rowParameter
		}
		value, exists := ctx.getParameterData(ref)
		if !exists {
			return newError(msgKeyMissingData, e.id, "dataSource")
		}
		rows, err := toDataRows(value)
		if err != nil {
			return newError(msgKeyInvalidDataSource, e.id, "dataSource")
		}
		e.rows = rows
	} else {
		// no data source parameter, create a static table faked by one
		// empty data row
		e.rows = []map[string]any{{}}
		e.dataSourceParameter = nil
	}

	e.rowCount = len(e.rows)
	e.rowIndex = 0
	e.contentRowIndex = 0

	e.width = 0
	tableWidthInitialized := false
	// expand cells if necessary (a cell with a simple array parameter is
	// expanded to multiple cells) for all table bands and set table width
	if e.header != nil {
		if err := e.header.setPrintedCells(ctx); err != nil {
			return err
		}
		if err := e.header.prepare(ctx, -1); err != nil {
			return err
		}
		for _, cell := range e.header.printedCells {
			e.width += cell.width
		}
		tableWidthInitialized = true
	}

	if e.rowIndex < e.rowCount {
		ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceName)
		for _, contentRow := range e.contentRows {
			if err := contentRow.setPrintedCells(ctx); err != nil {
				ctx.popContext()
				return err
			}
			if !tableWidthInitialized && contentRow.groupExpression == "" {
				for _, cell := range contentRow.printedCells {
					e.width += cell.width
				}
				tableWidthInitialized = true
			}
		}
		ctx.popContext()
	}

	if err := e.initGroupRows(ctx); err != nil {
		return err
	}

	if onlyVerify {
		// call prepare for each content band in each row to verify group
		// and print-if expressions
		e.rowIndex = 0
		for e.rowIndex < e.rowCount {
			ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceName)
			for _, contentRow := range e.contentRows {
				if err := contentRow.prepare(ctx, e.rowIndex); err != nil {
					ctx.popContext()
					return err
				}
			}
			ctx.popContext()
			e.rowIndex++
		}
	}

	if e.footer != nil {
		if err := e.footer.setPrintedCells(ctx); err != nil {
			return err
		}
		if err := e.footer.prepare(ctx, -1); err != nil {
			return err
		}
	}
	return nil
}

func (e *TableElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	e.renderY = offsetY
	e.renderBottom = e.renderY
	if e.isRenderingComplete() {
		e.renderingComplete = true
		return nil, true, nil
	}
	renderElem := newTableRenderElement(e.report, e, offsetY)

	if e.printHeader {
		if !e.header.renderingComplete {
			if err := e.header.createRenderElements(offsetY, containerTop, containerHeight, ctx, doc); err != nil {
				return nil, false, err
			}
		}
		renderElem.addBand(e.header, -1)
		if !e.header.renderingComplete {
			return renderElem, false, nil
		}
		if !e.header.repeatHeader {
			e.printHeader = false
		}
	}

	firstRenderRowIndex := e.rowIndex
	firstContentRowIndex := e.contentRowIndex
	firstRowOnPage := true
	for e.rowIndex < e.rowCount {
		ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceName)
		e.contentRowIndex = 0
		for _, contentRow := range e.contentRows {
			// on the first row of the page check if the content row is
			// visible (and not already displayed on the previous page) or if
			// it is a group content row which is repeated on every page
			if !firstRowOnPage || e.contentRowIndex >= firstContentRowIndex || contentRow.repeatGroupHeader {
				if err := contentRow.prepare(ctx, e.rowIndex); err != nil {
					ctx.popContext()
					return nil, false, err
				}
				if contentRow.repeatGroupHeader && firstRowOnPage {
					// group content row is repeated on every page
					contentRow.groupChanged = true
				}

				if contentRow.isPrinted() {
					// only perform page break before content if there is at
					// least one rendered row
					if contentRow.pageBreak && contentRow.beforeGroup && e.rowIndex != firstRenderRowIndex {
						ctx.popContext()
						return renderElem, false, nil
					}

					contentRow.setParameterRange(e.dataSourceParameter, ctx, false)
					err := contentRow.createRenderElements(
						offsetY+renderElem.height, containerTop, containerHeight, ctx, doc)
					contentRow.setParameterRange(e.dataSourceParameter, ctx, true)
					if err != nil {
						ctx.popContext()
						return nil, false, err
					}

					renderElem.addBand(contentRow, e.rowIndex)
					if !contentRow.renderingComplete {
						ctx.popContext()
						return renderElem, false, nil
					}

					// only perform page break after content if this is not
					// the last row
					if contentRow.pageBreak && !contentRow.beforeGroup && e.rowIndex < e.rowCount-1 {
						contentRow.postprocess(e.rowIndex)
						e.contentRowIndex++
						ctx.popContext()
						return renderElem, false, nil
					}
				} else {
					contentRow.renderingComplete = true
				}
			}

			contentRow.postprocess(e.rowIndex)
			e.contentRowIndex++
		}
		ctx.popContext()

		e.rowIndex++
		firstRowOnPage = false
	}

	if e.rowIndex >= e.rowCount && e.printFooter {
		if err := e.footer.createRenderElements(
			offsetY+renderElem.height, containerTop, containerHeight, ctx, doc); err != nil {
			return nil, false, err
		}
		renderElem.addBand(e.footer, -1)
		if !e.footer.renderingComplete {
			return renderElem, false, nil
		}
		e.printFooter = false
	}

	if e.isRenderingComplete() {
		e.renderingComplete = true
	}
	if renderElem.isEmpty() {
		return nil, e.renderingComplete, nil
	}
	e.renderBottom = renderElem.renderBottom
	return renderElem, e.renderingComplete, nil
}

// initGroupRows initializes the table group bands (e.g. to show header or
// sums for grouped rows) and stores the row indices where a group band is
// printed.
func (e *TableElement) initGroupRows(ctx *Context) error {
	if !e.hasTableBandGroup || e.rowCount == 0 {
		return nil
	}
	var contentGroupRows []*TableBandElement
	for _, contentRow := range e.contentRows {
		if contentRow.groupExpression != "" {
			contentRow.groupChangedRowIndices = nil
			contentGroupRows = append(contentGroupRows, contentRow)
		}
	}

	// set next group expr which is used for group expr of first row
	ctx.pushContext(e.rowParameters, e.rows[0], e.dataSourceName)
	for _, contentGroupRow := range contentGroupRows {
		if err := contentGroupRow.setNextGroupExpression(ctx, true); err != nil {
			ctx.popContext()
			return err
		}
	}
	ctx.popContext()

	for rowIndex := 0; rowIndex < e.rowCount; rowIndex++ {
		hasNext := rowIndex+1 < e.rowCount
		// set context for next row (if available) so group expr of next row
		// can be evaluated
		if hasNext {
			ctx.pushContext(e.rowParameters, e.rows[rowIndex+1], e.dataSourceName)
		}
		for _, contentGroupRow := range contentGroupRows {
			// set group expression for next row so the group expressions for
			// previous, next and current row are available
			if err := contentGroupRow.setNextGroupExpression(ctx, hasNext); err != nil {
				if hasNext {
					ctx.popContext()
				}
				return err
			}
			// test if the group expression (prev <-> current for group
			// before content, current <-> next for group after content)
			// has changed
			contentGroupRow.testGroupChanged(rowIndex)
		}
		if hasNext {
			ctx.popContext()
		}
	}
	return nil
}

// isRenderingComplete tests if footer and all content rows are completely
// rendered.
func (e *TableElement) isRenderingComplete() bool {
	if e.rowIndex >= e.rowCount && !e.printFooter {
		// only test the bands if at least one row was processed because
		// otherwise the flag was not set
		if e.rowIndex > 0 {
			for _, contentRow := range e.contentRows {
				if !contentRow.renderingComplete {
					return false
				}
			}
		}
		return true
	}
	return false
}

func (e *TableElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	if e.spreadsheetColumn != 0 {
		col = e.spreadsheetColumn - 1
	}
	columns := 0

	if e.header != nil {
		columns = len(e.header.printedCells)
		var err error
		row, _, err = e.header.renderSpreadsheet(row, col, ctx, renderer, -1)
		if err != nil {
			return 0, 0, err
		}
	}

	for e.rowIndex < e.rowCount {
		ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceName)
		for _, contentRow := range e.contentRows {
			if err := contentRow.prepare(ctx, e.rowIndex); err != nil {
				ctx.popContext()
				return 0, 0, err
			}
			if contentRow.isPrinted() {
				if columns == 0 {
					// get column count from first printed content row if
					// there is no header
					columns = len(contentRow.printedCells)
				}
				var err error
				row, _, err = contentRow.renderSpreadsheet(row, col, ctx, renderer, e.rowIndex)
				if err != nil {
					ctx.popContext()
					return 0, 0, err
				}
			}
			contentRow.postprocess(e.rowIndex)
		}
		ctx.popContext()
		e.rowIndex++
	}

	if e.footer != nil {
		var err error
		row, _, err = e.footer.renderSpreadsheet(row, col, ctx, renderer, -1)
		if err != nil {
			return 0, 0, err
		}
	}

	if e.spreadsheetAddEmptyRow {
		row++
	}
	return row, col + columns, nil
}

// TableBandElement is the header, footer or one content row definition of a
// table. Content rows with a group expression are only printed when the
// group value changes.
type TableBandElement struct {
	id                       int
	report                   *Report
	height                   float64
	bandType                 BandType
	repeatHeader             bool
	backgroundColor          Color
	alternateBackgroundColor Color
	printIf                  string
	beforeGroup              bool
	pageBreak                bool
	repeatGroupHeader        bool
	groupExpression          string
	alwaysPrintOnSamePage    bool
	cells                    []*TableTextElement
	printIfResult            bool

	groupChanged           bool
	groupExprResult        any
	prevGroupExprResult    any
	nextGroupExprResult    any
	groupChangedRowIndices []int
	groupRowIndexStart     int
	groupRowIndexEnd       int

	// cells which will be printed, this excludes cells within a colspan of
	// another cell and can include cells expanded by a simple array
	// parameter
	printedCells []*TableTextElement

	container         *Container
	renderingComplete bool
	prepareContainer  bool
}

func newTableBandElement(report *Report, data map[string]any, bandType BandType, dataSourceAvailable, beforeGroup bool) (*TableBandElement, error) {
	if data == nil {
		return nil, newInternalError("missing band data for table element")
	}
	band := &TableBandElement{
		id:               getIntValue(data, "id"),
		report:           report,
		height:           getFloatValue(data, "height"),
		bandType:         bandType,
		beforeGroup:      beforeGroup,
		printIf:          getStrValue(data, "printIf"),
		printIfResult:    true,
		prepareContainer: true,
	}
	if bandType == BandHeader {
		band.repeatHeader = getBoolValue(data, "repeatHeader")
	}
	var style *TableBandStyle
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		bandStyle, ok := report.styles[styleID].(*TableBandStyle)
		if !ok {
			return nil, newInternalError("style for table band element " + strconv.Itoa(band.id) + " not found")
		}
		style = bandStyle
	} else {
		style = newTableBandStyle(data, "_table_band")
	}
	band.backgroundColor = style.backgroundColor
	band.alternateBackgroundColor = style.alternateBackgroundColor

	if bandType == BandContent {
		band.groupExpression = getStrValue(data, "groupExpression")
		band.alwaysPrintOnSamePage = getBoolValue(data, "alwaysPrintOnSamePage")
		if band.groupExpression != "" {
			if !dataSourceAvailable {
				report.addError(newError(msgKeyGroupExpressionWithoutDataSource, band.id, "groupExpression"))
			}
			band.pageBreak = getBoolValue(data, "pageBreak")
			band.repeatGroupHeader = getBoolValue(data, "repeatGroupHeader")
			if band.repeatGroupHeader && !beforeGroup {
				report.addError(newError(msgKeyRepeatGroupHeaderAfterContent, band.id, "repeatGroupHeader"))
			}
		}
	} else {
		band.alwaysPrintOnSamePage = true
	}

	columnData, ok := data["columnData"].([]any)
	if !ok {
		return nil, newInternalError("invalid columnData for table band " + strconv.Itoa(band.id))
	}
	colspanEndIdx := 0
	var colspanElement *TableTextElement
	for idx, column := range columnData {
		cellData, ok := column.(map[string]any)
		if !ok {
			return nil, newInternalError("invalid column for table band " + strconv.Itoa(band.id))
		}
		// height of cell is the band height
		cellData["height"] = band.height
		cell, err := newTableTextElement(report, cellData)
		if err != nil {
			return nil, err
		}
		if idx < colspanEndIdx {
			colspanElement.initialWidth += cell.width
			colspanElement.width += cell.width
			cell.insideColspan = true
		} else if cell.colspan > 1 {
			colspanElement = cell
			colspanEndIdx = idx + cell.colspan
		}
		band.cells = append(band.cells, cell)
	}

	// virtual container for the table band
	band.container = newContainer("tablerow_"+strconv.Itoa(band.id), nil, report)
	band.container.height = band.height
	band.container.allowPageBreak = false
	return band, nil
}

// setPrintedCells initializes the printed cells. Cells can be expanded by a
// simple array parameter into multiple cells, cells can also be hidden by
// other cells with colspan set. Must be called exactly once for the band.
func (band *TableBandElement) setPrintedCells(ctx *Context) error {
	var printedCells []*TableTextElement
	for _, cell := range band.cells {
		if cell.columnVisible && !cell.insideColspan {
			printedCells = append(printedCells, cell)
			if err := cell.expandSimpleArray(&printedCells, ctx); err != nil {
				return err
			}
		}
	}
	band.printedCells = printedCells
	tableWidth := 0.0
	band.container.docElements = nil
	for _, cell := range printedCells {
		cell.x = tableWidth
		tableWidth += cell.width
		band.container.add(cell)
	}
	band.container.width = tableWidth
	return nil
}

// setNextGroupExpression evaluates the group expression of the next row and
// shifts the results so previous, current and next are available.
func (band *TableBandElement) setNextGroupExpression(ctx *Context, hasNext bool) error {
	band.prevGroupExprResult = band.groupExprResult
	band.groupExprResult = band.nextGroupExprResult
	if hasNext {
		result, err := ctx.evaluateExpression(band.groupExpression, band.id, "groupExpression")
		if err != nil {
			return err
		}
		band.nextGroupExprResult = result
	} else {
		band.nextGroupExprResult = nil
	}
	return nil
}

// testGroupChanged tests if the group expression changed and stores the row
// index if this is the case.
func (band *TableBandElement) testGroupChanged(rowIndex int) {
	if band.groupExpression == "" {
		return
	}
	if band.beforeGroup {
		if !equalValues(band.groupExprResult, band.prevGroupExprResult) {
			band.groupChangedRowIndices = append(band.groupChangedRowIndices, rowIndex)
		}
	} else {
		if !equalValues(band.groupExprResult, band.nextGroupExprResult) {
			band.groupChangedRowIndices = append(band.groupChangedRowIndices, rowIndex)
		}
	}
}

func (band *TableBandElement) prepare(ctx *Context, rowIndex int) error {
	if band.groupExpression != "" {
		band.groupChanged = false
		if len(band.groupChangedRowIndices) > 0 && band.groupChangedRowIndices[0] == rowIndex {
			// the group expression has changed for this row index, the group
			// band will be printed
			band.groupChanged = true
			// set index range which is used for function parameters like
			// sum and avg
			if band.beforeGroup {
				band.groupRowIndexStart = band.groupChangedRowIndices[0]
				if len(band.groupChangedRowIndices) > 1 {
					band.groupRowIndexEnd = band.groupChangedRowIndices[1]
				} else {
					band.groupRowIndexEnd = -1
				}
			} else {
				band.groupRowIndexStart = band.groupRowIndexEnd
				band.groupRowIndexEnd = band.groupChangedRowIndices[0] + 1
			}
		}
	}

	if band.printIf != "" {
		result, err := ctx.evaluateExpression(band.printIf, band.id, "printIf")
		if err != nil {
			return err
		}
		band.printIfResult = isTruthy(result)
	}
	return nil
}

// postprocess must be called after a row was processed for this band, it
// updates the internal array of changed row indices for groups.
func (band *TableBandElement) postprocess(rowIndex int) {
	if len(band.groupChangedRowIndices) > 0 && band.groupChangedRowIndices[0] == rowIndex {
		band.groupChangedRowIndices = band.groupChangedRowIndices[1:]
	}
}

// setParameterRange sets start and end row index for the data source
// parameter, used when evaluating a parameter function like sum or avg for
// the current group.
func (band *TableBandElement) setParameterRange(parameter *Parameter, ctx *Context, clear bool) {
	if band.groupExpression == "" || parameter == nil {
		return
	}
	if clear {
		parameter.popRange()
		ctx.decRangeCount()
	} else {
		parameter.pushRange(band.groupRowIndexStart, band.groupRowIndexEnd)
		ctx.incRangeCount()
	}
}

func (band *TableBandElement) isPrinted() bool {
	return band.printIfResult && (band.groupExpression == "" || band.groupChanged)
}

// renderSpreadsheet renders the table band in a spreadsheet and takes care
// of the row background color.
func (band *TableBandElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer, rowIndex int) (int, int, error) {
	// elements in container must be prepared for each row before the
	// spreadsheet can be rendered
	if err := band.container.prepare(ctx, nil, false); err != nil {
		return 0, 0, err
	}

	backgroundColor := band.backgroundColor
	styleIDSuffix := "_table_row"
	if band.bandType == BandContent && !band.alternateBackgroundColor.Transparent && rowIndex%2 == 1 {
		backgroundColor = band.alternateBackgroundColor
		styleIDSuffix = "_alt_table_row"
	}

	if !backgroundColor.Transparent {
		for _, elem := range band.container.docElements {
			if cell, ok := elem.(*TableTextElement); ok {
				baseStyle := cell.usedStyle
				cell.usedStyle = cell.getStyle(baseStyle.id+styleIDSuffix, backgroundColor, baseStyle)
			}
		}
	}

	return band.container.renderSpreadsheet(row, col, ctx, renderer)
}

func (band *TableBandElement) createRenderElements(offsetY, containerTop, containerHeight float64, ctx *Context, doc canvas) error {
	availableHeight := containerHeight - offsetY
	if band.alwaysPrintOnSamePage && availableHeight < band.height {
		// not enough space for whole band
		band.renderingComplete = false
	} else {
		if band.prepareContainer {
			if err := band.container.prepare(ctx, doc, false); err != nil {
				return err
			}

			// all cells are set to the maximum cell height of the band
			maxHeight := band.height
			for _, elem := range band.container.docElements {
				if cell, ok := elem.(*TableTextElement); ok && cell.totalHeight > maxHeight {
					maxHeight = cell.totalHeight
				}
			}
			for _, elem := range band.container.docElements {
				if cell, ok := elem.(*TableTextElement); ok {
					cell.setHeight(maxHeight)
				}
			}
		} else {
			// clear render elements from previous page
			band.container.clearRenderedElements()
		}

		complete, err := band.container.createRenderElements(containerTop+offsetY, availableHeight, ctx, doc)
		if err != nil {
			return err
		}
		band.renderingComplete = complete
	}

	if band.renderingComplete {
		remainingMinHeight := band.height - band.container.maxBottom
		if remainingMinHeight > 0 {
			// rendering of band complete, make sure band is at least as
			// large as the minimum height even if it spans multiple pages
			if remainingMinHeight <= availableHeight {
				band.prepareContainer = true
				band.container.renderBottom += remainingMinHeight
			} else {
				// minimum height is larger than available space, continue
				// on next page
				band.renderingComplete = false
				band.prepareContainer = false
				band.container.renderBottom += availableHeight
			}
		} else {
			band.prepareContainer = true
		}
	} else if band.alwaysPrintOnSamePage {
		// band must be printed on same page but available space is not
		// enough, try to render it on top of next page
		band.prepareContainer = true
		if offsetY == 0 {
			field := "size"
			if band.bandType == BandContent {
				field = "alwaysPrintOnSamePage"
			}
			return newError(msgKeySectionBandNotOnSamePage, band.id, field)
		}
	} else {
		band.prepareContainer = false
	}
	return nil
}

func (band *TableBandElement) getRenderBottom() float64 {
	return band.container.renderBottom
}

func (band *TableBandElement) getRenderElements() []renderElement {
	return append([]renderElement(nil), band.container.renderElements...)
}
