package reportbro

import "strconv"

// SectionBandElement is the header, content or footer band of a section.
// The content band is rendered once per row of the section data source.
type SectionBandElement struct {
	id                    int
	report                *Report
	width                 float64
	height                float64
	bandType              BandType
	style                 *SectionBandStyle
	repeatHeader          bool
	alwaysPrintOnSamePage bool
	shrinkToContentHeight bool

	container         *Container
	renderingComplete bool
	prepareContainer  bool
}

func newSectionBandElement(report *Report, data map[string]any, bandType BandType, containers map[string]*Container) (*SectionBandElement, error) {
	if data == nil {
		return nil, newInternalError("missing band data for section element")
	}
	band := &SectionBandElement{
		id:       getIntValue(data, "id"),
		report:   report,
		width:    report.documentProperties.pageWidth - report.documentProperties.marginLeft - report.documentProperties.marginRight,
		height:   getFloatValue(data, "height"),
		bandType: bandType,
	}
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		bandStyle, ok := report.styles[styleID].(*SectionBandStyle)
		if !ok {
			return nil, newInternalError("style for section element " + strconv.Itoa(band.id) + " not found")
		}
		band.style = bandStyle
	} else {
		band.style = newSectionBandStyle(data, "_section_band")
	}

	if bandType == BandHeader {
		band.repeatHeader = getBoolValue(data, "repeatHeader")
		band.alwaysPrintOnSamePage = true
	} else {
		band.alwaysPrintOnSamePage = getBoolValue(data, "alwaysPrintOnSamePage")
	}
	band.shrinkToContentHeight = getBoolValue(data, "shrinkToContentHeight")

	band.container = newContainer(toString(data["linkedContainerId"]), containers, report)
	band.container.width = band.width
	band.container.height = band.height
	if bandType != BandContent {
		band.container.allowPageBreak = false
	}
	band.prepareContainer = true
	return band, nil
}

func (band *SectionBandElement) createRenderElements(offsetY, containerTop, containerHeight float64, ctx *Context, doc canvas) error {
	availableHeight := containerHeight - offsetY
	if band.alwaysPrintOnSamePage && !band.shrinkToContentHeight && availableHeight < band.height {
		// not enough space for whole band
		band.renderingComplete = false
	} else {
		if band.prepareContainer {
			if err := band.container.prepare(ctx, doc, false); err != nil {
				return err
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

		if band.container.manualPageBreak && band.alwaysPrintOnSamePage {
			// a manual page break is not allowed if the whole content should
			// be printed on the same page
			return newError(msgKeySectionBandPageBreakNotAllowed, band.id, "alwaysPrintOnSamePage")
		}
	}

	if band.renderingComplete {
		remainingMinHeight := band.height - band.container.maxBottom
		if !band.shrinkToContentHeight && remainingMinHeight > 0 {
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
				band.container.renderBottom = availableHeight
			}
		} else {
			band.prepareContainer = true
		}
	} else if band.alwaysPrintOnSamePage {
		// band must be printed on same page but available space is not
		// enough, try to render it on top of next page
		band.prepareContainer = true
		if offsetY == 0 {
			field := "alwaysPrintOnSamePage"
			if band.bandType == BandHeader {
				field = "size"
			}
			return newError(msgKeySectionBandNotOnSamePage, band.id, field)
		}
	} else {
		band.prepareContainer = false
		band.container.renderBottom = availableHeight
	}
	return nil
}

func (band *SectionBandElement) getRenderBottom() float64 {
	return band.container.renderBottom
}

// SectionElement renders its content band once per row of a data source,
// surrounded by optional header and footer bands.
type SectionElement struct {
	docElementBase
	dataSource          string
	header              *SectionBandElement
	content             *SectionBandElement
	footer              *SectionBandElement
	printHeader         bool
	dataSourceParameter *Parameter
	rowParameters       map[string]*Parameter
	rows                []map[string]any
	rowCount            int
	rowIndex            int
}

func newSectionElement(report *Report, data map[string]any, containers map[string]*Container) (*SectionElement, error) {
	e := &SectionElement{
		docElementBase: newDocElementBase(report, data),
		dataSource:     getStrValue(data, "dataSource"),
		rowParameters:  make(map[string]*Parameter),
		rowIndex:       -1,
	}
	e.elementType = elementTypeSection
	e.printIf = getStrValue(data, "printIf")
	// always remove section (clear space for following elements) if not
	// printed due to printIf condition
	e.removeEmptyElement = true
	e.spreadsheetHide = false

	if getBoolValue(data, "header") {
		headerData, _ := data["headerData"].(map[string]any)
		header, err := newSectionBandElement(report, headerData, BandHeader, containers)
		if err != nil {
			return nil, err
		}
		e.header = header
	}
	contentData, _ := data["contentData"].(map[string]any)
	content, err := newSectionBandElement(report, contentData, BandContent, containers)
	if err != nil {
		return nil, err
	}
	e.content = content
	if getBoolValue(data, "footer") {
		footerData, _ := data["footerData"].(map[string]any)
		footer, err := newSectionBandElement(report, footerData, BandFooter, containers)
		if err != nil {
			return nil, err
		}
		e.footer = footer
	}
	e.printHeader = e.header != nil

	e.x = 0
	e.width = 0
	e.height = e.content.height
	if e.header != nil {
		e.height += e.header.height
	}
	if e.footer != nil {
		e.height += e.footer.height
	}
	e.bottom = e.y + e.height
	e.self = e
	return e, nil
}

func (e *SectionElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	parameterName := stripParameterName(e.dataSource)
	ref := ctx.getParameter(parameterName)
	if ref == nil {
		return newError(msgKeyMissingDataSourceParameter, e.id, "dataSource")
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
	e.rowCount = len(e.rows)
	e.rowIndex = 0

	if onlyVerify {
		if e.header != nil {
			if err := e.header.container.prepare(ctx, nil, true); err != nil {
				return err
			}
		}
		for e.rowIndex < e.rowCount {
			// push data context of current row so values of the row can be
			// accessed
			ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceParameter.Name)
			err := e.content.container.prepare(ctx, nil, true)
			ctx.popContext()
			if err != nil {
				return err
			}
			e.rowIndex++
		}
		if e.footer != nil {
			if err := e.footer.container.prepare(ctx, nil, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *SectionElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	e.renderY = offsetY
	e.renderBottom = e.renderY
	renderElem := newSectionRenderElement(e.report, e, offsetY)

	if e.printHeader {
		if err := e.header.createRenderElements(offsetY, containerTop, containerHeight, ctx, doc); err != nil {
			return nil, false, err
		}
		renderElem.addSectionBand(e.header, e.header.style.backgroundColor)
		if !e.header.renderingComplete {
			return renderElem, false, nil
		}
		if !e.header.repeatHeader {
			e.printHeader = false
		}
	}

	for e.rowIndex < e.rowCount {
		// push data context of current row so values of the row can be
		// accessed
		ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceParameter.Name)
		err := e.content.createRenderElements(
			offsetY+renderElem.height, containerTop, containerHeight, ctx, doc)
		ctx.popContext()
		if err != nil {
			return nil, false, err
		}

		backgroundColor := e.content.style.backgroundColor
		if !e.content.style.alternateBackgroundColor.Transparent && e.rowIndex%2 == 1 {
			backgroundColor = e.content.style.alternateBackgroundColor
		}
		renderElem.addSectionBand(e.content, backgroundColor)
		if !e.content.renderingComplete {
			return renderElem, false, nil
		}
		e.rowIndex++

		pageBreak := e.content.container.manualPageBreak
		e.content.container.reset()

		// in case of a manual page break inside the content band (unless
		// already in the last row) rendering stops and continues on a new
		// page
		if pageBreak && e.rowIndex < e.rowCount {
			return renderElem, false, nil
		}
	}

	if e.footer != nil {
		if err := e.footer.createRenderElements(
			offsetY+renderElem.height, containerTop, containerHeight, ctx, doc); err != nil {
			return nil, false, err
		}
		renderElem.addSectionBand(e.footer, e.footer.style.backgroundColor)
		if !e.footer.renderingComplete {
			return renderElem, false, nil
		}
	}

	// all bands finished
	e.renderingComplete = true
	e.renderBottom += renderElem.height
	return renderElem, true, nil
}

func (e *SectionElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	if e.header != nil {
		if err := e.header.container.prepare(ctx, nil, false); err != nil {
			return 0, 0, err
		}
		var err error
		row, _, err = e.header.container.renderSpreadsheet(row, col, ctx, renderer)
		if err != nil {
			return 0, 0, err
		}
	}

	for e.rowIndex < e.rowCount {
		// push data context of current row so values of the row can be
		// accessed
		ctx.pushContext(e.rowParameters, e.rows[e.rowIndex], e.dataSourceParameter.Name)
		err := e.content.container.prepare(ctx, nil, false)
		if err == nil {
			row, _, err = e.content.container.renderSpreadsheet(row, col, ctx, renderer)
		}
		ctx.popContext()
		if err != nil {
			return 0, 0, err
		}
		e.rowIndex++
	}

	if e.footer != nil {
		if err := e.footer.container.prepare(ctx, nil, false); err != nil {
			return 0, 0, err
		}
		var err error
		row, _, err = e.footer.container.renderSpreadsheet(row, col, ctx, renderer)
		if err != nil {
			return 0, 0, err
		}
	}
	return row, col, nil
}
