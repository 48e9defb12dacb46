package reportbro

import "strconv"

// FrameElement groups other elements inside a bordered box. The frame
// content can span multiple pages.
type FrameElement struct {
	docElementBase
	style                 *FrameStyle
	shrinkToContentHeight bool
	alignToPageBottom     bool

	// rendering complete status for next page, in case rendering was not
	// started on first page
	nextPageRenderingComplete bool
	// container content height of previous page, in case rendering was not
	// started on first page
	prevPageContentHeight float64

	renderElementType RenderElementType
	container         *Container
}

func newFrameElement(report *Report, data map[string]any, containers map[string]*Container) (*FrameElement, error) {
	e := &FrameElement{
		docElementBase:    newDocElementBase(report, data),
		renderElementType: RenderElementNone,
	}
	e.elementType = elementTypeFrame
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		frameStyle, ok := report.styles[styleID].(*FrameStyle)
		if !ok {
			return nil, newInternalError("style for frame element " + strconv.Itoa(e.id) + " not found")
		}
		e.style = frameStyle
	} else {
		e.style = newFrameStyle(data, "_frame")
	}
	e.printIf = getStrValue(data, "printIf")
	e.removeEmptyElement = getBoolValue(data, "removeEmptyElement")
	e.shrinkToContentHeight = getBoolValue(data, "shrinkToContentHeight")
	e.alignToPageBottom = getBoolValue(data, "alignToPageBottom")
	e.spreadsheetHide = getBoolValue(data, "spreadsheet_hide")
	e.spreadsheetColumn = getIntValue(data, "spreadsheet_column")
	e.spreadsheetAddEmptyRow = getBoolValue(data, "spreadsheet_addEmptyRow")

	e.container = newFrame(
		e.width, e.height, toString(data["linkedContainerId"]), containers, report)
	e.self = e
	return e, nil
}

func (e *FrameElement) getRenderBottom() float64 {
	height := e.container.renderBottom
	if e.style.borderTop && e.renderElementType == RenderElementNone {
		height += e.style.borderWidth
	}
	if e.style.borderBottom {
		height += e.style.borderWidth
	}
	if e.renderElementType == RenderElementNone && !e.shrinkToContentHeight {
		if e.height > height {
			height = e.height
		}
	}
	return height
}

func (e *FrameElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	if err := e.container.prepare(ctx, doc, onlyVerify); err != nil {
		return err
	}
	e.nextPageRenderingComplete = false
	e.prevPageContentHeight = 0
	e.renderElementType = RenderElementNone
	return nil
}

func (e *FrameElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	e.renderY = offsetY
	availableHeight := containerHeight - offsetY
	contentHeight := containerHeight
	renderElem := newFrameRenderElement(e.report, e, offsetY)

	if e.style.borderTop && e.renderElementType == RenderElementNone {
		contentHeight -= e.style.borderWidth
	}
	if e.style.borderBottom {
		// this is not 100% correct because the bottom border is only applied
		// if the frame fits on the current page. the border is usually only
		// a few pixels so this should be negligible.
		contentHeight -= e.style.borderWidth
	}

	if e.firstRenderElement {
		e.firstRenderElement = false
		renderingComplete, err := e.container.createRenderElements(
			containerTop+offsetY, contentHeight, ctx, doc)
		if err != nil {
			return nil, false, err
		}

		neededHeight := e.getRenderBottom()

		if renderingComplete && neededHeight <= availableHeight {
			// rendering is complete and all elements of the frame fit on the
			// current page
			e.renderingComplete = true
			if e.alignToPageBottom {
				spacer := availableHeight - neededHeight
				renderElem.renderY += spacer
				e.renderY += spacer
				neededHeight = availableHeight
			}
			e.renderBottom = offsetY + neededHeight
			e.renderElementType = RenderElementComplete
			renderElem.addElements(e.container, e.renderElementType, neededHeight)
			return renderElem, true, nil
		}
		if offsetY == 0 {
			// rendering of frame elements does not fit on the current page
			// but we are already at the top of the page, start rendering and
			// continue on next page
			e.renderBottom = offsetY + availableHeight
			e.renderElementType = RenderElementFirst
			renderElem.addElements(e.container, e.renderElementType, availableHeight)
			return renderElem, false, nil
		}
		// rendering of frame elements does not fit on the current page,
		// start rendering on next page
		e.nextPageRenderingComplete = renderingComplete
		e.prevPageContentHeight = contentHeight
		return nil, false, nil
	}

	if e.renderElementType == RenderElementNone {
		// render elements were already created on the first call but the
		// elements did not fit on the first page
		if contentHeight == e.prevPageContentHeight {
			// the previously created render elements can be used because the
			// container height did not change
			e.renderingComplete = e.nextPageRenderingComplete
		} else {
			// the container height is different on the current page, e.g.
			// when header/footer are not shown on the first page. the render
			// elements must be created again.
			if err := e.container.prepare(ctx, doc, false); err != nil {
				return nil, false, err
			}
			renderingComplete, err := e.container.createRenderElements(containerTop, contentHeight, ctx, doc)
			if err != nil {
				return nil, false, err
			}
			e.renderingComplete = renderingComplete
		}
	} else {
		e.container.clearRenderedElements()
		renderingComplete, err := e.container.createRenderElements(containerTop, contentHeight, ctx, doc)
		if err != nil {
			return nil, false, err
		}
		e.renderingComplete = renderingComplete
	}
	neededHeight := e.getRenderBottom()
	e.renderBottom = offsetY + neededHeight

	if !e.renderingComplete {
		// use the whole size of the container if the frame is not rendered
		// completely
		e.renderBottom = offsetY + containerHeight
		if e.renderElementType == RenderElementNone {
			e.renderElementType = RenderElementFirst
		} else {
			e.renderElementType = RenderElementBetween
		}
	} else {
		if e.renderElementType == RenderElementNone {
			e.renderElementType = RenderElementComplete
		} else {
			e.renderElementType = RenderElementLast
		}
	}
	renderElem.addElements(e.container, e.renderElementType, neededHeight)
	return renderElem, e.renderingComplete, nil
}

func (e *FrameElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	if e.spreadsheetColumn != 0 {
		col = e.spreadsheetColumn - 1
	}
	row, col, err := e.container.renderSpreadsheet(row, col, ctx, renderer)
	if err != nil {
		return 0, 0, err
	}
	if e.spreadsheetAddEmptyRow {
		row++
	}
	return row, col, nil
}
