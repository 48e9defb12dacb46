package reportbro

// docElement is implemented by every element defined in a report template.
// Elements are prepared once per container render, then asked repeatedly for
// the next render element until their content is fully placed.
type docElement interface {
	base() *docElementBase
	prepare(ctx *Context, doc canvas, onlyVerify bool) error
	isPrinted(ctx *Context) (bool, error)
	getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error)
	renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error)
	cleanup()
}

// renderElement is a placed piece of content, either a complete element or
// the part of an element which fits on the current page.
type renderElement interface {
	renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error
	getRenderBottom() float64
	cleanup()
}

// docElementBase carries the geometry and flow state shared by all template
// elements. Coordinates are in points relative to the owning container, y
// grows downwards.
type docElementBase struct {
	report                 *Report
	self                   docElement // the concrete element embedding this base
	id                     int
	elementType            docElementType
	x                      float64
	y                      float64
	width                  float64
	height                 float64
	bottom                 float64
	renderY                float64
	renderBottom           float64
	printIf                string
	removeEmptyElement     bool
	spreadsheetHide        bool
	spreadsheetColumn      int
	spreadsheetAddEmptyRow bool
	firstRenderElement     bool
	renderingComplete      bool
	predecessors           []docElement
	successors             []docElement
	sortOrder              int // sort order for elements with same y-value
}

func newDocElementBase(report *Report, data map[string]any) docElementBase {
	e := docElementBase{
		report:             report,
		id:                 getIntValue(data, "id"),
		x:                  getFloatValue(data, "x"),
		y:                  getFloatValue(data, "y"),
		width:              getFloatValue(data, "width"),
		height:             getFloatValue(data, "height"),
		spreadsheetHide:    true,
		firstRenderElement: true,
		sortOrder:          1,
	}
	e.bottom = e.y + e.height
	return e
}

func (e *docElementBase) base() *docElementBase { return e }

// isPredecessor reports whether elem is a direct predecessor of this
// element: it ends at or above this element's start and ends below the start
// of any already known predecessor (otherwise elem precedes the predecessor,
// not this element).
func (e *docElementBase) isPredecessor(elem docElement) bool {
	eb := elem.base()
	return e.y >= eb.bottom && (len(e.predecessors) == 0 || eb.bottom > e.predecessors[0].base().y)
}

func (e *docElementBase) addPredecessor(predecessor docElement) {
	e.predecessors = append(e.predecessors, predecessor)
	pb := predecessor.base()
	pb.successors = append(pb.successors, e.containerElement())
}

// containerElement returns the interface value of the concrete element so
// the base struct can link it into predecessor/successor lists and return it
// as render element.
func (e *docElementBase) containerElement() docElement {
	if e.self != nil {
		return e.self
	}
	return e
}

// hasUncompletedPredecessor reports whether at least one predecessor has not
// finished rendering yet.
func (e *docElementBase) hasUncompletedPredecessor(completedElements map[int]bool) bool {
	for _, predecessor := range e.predecessors {
		pb := predecessor.base()
		if !completedElements[pb.id] || !pb.renderingComplete {
			return true
		}
	}
	return false
}

// getOffsetY returns the y-coord where rendering of this element starts: the
// lowest render bottom of its predecessors plus the minimum designed gap to
// any predecessor.
func (e *docElementBase) getOffsetY() float64 {
	var maxBottom float64
	minPredecessorDist := -1.0
	for _, predecessor := range e.predecessors {
		pb := predecessor.base()
		if pb.renderBottom > maxBottom {
			maxBottom = pb.renderBottom
		}
		dist := e.y - pb.bottom
		if minPredecessorDist == -1 || dist < minPredecessorDist {
			minPredecessorDist = dist
		}
	}
	if minPredecessorDist > 0 {
		return maxBottom + minPredecessorDist
	}
	return maxBottom
}

func (e *docElementBase) clearPredecessor(elem docElement) {
	for i, predecessor := range e.predecessors {
		if predecessor.base() == elem.base() {
			e.predecessors = append(e.predecessors[:i], e.predecessors[i+1:]...)
			break
		}
	}
}

func (e *docElementBase) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	return nil
}

func (e *docElementBase) isPrinted(ctx *Context) (bool, error) {
	if e.printIf != "" {
		result, err := ctx.evaluateExpression(e.printIf, e.id, "printIf")
		if err != nil {
			return false, err
		}
		return isTruthy(result), nil
	}
	return true, nil
}

func (e *docElementBase) finishEmptyElement(offsetY float64) {
	if e.removeEmptyElement {
		e.renderBottom = offsetY
	} else {
		e.renderBottom = offsetY + e.height
	}
	e.renderingComplete = true
}

// getNextRenderElement places the whole element if it fits into the
// remaining container space. Elements with flowing content override this.
func (e *docElementBase) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	if offsetY+e.height <= containerHeight {
		e.renderY = offsetY
		e.renderBottom = offsetY + e.height
		e.renderingComplete = true
		return e.containerElement().(renderElement), true, nil
	}
	return nil, false, nil
}

func (e *docElementBase) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	return nil
}

func (e *docElementBase) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	return row, col, nil
}

func (e *docElementBase) getRenderBottom() float64 { return e.renderBottom }

func (e *docElementBase) cleanup() {}

// drawBorder draws the border lines of an element. For a partial render
// element the top border is only drawn on the first part and the bottom
// border only on the last part.
func drawBorder(x, y, width, height float64, renderElementType RenderElementType, style *borderStyle, doc canvas) {
	doc.SetDrawColor(style.borderColor.R, style.borderColor.G, style.borderColor.B)
	doc.SetLineWidth(style.borderWidth)
	borderOffset := style.borderWidth / 2
	borderX := x + borderOffset
	borderY := y + borderOffset
	borderWidth := width - style.borderWidth
	borderHeight := height - style.borderWidth
	if style.borderAll && renderElementType == RenderElementComplete {
		doc.Rect(borderX, borderY, borderWidth, borderHeight, "D")
		return
	}
	if style.borderLeft {
		doc.Line(borderX, borderY, borderX, borderY+borderHeight)
	}
	if style.borderTop && (renderElementType == RenderElementComplete || renderElementType == RenderElementFirst) {
		doc.Line(borderX, borderY, borderX+borderWidth, borderY)
	}
	if style.borderRight {
		doc.Line(borderX+borderWidth, borderY, borderX+borderWidth, borderY+borderHeight)
	}
	if style.borderBottom && (renderElementType == RenderElementComplete || renderElementType == RenderElementLast) {
		doc.Line(borderX, borderY+borderHeight, borderX+borderWidth, borderY+borderHeight)
	}
}
