package reportbro

import "sort"

// Container owns an ordered set of elements sharing one coordinate space: a
// document band, a frame interior or one row of a table/section band. It
// carves the content of its elements into page sized chunks.
type Container struct {
	id     string
	report *Report
	width  float64
	height float64

	docElements []docElement

	// allowPageBreak is false for containers which must fit their available
	// space, e.g. document header/footer and table rows.
	allowPageBreak        bool
	sortedElements        []docElement
	renderElements        []renderElement
	renderElementsCreated bool
	explicitPageBreak     bool
	manualPageBreak       bool
	pageY                 float64
	firstElementOffsetY   float64
	// maxBottom is the bottom of the lowest element in layout coordinates,
	// renderBottom the lowest rendered bottom on the current page.
	maxBottom    float64
	renderBottom float64
}

func newContainer(containerID string, containers map[string]*Container, report *Report) *Container {
	c := &Container{
		id:                containerID,
		report:            report,
		allowPageBreak:    true,
		explicitPageBreak: true,
	}
	if containers != nil {
		containers[c.id] = c
	}
	return c
}

func (c *Container) add(elem docElement) {
	c.docElements = append(c.docElements, elem)
}

func (c *Container) isVisible() bool { return true }

// prepare collects the elements for a render pass: prepares each element,
// sorts them and builds the predecessor graph for pdf rendering.
func (c *Container) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	c.sortedElements = c.sortedElements[:0]
	for _, elem := range c.docElements {
		eb := elem.base()
		if doc != nil || !eb.spreadsheetHide || onlyVerify {
			if err := elem.prepare(ctx, doc, onlyVerify); err != nil {
				return err
			}
			if !c.allowPageBreak {
				// make sure element can be rendered multiple times (for header/footer)
				eb.firstRenderElement = true
				eb.renderingComplete = false
			}
			c.sortedElements = append(c.sortedElements, elem)
		}
	}

	if doc != nil {
		sort.SliceStable(c.sortedElements, func(i, j int) bool {
			a, b := c.sortedElements[i].base(), c.sortedElements[j].base()
			if a.y != b.y {
				return a.y < b.y
			}
			return a.sortOrder < b.sortOrder
		})
		// predecessors are only needed for rendering pdf document
		for i, elem := range c.sortedElements {
			eb := elem.base()
			for j := i - 1; j >= 0; j-- {
				elem2 := c.sortedElements[j]
				if _, isPageBreak := elem2.(*PageBreakElement); isPageBreak {
					// new page so all elements before are not direct predecessors
					break
				}
				if eb.isPredecessor(elem2) {
					eb.addPredecessor(elem2)
				}
			}
		}
		c.renderElements = nil
		c.renderBottom = 0
		c.firstElementOffsetY = 0
		c.maxBottom = 0
		for _, elem := range c.sortedElements {
			if eb := elem.base(); eb.bottom > c.maxBottom {
				c.maxBottom = eb.bottom
			}
		}
	} else {
		sort.SliceStable(c.sortedElements, func(i, j int) bool {
			a, b := c.sortedElements[i].base(), c.sortedElements[j].base()
			if a.y != b.y {
				return a.y < b.y
			}
			return a.x < b.x
		})
	}
	return nil
}

func (c *Container) clearRenderedElements() {
	c.renderElements = nil
	c.renderBottom = 0
}

// reset re-arms the container for reuse, e.g. a repeating header band or the
// content band of a section when moving to the next row. All elements are
// marked as unrendered again.
func (c *Container) reset() {
	c.renderElements = nil
	c.renderBottom = 0
	c.manualPageBreak = false
	c.explicitPageBreak = true
	c.pageY = 0
	c.firstElementOffsetY = 0
	for _, elem := range c.docElements {
		eb := elem.base()
		eb.firstRenderElement = true
		eb.renderingComplete = false
	}
}

// createRenderElements produces the render slices for the current page.
// containerTop is the absolute offset of the container on the page (used to
// detect whether an element which does not fit is already at the very top of
// an empty page). Returns true when all elements are completely rendered.
func (c *Container) createRenderElements(containerTop, containerHeight float64, ctx *Context, doc canvas) (bool, error) {
	i := 0
	newPage := false
	var processedElements []docElement
	completedElements := make(map[int]bool)

	c.renderElementsCreated = false
	setExplicitPageBreak := false
	for !newPage && i < len(c.sortedElements) {
		elem := c.sortedElements[i]
		eb := elem.base()
		if eb.hasUncompletedPredecessor(completedElements) {
			// a predecessor is not completed yet -> start new page
			newPage = true
			continue
		}
		elemDeleted := false
		if _, isPageBreak := elem.(*PageBreakElement); isPageBreak {
			if !c.allowPageBreak {
				return false, newError(msgKeyInvalidSize, eb.id, "y")
			}
			c.sortedElements = append(c.sortedElements[:i], c.sortedElements[i+1:]...)
			elemDeleted = true
			newPage = true
			setExplicitPageBreak = true
			c.manualPageBreak = true
			c.pageY = eb.y
		} else {
			complete := false
			var offsetY float64
			if len(eb.predecessors) > 0 {
				// element is on same page as predecessor element(s) so offset
				// is relative to predecessors
				offsetY = eb.getOffsetY()
			} else if c.allowPageBreak {
				if eb.firstRenderElement && c.explicitPageBreak {
					offsetY = eb.y - c.pageY
				}
			} else {
				offsetY = eb.y - c.firstElementOffsetY
				if offsetY < 0 {
					offsetY = 0
				}
			}

			printed, err := elem.isPrinted(ctx)
			if err != nil {
				return false, err
			}
			if printed {
				if offsetY >= containerHeight {
					newPage = true
				}
				if !newPage {
					renderElem, elemComplete, err := elem.getNextRenderElement(
						offsetY, containerTop, c.width, containerHeight, ctx, doc)
					if err != nil {
						return false, err
					}
					complete = elemComplete
					if renderElem != nil {
						if complete {
							processedElements = append(processedElements, elem)
						}
						c.renderElements = append(c.renderElements, renderElem)
						c.renderElementsCreated = true
						if bottom := renderElem.getRenderBottom(); bottom > c.renderBottom {
							c.renderBottom = bottom
						}
					}
				}
			} else {
				processedElements = append(processedElements, elem)
				eb.finishEmptyElement(offsetY)
				complete = true
			}
			if complete {
				completedElements[eb.id] = true
				c.sortedElements = append(c.sortedElements[:i], c.sortedElements[i+1:]...)
				elemDeleted = true
			}
		}
		if !elemDeleted {
			i++
		}
	}

	// in case of manual page break the element on the next page is
	// positioned relative to the page break position
	if c.allowPageBreak {
		c.explicitPageBreak = setExplicitPageBreak
	} else {
		c.explicitPageBreak = true
	}

	if len(c.sortedElements) > 0 {
		if c.allowPageBreak {
			pageBreak := newPageBreakElement(c.report, map[string]any{"y": -1.0})
			c.renderElements = append(c.renderElements, pageBreak)
		} else {
			c.firstElementOffsetY = c.sortedElements[0].base().y
		}
		for _, processedElement := range processedElements {
			// remove dependency to predecessors because the successor element
			// is either already added to render elements or on a new page
			for _, successor := range processedElement.base().successors {
				successor.base().clearPredecessor(processedElement)
			}
		}
		return false, nil
	}
	return true, nil
}

// renderPDF draws the render elements of the current page and removes them,
// stopping at a page break marker which separates the next page's elements.
func (c *Container) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas, cleanup bool) error {
	counter := 0
	for _, renderElem := range c.renderElements {
		counter++
		if _, isPageBreak := renderElem.(*PageBreakElement); isPageBreak {
			break
		}
		if err := renderElem.renderPDF(containerOffsetX, containerOffsetY, doc); err != nil {
			return err
		}
		if cleanup {
			renderElem.cleanup()
		}
	}
	c.renderElements = c.renderElements[counter:]
	return nil
}

func (c *Container) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	maxCol := col
	i := 0
	count := len(c.sortedElements)
	for i < count {
		elem := c.sortedElements[i]
		printed, err := elem.isPrinted(ctx)
		if err != nil {
			return 0, 0, err
		}
		if !printed {
			i++
			continue
		}
		// render elements with the same y-coordinate in the same spreadsheet row
		rowElements := []docElement{elem}
		j := i + 1
		for j < count {
			elem2 := c.sortedElements[j]
			if elem2.base().y != elem.base().y {
				break
			}
			printed2, err := elem2.isPrinted(ctx)
			if err != nil {
				return 0, 0, err
			}
			if printed2 {
				rowElements = append(rowElements, elem2)
			}
			j++
		}
		i = j
		currentRow, currentCol := row, col
		for _, rowElement := range rowElements {
			tmpRow, nextCol, err := rowElement.renderSpreadsheet(currentRow, currentCol, ctx, renderer)
			if err != nil {
				return 0, 0, err
			}
			currentCol = nextCol
			if tmpRow > row {
				row = tmpRow
			}
			if currentCol > maxCol {
				maxCol = currentCol
			}
		}
	}
	return row, maxCol, nil
}

func (c *Container) isFinished() bool {
	return len(c.renderElements) == 0
}

func (c *Container) cleanup() {
	for _, elem := range c.docElements {
		elem.cleanup()
	}
}

// Frame is the container embedded in a frame element. It never breaks pages
// itself, the frame element drives continuation across pages.
func newFrame(width, height float64, containerID string, containers map[string]*Container, report *Report) *Container {
	c := newContainer(containerID, containers, report)
	c.width = width
	c.height = height
	c.allowPageBreak = false
	return c
}

// ReportBand is a top level document band: header, content or footer.
type ReportBand struct {
	*Container
	band BandType
}

func newReportBand(band BandType, containerID string, containers map[string]*Container, report *Report) *ReportBand {
	b := &ReportBand{
		Container: newContainer(containerID, containers, report),
		band:      band,
	}
	props := report.documentProperties
	b.width = props.pageWidth - props.marginLeft - props.marginRight
	switch band {
	case BandContent:
		b.height = props.contentHeight
	case BandHeader:
		b.allowPageBreak = false
		b.height = props.headerSize
	case BandFooter:
		b.allowPageBreak = false
		b.height = props.footerSize
	}
	return b
}

func (b *ReportBand) isVisible() bool {
	switch b.band {
	case BandHeader:
		return b.report.documentProperties.header
	case BandFooter:
		return b.report.documentProperties.footer
	}
	return true
}
