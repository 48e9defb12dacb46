package reportbro

import (
	"strconv"
	"strings"
)

// PageBreakElement forces the following elements onto a new page. It also
// serves as marker between pages in a container's render elements.
type PageBreakElement struct {
	docElementBase
}

func newPageBreakElement(report *Report, data map[string]any) *PageBreakElement {
	e := &PageBreakElement{docElementBase: newDocElementBase(report, data)}
	e.elementType = elementTypePageBreak
	e.printIf = getStrValue(data, "printIf")
	e.x = 0
	e.width = 0
	// render page break before other elements with same y-value
	e.sortOrder = 0
	e.self = e
	return e
}

// LineElement draws a horizontal line with the line style's color.
type LineElement struct {
	docElementBase
	style *LineStyle
}

func newLineElement(report *Report, data map[string]any) (*LineElement, error) {
	e := &LineElement{docElementBase: newDocElementBase(report, data)}
	e.elementType = elementTypeLine
	e.printIf = getStrValue(data, "printIf")
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		style, ok := report.styles[styleID].(*LineStyle)
		if !ok {
			return nil, newInternalError("style for line element " + strconv.Itoa(e.id) + " not found")
		}
		e.style = style
	} else {
		e.style = newLineStyle(data, "_line")
	}
	e.self = e
	return e, nil
}

func (e *LineElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	e.renderY = offsetY
	e.renderBottom = offsetY
	e.renderingComplete = true
	return &lineRenderElement{
		x:       e.x,
		width:   e.width,
		height:  e.height,
		renderY: offsetY,
		color:   e.style.color,
	}, true, nil
}

// lineRenderElement is the rendered slice of a line element, lines are
// always rendered completely on one page.
type lineRenderElement struct {
	x       float64
	width   float64
	height  float64
	renderY float64
	color   Color
}

func (r *lineRenderElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	doc.SetDrawColor(r.color.R, r.color.G, r.color.B)
	doc.SetLineWidth(r.height)
	x := r.x + containerOffsetX
	y := r.renderY + containerOffsetY + r.height/2
	doc.Line(x, y, x+r.width, y)
	return nil
}

func (r *lineRenderElement) getRenderBottom() float64 { return r.renderY + r.height }

func (r *lineRenderElement) cleanup() {}

// ImageElement renders an image from a data-uri, url, local file or
// parameter, keeping the aspect ratio within the element bounds.
type ImageElement struct {
	docElementBase
	source        string
	image         string
	imageFilename string
	style         *ImageStyle
	link          string

	imageKey     string
	preparedLink string
}

func newImageElement(report *Report, data map[string]any) (*ImageElement, error) {
	e := &ImageElement{
		docElementBase: newDocElementBase(report, data),
		source:         getStrValue(data, "source"),
		image:          getStrValue(data, "image"),
		imageFilename:  getStrValue(data, "imageFilename"),
		link:           getStrValue(data, "link"),
	}
	e.elementType = elementTypeImage
	e.printIf = getStrValue(data, "printIf")
	e.removeEmptyElement = getBoolValue(data, "removeEmptyElement")
	e.spreadsheetHide = getBoolValue(data, "spreadsheet_hide")
	e.spreadsheetColumn = getIntValue(data, "spreadsheet_column")
	e.spreadsheetAddEmptyRow = getBoolValue(data, "spreadsheet_addEmptyRow")
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		style, ok := report.styles[styleID].(*ImageStyle)
		if !ok {
			return nil, newInternalError("style for image element " + strconv.Itoa(e.id) + " not found")
		}
		e.style = style
	} else {
		e.style = newImageStyle(data, "_image")
	}
	e.self = e
	return e, nil
}

func (e *ImageElement) isPrinted(ctx *Context) (bool, error) {
	if e.removeEmptyElement && e.imageKey == "" {
		return false, nil
	}
	return e.docElementBase.isPrinted(ctx)
}

func (e *ImageElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	e.imageKey = ""
	// set image key which is used to fetch cached images
	if e.source != "" {
		if isParameterName(e.source) {
			if ref := ctx.getParameter(stripParameterName(e.source)); ref != nil {
				switch ref.parameter.Type {
				case ParameterTypeString:
					val, _ := ctx.getParameterData(ref)
					e.imageKey = toString(val)
				case ParameterTypeImage:
					e.imageKey = e.source + "_" + strconv.Itoa(ref.contextID)
				}
			}
		} else {
			// static url
			e.imageKey = e.source
		}
	} else if e.image != "" {
		// static image
		if e.imageFilename != "" {
			e.imageKey = e.imageFilename
		} else {
			e.imageKey = "image_" + strconv.Itoa(e.id)
		}
	}

	if e.imageKey != "" {
		if strings.HasPrefix(e.imageKey, "data:image/") {
			e.image = e.imageKey
			e.imageKey = "image_" + strconv.Itoa(e.id)
		}
		if err := e.report.loadImage(e.imageKey, ctx, e.id, e.source, e.image); err != nil {
			return err
		}
	}

	if e.link != "" {
		preparedLink, err := ctx.fillParameters(e.link, e.id, "link", "")
		if err != nil {
			return err
		}
		e.preparedLink = preparedLink
		if !isValidLink(e.preparedLink) {
			return newError(msgKeyInvalidLink, e.id, "link")
		}
	}
	return nil
}

func (e *ImageElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	renderElem, _, err := e.docElementBase.getNextRenderElement(
		offsetY, containerTop, containerWidth, containerHeight, ctx, doc)
	if err != nil {
		return nil, false, err
	}
	if renderElem == nil {
		return nil, false, nil
	}
	return newImageRenderElement(e.report, offsetY, e), true, nil
}

func (e *ImageElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	if e.spreadsheetColumn != 0 {
		col = e.spreadsheetColumn - 1
	}
	if e.imageKey != "" {
		if img := e.report.getImage(e.imageKey); img != nil && img.data != nil {
			data, imageType, err := img.spreadsheetImage(e.width, e.height)
			if err != nil {
				field := "image"
				if e.source != "" {
					field = "source"
				}
				return 0, 0, newErrorInfo(msgKeyLoadingImageFailed, e.id, field, err.Error())
			}
			if err := renderer.insertImage(row, col, e.imageFilename, data, imageType, e.width, e.preparedLink); err != nil {
				return 0, 0, err
			}
		}
	}
	if e.spreadsheetAddEmptyRow {
		row += 2
	} else {
		row++
	}
	return row, col + 1, nil
}

func isValidLink(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

// BarCodeElement renders a bar code in one of the supported formats. The
// bar code image is created in memory and registered with the pdf document.
type BarCodeElement struct {
	docElementBase
	content              string
	format               string
	displayValue         bool
	guardBar             bool
	barWidth             float64
	rotate               bool
	errorCorrectionLevel string
	horizontalAlignment  HorizontalAlignment
	verticalAlignment    VerticalAlignment
	spreadsheetColspan   int

	preparedContent string
	imageBytes      []byte
	barcodeWidth    float64
	barcodeHeight   float64
}

func newBarCodeElement(report *Report, data map[string]any) (*BarCodeElement, error) {
	e := &BarCodeElement{
		docElementBase:       newDocElementBase(report, data),
		content:              getStrValue(data, "content"),
		format:               strings.ToLower(getStrValue(data, "format")),
		displayValue:         getBoolValue(data, "displayValue"),
		guardBar:             getBoolValue(data, "guardBar"),
		rotate:               getBoolValue(data, "rotate"),
		errorCorrectionLevel: getStrValue(data, "errorCorrectionLevel"),
		horizontalAlignment:  parseHorizontalAlignment(getStrValue(data, "horizontalAlignment")),
		verticalAlignment:    parseVerticalAlignment(getStrValue(data, "verticalAlignment")),
		spreadsheetColspan:   getIntValue(data, "spreadsheet_colspan"),
	}
	e.elementType = elementTypeBarCode
	switch e.format {
	case "code39", "code128", "ean8", "ean13", "upc", "qrcode", "pdf417":
	default:
		return nil, newInternalError("invalid format for barcode element " + strconv.Itoa(e.id))
	}
	if e.format != "ean8" && e.format != "ean13" {
		e.guardBar = false
	}
	// default for barWidth if setting is not available since it was
	// introduced in a later version and could be missing in an older
	// report definition
	if _, exists := data["barWidth"]; exists {
		e.barWidth = getFloatValue(data, "barWidth")
	} else {
		e.barWidth = 2.0
	}
	if e.format != "qrcode" && (e.barWidth < 0.3 || e.barWidth > 3.0) {
		return nil, newInternalError("bar width for barcode element " + strconv.Itoa(e.id) + " is out of range")
	}
	if e.format == "qrcode" {
		e.displayValue = false
		e.rotate = false
	}
	if e.rotate {
		// value text is not supported for rotated bar codes
		e.displayValue = false
	}
	e.printIf = getStrValue(data, "printIf")
	e.removeEmptyElement = getBoolValue(data, "removeEmptyElement")
	e.spreadsheetHide = getBoolValue(data, "spreadsheet_hide")
	e.spreadsheetColumn = getIntValue(data, "spreadsheet_column")
	e.spreadsheetAddEmptyRow = getBoolValue(data, "spreadsheet_addEmptyRow")
	if !e.rotate && e.height < 1 {
		return nil, newInternalError("invalid height for barcode element " + strconv.Itoa(e.id))
	}
	if e.rotate && e.width < 1 {
		return nil, newInternalError("invalid width for barcode element " + strconv.Itoa(e.id))
	}
	if e.rotate {
		e.barcodeHeight = e.width
	} else {
		e.barcodeHeight = e.height
	}
	if e.displayValue {
		// save space for barcode value as text
		e.barcodeHeight -= 22
	}
	e.self = e
	return e, nil
}

func (e *BarCodeElement) isPrinted(ctx *Context) (bool, error) {
	if e.preparedContent == "" {
		return false, nil
	}
	return e.docElementBase.isPrinted(ctx)
}

func (e *BarCodeElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	preparedContent, err := ctx.fillParameters(e.content, e.id, "content", "")
	if err != nil {
		return err
	}
	e.preparedContent = preparedContent
	e.imageBytes = nil
	if e.preparedContent == "" {
		return nil
	}
	barcodeHeight := e.barcodeHeight
	if e.guardBar {
		// guard bars are longer than normal bars, reduce the height of the
		// normal bars so the maximum height is not exceeded
		barcodeHeight -= 7
	}
	if e.format == "qrcode" {
		// use defined height in layout since qr code is quadratic
		e.barcodeWidth = e.barcodeHeight
	}
	data, barcodeWidth, content, err := generateBarcode(
		e.format, e.preparedContent, e.barWidth, e.width, barcodeHeight, e.errorCorrectionLevel, e.rotate)
	if err != nil {
		return newErrorInfo(msgKeyInvalidBarCode, e.id, "content", err.Error())
	}
	e.preparedContent = content
	if e.format != "qrcode" {
		e.barcodeWidth = barcodeWidth
	}
	if !onlyVerify {
		e.imageBytes = data
	}
	return nil
}

func (e *BarCodeElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	contentWidth := 0.0
	if e.displayValue {
		if err := doc.SetFont("courier", "B", 18); err != nil {
			return nil, false, err
		}
		contentWidth = doc.GetStringWidth(e.preparedContent)
	}

	var renderHeight float64
	if e.rotate {
		// rendered height is maximum of barcode width, displayed value text
		// width and barcode element height
		renderHeight = e.barcodeWidth
		if contentWidth > renderHeight {
			renderHeight = contentWidth
		}
		if e.height > renderHeight {
			renderHeight = e.height
		}
	} else {
		// make sure barcode fits inside available space of container when
		// barcode width depends on barcode value
		if e.format == "code39" || e.format == "code128" {
			width := e.barcodeWidth
			if contentWidth > width {
				width = contentWidth
			}
			if e.x+width > containerWidth {
				return nil, false, newError(msgKeyInvalidSize, e.id, "height")
			}
		}
		renderHeight = e.height
	}

	if offsetY+renderHeight <= containerHeight {
		e.renderY = offsetY
		e.renderBottom = offsetY + renderHeight
		e.renderingComplete = true
		return newBarCodeRenderElement(e.report, offsetY, contentWidth, renderHeight, e), true, nil
	}
	if offsetY == 0 && containerTop == 0 {
		return nil, false, newError(msgKeyInvalidSize, e.id, "size")
	}
	return nil, false, nil
}

func (e *BarCodeElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	if e.content != "" {
		if e.spreadsheetColumn != 0 {
			col = e.spreadsheetColumn - 1
		}
		if err := renderer.write(row, col, e.spreadsheetColspan, e.preparedContent, 0, e.width, ""); err != nil {
			return 0, 0, err
		}
		if e.spreadsheetAddEmptyRow {
			row += 2
		} else {
			row++
		}
		col++
	}
	return row, col, nil
}

func (e *BarCodeElement) cleanup() {
	e.imageBytes = nil
}

