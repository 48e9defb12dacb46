package reportbro

import (
	"strings"
	"time"
)

// TextElement renders content with optional parameter references or an
// expression. The text can flow over multiple pages unless it must be
// printed on the same page.
type TextElement struct {
	docElementBase
	content               string
	eval                  bool
	style                 *TextStyle
	pattern               string
	link                  string
	csCondition           string
	conditionalStyle      *TextStyle
	csAdditionalRules     []*conditionalStyleRule
	additionalStyles      map[string]*TextStyle
	alwaysPrintOnSamePage bool
	spreadsheetColspan    int
	spreadsheetType       SpreadsheetType
	spreadsheetPattern    string
	spreadsheetTextWrap   bool
	spreadsheetFormats    map[string]int

	preparedContent string
	textHeight      float64
	lineIndex       int
	linesCount      int
	textLines       []*textLine
	usedStyle       *TextStyle
	preparedLink    string
	spaceTop        float64
	spaceBottom     float64
	totalHeight     float64
}

func newTextElement(report *Report, data map[string]any) (*TextElement, error) {
	e := &TextElement{
		docElementBase:     newDocElementBase(report, data),
		content:            getStrValue(data, "content"),
		eval:               getBoolValue(data, "eval"),
		pattern:            getStrValue(data, "pattern"),
		link:               getStrValue(data, "link"),
		csCondition:        getStrValue(data, "cs_condition"),
		additionalStyles:   make(map[string]*TextStyle),
		spreadsheetFormats: make(map[string]int),
		lineIndex:          -1,
	}
	e.elementType = elementTypeText
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		style, ok := report.styles[styleID].(*TextStyle)
		if !ok {
			return nil, newInternalError("style for text element not found")
		}
		e.style = style
	} else {
		e.style = newTextStyle(data, "", "_text")
	}
	e.printIf = getStrValue(data, "printIf")
	if e.csCondition != "" {
		if styleID := getIntValue(data, "cs_styleId"); styleID != 0 {
			style, ok := report.styles[styleID].(*TextStyle)
			if !ok {
				return nil, newInternalError("conditional style for text element not found")
			}
			e.conditionalStyle = style
		} else {
			e.conditionalStyle = newTextStyle(data, "cs_", "_text_cs")
		}
		if rules, ok := data["cs_additionalRules"].([]any); ok {
			for ruleNr, ruleData := range rules {
				rule, ok := ruleData.(map[string]any)
				if !ok {
					return nil, newInternalError("invalid additional rules for text element")
				}
				e.csAdditionalRules = append(e.csAdditionalRules,
					newConditionalStyleRule(report, rule, e.id, ruleNr+1))
			}
		}
	}
	e.removeEmptyElement = getBoolValue(data, "removeEmptyElement")
	e.alwaysPrintOnSamePage = getBoolValue(data, "alwaysPrintOnSamePage")
	e.spreadsheetHide = getBoolValue(data, "spreadsheet_hide")
	e.spreadsheetColumn = getIntValue(data, "spreadsheet_column")
	e.spreadsheetColspan = getIntValue(data, "spreadsheet_colspan")
	e.spreadsheetAddEmptyRow = getBoolValue(data, "spreadsheet_addEmptyRow")
	e.spreadsheetType = parseSpreadsheetType(getStrValue(data, "spreadsheet_type"))
	e.spreadsheetPattern = getStrValue(data, "spreadsheet_pattern")
	e.spreadsheetTextWrap = getBoolValue(data, "spreadsheet_textWrap")
	e.self = e
	return e, nil
}

func (e *TextElement) fillContent(ctx *Context) (string, error) {
	if tt, ok := e.self.(*TableTextElement); ok && tt.simpleArrayParam != nil {
		if ref := ctx.getParameter(tt.simpleArrayParam.Name); ref != nil {
			if values, exists := ctx.getParameterData(ref); exists {
				if cellValues, ok := values.([]any); ok && tt.simpleArrayItemIndex < len(cellValues) {
					return ctx.getFormattedValue(
						cellValues[tt.simpleArrayItemIndex], tt.simpleArrayParam, e.id, "", true)
				}
			}
		}
	}
	return ctx.fillParameters(e.content, e.id, "content", e.pattern)
}

func (e *TextElement) isPrinted(ctx *Context) (bool, error) {
	if e.removeEmptyElement && e.preparedContent == "" {
		return false, nil
	}
	return e.docElementBase.isPrinted(ctx)
}

func (e *TextElement) patternError() *Error {
	err := newError(msgKeyInvalidPattern, e.id, "pattern")
	err.Context = e.content
	return err
}

func (e *TextElement) prepare(ctx *Context, doc canvas, onlyVerify bool) error {
	var content string
	var err error
	if e.eval {
		value, evalErr := ctx.evaluateExpression(e.content, e.id, "content")
		if evalErr != nil {
			return evalErr
		}
		if e.pattern != "" {
			switch v := value.(type) {
			case int, int64, float64:
				number, _ := toFloat(v)
				content, err = formatNumber(number, e.pattern, ctx.patternLocale)
				if err != nil {
					return e.patternError()
				}
				if strings.Contains(e.pattern, "$") {
					content = strings.ReplaceAll(content, "$", ctx.patternCurrencySymbol)
				}
			case time.Time:
				content, err = formatDate(v, e.pattern)
				if err != nil {
					return e.patternError()
				}
			default:
				content = toString(value)
			}
		} else {
			content = toString(value)
		}
	} else {
		if doc == nil && e.spreadsheetType != SpreadsheetTypeDefault {
			// content is exported to spreadsheet with a specific type, use
			// the raw string representation so the content can be parsed
			// for the type when the spreadsheet is rendered
			content, err = ctx.fillParametersRaw(e.content, e.id, "content")
		} else {
			content, err = e.fillContent(ctx)
		}
		if err != nil {
			return err
		}
	}

	if e.link != "" {
		e.preparedLink, err = ctx.fillParameters(e.link, e.id, "link", "")
		if err != nil {
			return err
		}
		if !isValidLink(e.preparedLink) {
			return newError(msgKeyInvalidLink, e.id, "link")
		}
	}

	e.usedStyle = e.style
	if e.csCondition != "" {
		result, err := ctx.evaluateExpression(e.csCondition, e.id, "cs_condition")
		if err != nil {
			return err
		}
		if isTruthy(result) {
			e.usedStyle = e.conditionalStyle
			for _, rule := range e.csAdditionalRules {
				ruleTrue, err := rule.isTrue(ctx, e.id)
				if err != nil {
					return err
				}
				if ruleTrue {
					e.usedStyle = rule.style
					break
				}
			}
		}
	}
	_, isTableText := e.self.(*TableTextElement)
	if e.usedStyle.verticalAlignment != VAlignTop && !e.alwaysPrintOnSamePage && !isTableText {
		e.alwaysPrintOnSamePage = true
	}
	availableWidth := e.width - e.usedStyle.paddingLeft - e.usedStyle.paddingRight

	e.preparedContent = content
	e.textLines = nil
	if doc != nil {
		if err := e.splitTextLines(content, availableWidth, doc); err != nil {
			return err
		}
		e.lineIndex = 0
		if tt, ok := e.self.(*TableTextElement); ok {
			total := e.textHeight + e.usedStyle.paddingTop + e.usedStyle.paddingBottom
			if total < tt.height {
				total = tt.height
			}
			e.totalHeight = total
		} else {
			e.setHeight(e.height)
		}
	}
	return nil
}

func (e *TextElement) getStyle(styleID string, backgroundColor Color, baseStyle *TextStyle) *TextStyle {
	if style, exists := e.additionalStyles[styleID]; exists {
		return style
	}
	style := baseStyle.withBackground(styleID, backgroundColor)
	e.additionalStyles[styleID] = style
	return style
}

// setHeight distributes the remaining vertical space according to the
// vertical alignment of the used style.
func (e *TextElement) setHeight(height float64) {
	e.spaceTop = 0
	e.spaceBottom = 0
	totalHeight := 0.0
	if e.textHeight > 0 {
		totalHeight = e.textHeight + e.usedStyle.paddingTop + e.usedStyle.paddingBottom
	}
	if totalHeight < height {
		remainingSpace := height - totalHeight
		switch e.usedStyle.verticalAlignment {
		case VAlignTop:
			e.spaceBottom = remainingSpace
		case VAlignMiddle:
			e.spaceTop = remainingSpace / 2
			e.spaceBottom = remainingSpace / 2
		case VAlignBottom:
			e.spaceTop = remainingSpace
		}
	}
	e.totalHeight = totalHeight + e.spaceTop + e.spaceBottom
}

func (e *TextElement) getNextRenderElement(offsetY, containerTop, containerWidth, containerHeight float64, ctx *Context, doc canvas) (renderElement, bool, error) {
	availableHeight := containerHeight - offsetY
	if e.alwaysPrintOnSamePage && e.firstRenderElement &&
		e.totalHeight > availableHeight && (offsetY != 0 || containerTop != 0) {
		return nil, false, nil
	}

	var lines []*textLine
	remainingHeight := availableHeight
	blockHeight := 0.0
	textHeight := 0.0
	textOffsetY := 0.0
	if e.spaceTop > 0 {
		spaceTop := e.spaceTop
		if spaceTop > remainingHeight {
			spaceTop = remainingHeight
		}
		e.spaceTop -= spaceTop
		blockHeight += spaceTop
		remainingHeight -= spaceTop
		textOffsetY = spaceTop
	}
	if e.spaceTop == 0 {
		for e.lineIndex < e.linesCount {
			lastLine := e.lineIndex >= e.linesCount-1
			lineHeight := e.textLines[e.lineIndex].height
			tmpHeight := lineHeight
			if e.lineIndex == 0 {
				tmpHeight += e.usedStyle.paddingTop
			}
			if lastLine {
				tmpHeight += e.usedStyle.paddingBottom
			}
			if tmpHeight > remainingHeight {
				break
			}
			lines = append(lines, e.textLines[e.lineIndex])
			remainingHeight -= tmpHeight
			blockHeight += tmpHeight
			textHeight += lineHeight
			e.lineIndex++
		}
	}

	if e.lineIndex >= e.linesCount && e.spaceBottom > 0 {
		spaceBottom := e.spaceBottom
		if spaceBottom > remainingHeight {
			spaceBottom = remainingHeight
		}
		e.spaceBottom -= spaceBottom
		blockHeight += spaceBottom
		remainingHeight -= spaceBottom
	}

	if e.spaceTop == 0 && e.lineIndex == 0 && e.linesCount > 0 {
		// even first line does not fit
		if offsetY != 0 || containerTop != 0 {
			// either container is not at top of page or element is not at
			// top inside the container, try on next page
			return nil, false, nil
		}
		// already on top of container
		return nil, false, newError(msgKeyInvalidSize, e.id, "height")
	}

	renderingComplete := e.lineIndex >= e.linesCount && e.spaceTop == 0 && e.spaceBottom == 0
	if !renderingComplete && remainingHeight > 0 {
		// draw text block until end of container
		blockHeight += remainingHeight
		remainingHeight = 0
	}

	var renderElementType RenderElementType
	if e.firstRenderElement && renderingComplete {
		renderElementType = RenderElementComplete
	} else if e.firstRenderElement {
		renderElementType = RenderElementFirst
	} else if renderingComplete {
		renderElementType = RenderElementLast
		if e.usedStyle.verticalAlignment == VAlignBottom {
			// make sure text is exactly aligned to bottom
			tmpOffsetY := blockHeight - e.usedStyle.paddingBottom - textHeight
			if tmpOffsetY > 0 {
				textOffsetY = tmpOffsetY
			}
		}
	} else {
		renderElementType = RenderElementBetween
	}

	textBlock := &textBlockElement{
		x:                 e.x,
		renderY:           offsetY,
		renderBottom:      offsetY + blockHeight,
		width:             e.width,
		height:            blockHeight,
		textOffsetY:       textOffsetY,
		lines:             lines,
		renderElementType: renderElementType,
		style:             e.usedStyle,
	}
	e.firstRenderElement = false
	e.renderBottom = textBlock.renderBottom
	e.renderingComplete = renderingComplete
	return textBlock, renderingComplete, nil
}

func (e *TextElement) renderSpreadsheet(row, col int, ctx *Context, renderer *spreadsheetRenderer) (int, int, error) {
	var content any = e.preparedContent
	switch e.spreadsheetType {
	case SpreadsheetTypeDate:
		date, err := parseDatetimeString(e.preparedContent)
		if err != nil {
			return 0, 0, newError(msgKeyInvalidSpreadsheetDate, e.id, "spreadsheet_type")
		}
		content = date
	case SpreadsheetTypeNumber:
		number, err := parseNumberString(e.preparedContent)
		if err != nil {
			return 0, 0, newError(msgKeyInvalidSpreadsheetNumber, e.id, "spreadsheet_type")
		}
		content = number
	}

	styleID, cached := e.spreadsheetFormats[e.usedStyle.id]
	if !cached {
		format := &cellStyle{
			bold:          e.usedStyle.bold,
			italic:        e.usedStyle.italic,
			underline:     e.usedStyle.underline,
			strikethrough: e.usedStyle.strikethrough,
			textWrap:      e.spreadsheetTextWrap,
		}
		hasFormat := format.bold || format.italic || format.underline || format.strikethrough || format.textWrap
		switch e.usedStyle.horizontalAlignment {
		case HAlignCenter:
			format.align = "center"
			hasFormat = true
		case HAlignRight:
			format.align = "right"
			hasFormat = true
		case HAlignJustify:
			format.align = "justify"
			hasFormat = true
		}
		switch e.usedStyle.verticalAlignment {
		case VAlignMiddle:
			format.valign = "center"
			hasFormat = true
		case VAlignBottom:
			format.valign = "bottom"
			hasFormat = true
		}
		if !e.usedStyle.textColor.IsBlack() {
			format.fontColor = e.usedStyle.textColor.Code
			hasFormat = true
		}
		if !e.usedStyle.backgroundColor.Transparent {
			format.backgroundColor = e.usedStyle.backgroundColor.Code
			hasFormat = true
		}
		if e.usedStyle.hasBorder() {
			if !e.usedStyle.borderColor.IsBlack() {
				format.borderColor = e.usedStyle.borderColor.Code
			}
			format.borderLeft = e.usedStyle.borderLeft
			format.borderTop = e.usedStyle.borderTop
			format.borderRight = e.usedStyle.borderRight
			format.borderBottom = e.usedStyle.borderBottom
			hasFormat = true
		}
		if e.spreadsheetType != SpreadsheetTypeDefault && e.spreadsheetPattern != "" {
			numFormat := e.spreadsheetPattern
			if strings.Contains(numFormat, "$") {
				numFormat = strings.ReplaceAll(numFormat, "$", "[$"+ctx.patternCurrencySymbol+"]")
			}
			format.numFormat = numFormat
			hasFormat = true
		} else if e.spreadsheetType == SpreadsheetTypeDate {
			// use iso format as default when no pattern is specified,
			// otherwise the date is shown as a number
			format.numFormat = "yyyy-mm-dd"
			hasFormat = true
		}

		if hasFormat {
			var err error
			styleID, err = renderer.addFormat(format)
			if err != nil {
				return 0, 0, err
			}
			e.spreadsheetFormats[e.usedStyle.id] = styleID
		}
	}
	if e.spreadsheetColumn != 0 {
		col = e.spreadsheetColumn - 1
	}
	if err := renderer.write(row, col, e.spreadsheetColspan, content, styleID, e.width, e.preparedLink); err != nil {
		return 0, 0, err
	}
	if e.spreadsheetAddEmptyRow {
		row++
	}
	colspan := e.spreadsheetColspan
	if colspan == 0 {
		colspan = 1
	}
	return row + 1, col + colspan, nil
}

func (e *TextElement) splitTextLines(content string, availableWidth float64, doc canvas) error {
	if err := doc.SetFont(e.usedStyle.font, e.usedStyle.fontStyle, e.usedStyle.fontSize); err != nil {
		return newError(msgKeyFontNotAvailable, e.id, e.usedStyle.keyPrefix+"font")
	}
	doc.SetTextColor(e.usedStyle.textColor.R, e.usedStyle.textColor.G, e.usedStyle.textColor.B)
	e.textLines = nil
	if content != "" {
		for _, line := range doc.SplitText(content, availableWidth) {
			e.textLines = append(e.textLines, &textLine{
				text:           line,
				width:          doc.GetStringWidth(line),
				availableWidth: availableWidth,
				style:          e.usedStyle,
				link:           e.preparedLink,
				objectID:       e.id,
			})
		}
	}
	e.textHeight = 0
	e.linesCount = len(e.textLines)
	if e.linesCount > 0 {
		e.textLines[e.linesCount-1].lastLine = true
		for _, line := range e.textLines {
			line.setup()
			e.textHeight += line.height
		}
	}
	return nil
}

// textBlockElement is the render slice of a text element containing the
// lines which fit on the current page.
type textBlockElement struct {
	x                 float64
	renderY           float64
	renderBottom      float64
	width             float64
	height            float64
	textOffsetY       float64
	lines             []*textLine
	renderElementType RenderElementType
	style             *TextStyle
}

func (r *textBlockElement) renderPDF(containerOffsetX, containerOffsetY float64, doc canvas) error {
	y := containerOffsetY + r.renderY
	if !r.style.backgroundColor.Transparent {
		doc.SetFillColor(r.style.backgroundColor.R, r.style.backgroundColor.G, r.style.backgroundColor.B)
		doc.Rect(r.x+containerOffsetX, y, r.width, r.height, "F")
	}
	if r.style.hasBorder() {
		drawBorder(r.x+containerOffsetX, y, r.width, r.height, r.renderElementType, &r.style.borderStyle, doc)
	}

	if r.renderElementType == RenderElementComplete || r.renderElementType == RenderElementFirst {
		y += r.style.paddingTop
	}
	y += r.textOffsetY

	for _, line := range r.lines {
		if err := line.renderPDF(r.x+containerOffsetX+r.style.paddingLeft, y, doc); err != nil {
			return err
		}
		y += line.height
	}
	return nil
}

func (r *textBlockElement) getRenderBottom() float64 { return r.renderBottom }

func (r *textBlockElement) cleanup() {}

// textLine is a single line of a text element with the measured width.
type textLine struct {
	text            string
	width           float64
	availableWidth  float64
	style           *TextStyle
	link            string
	objectID        int
	lastLine        bool
	height          float64
	baselineOffsetY float64
}

func (l *textLine) setup() {
	l.baselineOffsetY = l.style.fontSize * 0.8
	if l.lastLine {
		l.height = l.style.fontSize
	} else {
		l.height = l.style.fontSize * l.style.lineSpacing
	}
}

func (l *textLine) renderPDF(x, y float64, doc canvas) error {
	fontStyle := l.style.fontStyle
	if l.style.underline {
		fontStyle += "U"
	}
	if err := doc.SetFont(l.style.font, fontStyle, l.style.fontSize); err != nil {
		return err
	}
	doc.SetTextColor(l.style.textColor.R, l.style.textColor.G, l.style.textColor.B)

	offsetX := 0.0
	// last line of justified text is aligned left
	if l.style.horizontalAlignment != HAlignJustify || l.lastLine {
		switch l.style.horizontalAlignment {
		case HAlignCenter:
			offsetX = (l.availableWidth - l.width) / 2
		case HAlignRight:
			offsetX = l.availableWidth - l.width
		}
		renderX := x + offsetX
		renderY := y + l.baselineOffsetY
		doc.Text(renderX, renderY, l.text)
		if l.style.strikethrough {
			strikethroughWidth := l.style.fontSize * 0.05
			renderLineY := renderY - l.style.fontSize*0.3
			doc.SetLineWidth(strikethroughWidth)
			doc.SetDrawColor(l.style.textColor.R, l.style.textColor.G, l.style.textColor.B)
			doc.Line(renderX, renderLineY, renderX+l.width, renderLineY)
		}
	} else {
		// justify text, split text into words and use equal space between words
		words := strings.Fields(l.text)
		wordWidths := make([]float64, len(words))
		totalWordWidth := 0.0
		for i, word := range words {
			wordWidths[i] = doc.GetStringWidth(word)
			totalWordWidth += wordWidths[i]
		}
		wordSpacing := 0.0
		if len(words) > 1 {
			wordSpacing = (l.availableWidth - totalWordWidth) / float64(len(words)-1)
		}
		renderY := y + l.baselineOffsetY
		wordX := x
		for i, word := range words {
			doc.Text(wordX, renderY, word)
			wordX += wordWidths[i] + wordSpacing
		}

		lineWidth := l.style.fontSize * 0.05
		if l.style.strikethrough {
			doc.SetLineWidth(lineWidth)
			doc.SetDrawColor(l.style.textColor.R, l.style.textColor.G, l.style.textColor.B)
			lineY := renderY - l.style.fontSize*0.3
			doc.Line(x, lineY, x+l.availableWidth, lineY)
		}
		if l.style.underline {
			// underline needs an offset below the baseline
			doc.SetLineWidth(lineWidth)
			doc.SetDrawColor(l.style.textColor.R, l.style.textColor.G, l.style.textColor.B)
			lineY := renderY + l.style.fontSize*0.1
			doc.Line(x, lineY, x+l.availableWidth, lineY)
		}
	}

	if l.link != "" {
		doc.LinkURL(x+offsetX, y, l.width, l.style.fontSize, l.link)
	}
	return nil
}

// TableTextElement is a table cell. In contrast to a standalone text element
// a cell is never split over multiple pages on its own, the table bands
// control the pagination.
type TableTextElement struct {
	TextElement
	colspan              int
	initialWidth         float64
	growWeight           int
	columnVisible        bool
	insideColspan        bool
	simpleArrayParam     *Parameter
	simpleArrayItemIndex int
	data                 map[string]any
}

func newTableTextElement(report *Report, data map[string]any) (*TableTextElement, error) {
	text, err := newTextElement(report, data)
	if err != nil {
		return nil, err
	}
	e := &TableTextElement{
		TextElement:          *text,
		colspan:              1,
		columnVisible:        true,
		simpleArrayItemIndex: -1,
		data:                 data,
	}
	if colspan := getIntValue(data, "colspan"); colspan > 0 {
		e.colspan = colspan
	}
	// overwrite spreadsheet colspan with table cell colspan, it cannot be
	// set separately in a table cell
	e.spreadsheetColspan = e.colspan
	e.initialWidth = e.width
	e.growWeight = getIntValue(data, "growWeight")
	e.removeEmptyElement = false
	e.alwaysPrintOnSamePage = false
	e.self = e
	return e, nil
}

// expandSimpleArray creates additional cells when the cell content is a
// simple array parameter, one cell per array entry.
func (e *TableTextElement) expandSimpleArray(printedCells *[]*TableTextElement, ctx *Context) error {
	if e.content == "" || e.eval || !isParameterName(e.content) {
		return nil
	}
	ref := ctx.getParameter(stripParameterName(e.content))
	if ref == nil || ref.parameter.Type != ParameterTypeSimpleArray {
		return nil
	}
	values, exists := ctx.getParameterData(ref)
	cellValues, ok := values.([]any)
	if !exists || !ok || len(cellValues) == 0 {
		return nil
	}
	e.simpleArrayParam = ref.parameter
	e.simpleArrayItemIndex = 0
	for i := 1; i < len(cellValues); i++ {
		expandedCell, err := newTableTextElement(e.report, e.data)
		if err != nil {
			return err
		}
		expandedCell.simpleArrayParam = ref.parameter
		expandedCell.simpleArrayItemIndex = i
		*printedCells = append(*printedCells, expandedCell)
	}
	return nil
}

func (e *TableTextElement) isPrinted(ctx *Context) (bool, error) {
	return e.columnVisible && !e.insideColspan, nil
}
