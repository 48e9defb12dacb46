package reportbro

import (
	"strconv"
	"strings"
)

// Color is an RGB color parsed from a "#rrggbb" template value. The zero
// value (empty template value) is transparent.
type Color struct {
	R, G, B     int
	Transparent bool
	Code        string
}

func newColor(value string) (Color, error) {
	if value == "" {
		return Color{Transparent: true}, nil
	}
	if len(value) != 7 || value[0] != '#' {
		return Color{}, newInternalError("invalid color value %s", value)
	}
	n, err := strconv.ParseUint(value[1:], 16, 32)
	if err != nil {
		return Color{}, newInternalError("invalid color value %s", value)
	}
	return Color{
		R:    int(n >> 16 & 0xff),
		G:    int(n >> 8 & 0xff),
		B:    int(n & 0xff),
		Code: value,
	}, nil
}

// parseColor reads a color field from template data; invalid values fall
// back to transparent and are reported through the report error list by the
// caller where that matters.
func parseColor(data map[string]any, key string) Color {
	c, err := newColor(getStrValue(data, key))
	if err != nil {
		return Color{Transparent: true}
	}
	return c
}

func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && !c.Transparent
}

// rowRange is the row span used when evaluating an aggregate parameter for a
// table group. End is the index after the last row, -1 meaning "to the end".
type rowRange struct {
	start, end int
}

// Parameter is a schema node of the report: a named, typed slot in the data
// payload. Array and map parameters carry child parameters. Sum/average
// parameters hold an expression which is aggregated over the rows of their
// data source, optionally restricted to a row range while a table group
// band renders.
type Parameter struct {
	ID                 int
	Name               string
	Type               ParameterType
	ArrayItemType      ParameterType
	Eval               bool
	Nullable           bool
	Expression         string
	Pattern            string
	PatternHasCurrency bool
	IsInternal         bool
	Children           []*Parameter
	Fields             map[string]*Parameter

	rangeStack []rowRange
}

func newParameter(report *Report, data map[string]any) *Parameter {
	p := &Parameter{
		ID:         getIntValue(data, "id"),
		Name:       getStrValue(data, "name"),
		Type:       parseParameterType(getStrValue(data, "type")),
		Eval:       getBoolValue(data, "eval"),
		Nullable:   getBoolValue(data, "nullable"),
		Expression: getStrValue(data, "expression"),
		Pattern:    getStrValue(data, "pattern"),
		Fields:     make(map[string]*Parameter),
	}
	if p.Name == "" {
		p.Name = "<unnamed>"
	}
	if p.Type == ParameterTypeSimpleArray {
		p.ArrayItemType = parseParameterType(getStrValue(data, "arrayItemType"))
	}
	p.PatternHasCurrency = strings.Contains(p.Pattern, "$")
	p.IsInternal = p.Name == "page_count" || p.Name == "page_number" || p.Name == "row_number"
	if p.Type == ParameterTypeArray || p.Type == ParameterTypeMap {
		if children, ok := data["children"].([]any); ok {
			for _, item := range children {
				childData, ok := item.(map[string]any)
				if !ok {
					continue
				}
				child := newParameter(report, childData)
				if _, exists := p.Fields[child.Name]; exists {
					report.addError(newError(msgKeyDuplicateParameterField, child.ID, "name"))
				} else {
					p.Children = append(p.Children, child)
					p.Fields[child.Name] = child
				}
			}
		}
	}
	return p
}

// needsEvaluation reports whether the parameter value is computed from an
// expression instead of read from the data payload.
func (p *Parameter) needsEvaluation() bool {
	if p.Eval || p.isRangeFunction() {
		return true
	}
	for _, child := range p.Children {
		if child.needsEvaluation() {
			return true
		}
	}
	return false
}

func (p *Parameter) isEvaluated() bool {
	return p.Eval || p.isRangeFunction()
}

// isRangeFunction reports whether the parameter aggregates over a row range.
func (p *Parameter) isRangeFunction() bool {
	return p.Type == ParameterTypeSum || p.Type == ParameterTypeAverage
}

// pushRange restricts aggregate evaluation to the rows [start, end). The
// range is pushed before a table group band renders and popped right after,
// so header and footer group bands can aggregate over different spans.
func (p *Parameter) pushRange(start, end int) {
	p.rangeStack = append(p.rangeStack, rowRange{start: start, end: end})
}

func (p *Parameter) popRange() {
	if len(p.rangeStack) > 0 {
		p.rangeStack = p.rangeStack[:len(p.rangeStack)-1]
	}
}

func (p *Parameter) currentRange() (rowRange, bool) {
	if len(p.rangeStack) == 0 {
		return rowRange{}, false
	}
	return p.rangeStack[len(p.rangeStack)-1], true
}

// borderStyle holds the border settings shared by text, frame and style
// definitions.
type borderStyle struct {
	borderColor  Color
	borderWidth  float64
	borderAll    bool
	borderLeft   bool
	borderTop    bool
	borderRight  bool
	borderBottom bool
}

func newBorderStyle(data map[string]any, keyPrefix string) borderStyle {
	b := borderStyle{
		borderColor: parseColor(data, keyPrefix+"borderColor"),
		borderWidth: getFloatValue(data, keyPrefix+"borderWidth"),
		borderAll:   getBoolValue(data, keyPrefix+"borderAll"),
	}
	b.borderLeft = b.borderAll || getBoolValue(data, keyPrefix+"borderLeft")
	b.borderTop = b.borderAll || getBoolValue(data, keyPrefix+"borderTop")
	b.borderRight = b.borderAll || getBoolValue(data, keyPrefix+"borderRight")
	b.borderBottom = b.borderAll || getBoolValue(data, keyPrefix+"borderBottom")
	return b
}

func (b *borderStyle) hasBorder() bool {
	return b.borderLeft || b.borderTop || b.borderRight || b.borderBottom
}

// TextStyle collects all settings which influence text rendering.
type TextStyle struct {
	borderStyle
	id                  string
	keyPrefix           string
	bold                bool
	italic              bool
	underline           bool
	strikethrough       bool
	horizontalAlignment HorizontalAlignment
	verticalAlignment   VerticalAlignment
	textColor           Color
	backgroundColor     Color
	font                string
	fontSize            float64
	lineSpacing         float64
	paddingLeft         float64
	paddingTop          float64
	paddingRight        float64
	paddingBottom       float64
	fontStyle           string
}

func newTextStyle(data map[string]any, keyPrefix, idSuffix string) *TextStyle {
	s := &TextStyle{
		borderStyle:         newBorderStyle(data, keyPrefix),
		id:                  strconv.Itoa(getIntValue(data, "id")) + idSuffix,
		keyPrefix:           keyPrefix,
		bold:                getBoolValue(data, keyPrefix+"bold"),
		italic:              getBoolValue(data, keyPrefix+"italic"),
		underline:           getBoolValue(data, keyPrefix+"underline"),
		strikethrough:       getBoolValue(data, keyPrefix+"strikethrough"),
		horizontalAlignment: parseHorizontalAlignment(getStrValue(data, keyPrefix+"horizontalAlignment")),
		verticalAlignment:   parseVerticalAlignment(getStrValue(data, keyPrefix+"verticalAlignment")),
		textColor:           parseColor(data, keyPrefix+"textColor"),
		backgroundColor:     parseColor(data, keyPrefix+"backgroundColor"),
		font:                getStrValue(data, keyPrefix+"font"),
		fontSize:            getFloatValue(data, keyPrefix+"fontSize"),
		lineSpacing:         getFloatValue(data, keyPrefix+"lineSpacing"),
		paddingLeft:         getFloatValue(data, keyPrefix+"paddingLeft"),
		paddingTop:          getFloatValue(data, keyPrefix+"paddingTop"),
		paddingRight:        getFloatValue(data, keyPrefix+"paddingRight"),
		paddingBottom:       getFloatValue(data, keyPrefix+"paddingBottom"),
	}
	if s.textColor.Transparent {
		s.textColor = Color{Code: "#000000"}
	}
	if s.font == "" {
		s.font = "helvetica"
	}
	if s.fontSize == 0 {
		s.fontSize = 12
	}
	if s.lineSpacing == 0 {
		s.lineSpacing = 1
	}
	if s.bold {
		s.fontStyle += "B"
	}
	if s.italic {
		s.fontStyle += "I"
	}
	// borders eat into the padding so text does not overlap the border line
	if s.borderLeft {
		s.paddingLeft += s.borderWidth
	}
	if s.borderTop {
		s.paddingTop += s.borderWidth
	}
	if s.borderRight {
		s.paddingRight += s.borderWidth
	}
	if s.borderBottom {
		s.paddingBottom += s.borderWidth
	}
	return s
}

// withBackground returns a shallow copy of the style using the given id and
// background color. Used for table rows with band background colors.
func (s *TextStyle) withBackground(id string, backgroundColor Color) *TextStyle {
	style := *s
	style.id = id
	style.backgroundColor = backgroundColor
	return &style
}

// LineStyle holds the settings of a line element.
type LineStyle struct {
	color Color
}

func newLineStyle(data map[string]any, idSuffix string) *LineStyle {
	c := parseColor(data, "color")
	if c.Transparent {
		c = Color{Code: "#000000"}
	}
	return &LineStyle{color: c}
}

// ImageStyle holds the settings of an image element.
type ImageStyle struct {
	backgroundColor     Color
	horizontalAlignment HorizontalAlignment
	verticalAlignment   VerticalAlignment
}

func newImageStyle(data map[string]any, idSuffix string) *ImageStyle {
	return &ImageStyle{
		backgroundColor:     parseColor(data, "backgroundColor"),
		horizontalAlignment: parseHorizontalAlignment(getStrValue(data, "horizontalAlignment")),
		verticalAlignment:   parseVerticalAlignment(getStrValue(data, "verticalAlignment")),
	}
}

// TableStyle holds the table-wide border settings.
type TableStyle struct {
	border      Border
	borderColor Color
	borderWidth float64
}

func newTableStyle(data map[string]any, idSuffix string) *TableStyle {
	s := &TableStyle{
		border:      parseBorder(getStrValue(data, "border")),
		borderColor: parseColor(data, "borderColor"),
		borderWidth: getFloatValue(data, "borderWidth"),
	}
	if s.borderColor.Transparent {
		s.borderColor = Color{Code: "#000000"}
	}
	if s.borderWidth == 0 {
		s.borderWidth = 1
	}
	return s
}

// TableBandStyle holds background settings of a table band.
type TableBandStyle struct {
	backgroundColor          Color
	alternateBackgroundColor Color
}

func newTableBandStyle(data map[string]any, idSuffix string) *TableBandStyle {
	return &TableBandStyle{
		backgroundColor:          parseColor(data, "backgroundColor"),
		alternateBackgroundColor: parseColor(data, "alternateBackgroundColor"),
	}
}

// FrameStyle holds border and background settings of a frame element.
type FrameStyle struct {
	borderStyle
	backgroundColor Color
}

func newFrameStyle(data map[string]any, idSuffix string) *FrameStyle {
	return &FrameStyle{
		borderStyle:     newBorderStyle(data, ""),
		backgroundColor: parseColor(data, "backgroundColor"),
	}
}

// SectionBandStyle holds background settings of a section band.
type SectionBandStyle struct {
	backgroundColor          Color
	alternateBackgroundColor Color
}

func newSectionBandStyle(data map[string]any, idSuffix string) *SectionBandStyle {
	return &SectionBandStyle{
		backgroundColor:          parseColor(data, "backgroundColor"),
		alternateBackgroundColor: parseColor(data, "alternateBackgroundColor"),
	}
}

// conditionalStyleRule is an additional condition/style pair of a text
// element with conditional styling. The first rule whose condition holds
// selects the style.
type conditionalStyleRule struct {
	condition string
	style     *TextStyle
}

func newConditionalStyleRule(report *Report, data map[string]any, objectID, ruleNr int) *conditionalStyleRule {
	rule := &conditionalStyleRule{
		condition: getStrValue(data, "condition"),
	}
	if styleID := getIntValue(data, "styleId"); styleID != 0 {
		if style, ok := report.styles[styleID].(*TextStyle); ok {
			rule.style = style
		}
	}
	if rule.style == nil {
		rule.style = newTextStyle(data, "", "_text_cs_rule"+strconv.Itoa(ruleNr))
	}
	return rule
}

func (r *conditionalStyleRule) isTrue(ctx *Context, objectID int) (bool, error) {
	if r.condition == "" {
		return false, nil
	}
	result, err := ctx.evaluateExpression(r.condition, objectID, "cs_additionalRules")
	if err != nil {
		return false, err
	}
	return isTruthy(result), nil
}
