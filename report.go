package reportbro

import (
	"encoding/json"
	"io"
	"math"
	"regexp"
	"strings"
	"time"
)

var validIdentifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DocumentProperties holds page size, margins and header/footer settings of
// the report document. All sizes are converted to points (72 dpi).
type DocumentProperties struct {
	id          int
	report      *Report
	pageFormat  PageFormat
	orientation Orientation

	pageWidth             float64
	pageHeight            float64
	contentHeight         float64
	marginLeft            float64
	marginTop             float64
	marginRight           float64
	marginBottom          float64
	patternLocale         string
	patternCurrencySymbol string

	header        bool
	headerDisplay BandDisplay
	headerSize    float64
	footer        bool
	footerDisplay BandDisplay
	footerSize    float64

	creationDate time.Time
}

func newDocumentProperties(report *Report, data map[string]any) *DocumentProperties {
	props := &DocumentProperties{
		report:      report,
		pageFormat:  parsePageFormat(getStrValue(data, "pageFormat")),
		orientation: parseOrientation(getStrValue(data, "orientation")),
	}

	var unit Unit
	switch props.pageFormat {
	case PageFormatA4:
		if props.orientation == OrientationPortrait {
			props.pageWidth, props.pageHeight = 210, 297
		} else {
			props.pageWidth, props.pageHeight = 297, 210
		}
		unit = UnitMillimeter
	case PageFormatA5:
		if props.orientation == OrientationPortrait {
			props.pageWidth, props.pageHeight = 148, 210
		} else {
			props.pageWidth, props.pageHeight = 210, 148
		}
		unit = UnitMillimeter
	case PageFormatLetter:
		if props.orientation == OrientationPortrait {
			props.pageWidth, props.pageHeight = 8.5, 11
		} else {
			props.pageWidth, props.pageHeight = 11, 8.5
		}
		unit = UnitInch
	default:
		props.pageWidth = getFloatValue(data, "pageWidth")
		props.pageHeight = getFloatValue(data, "pageHeight")
		unit = parseUnit(getStrValue(data, "unit"))
		if unit == UnitMillimeter {
			if props.pageWidth < 30 || props.pageWidth >= 100000 {
				report.addError(newError(msgKeyInvalidPageSize, props.id, "pageWidth"))
			} else if props.pageHeight < 10 || props.pageHeight >= 100000 {
				report.addError(newError(msgKeyInvalidPageSize, props.id, "pageHeight"))
			}
		} else {
			if props.pageWidth < 1 || props.pageWidth >= 1000 {
				report.addError(newError(msgKeyInvalidPageSize, props.id, "pageWidth"))
			} else if props.pageHeight < 1 || props.pageHeight >= 1000 {
				report.addError(newError(msgKeyInvalidPageSize, props.id, "pageHeight"))
			}
		}
	}
	const dpi = 72
	if unit == UnitMillimeter {
		props.pageWidth = math.Round((dpi * props.pageWidth) / 25.4)
		props.pageHeight = math.Round((dpi * props.pageHeight) / 25.4)
	} else {
		props.pageWidth = math.Round(dpi * props.pageWidth)
		props.pageHeight = math.Round(dpi * props.pageHeight)
	}

	props.contentHeight = getFloatValue(data, "contentHeight")
	props.marginLeft = getFloatValue(data, "marginLeft")
	props.marginTop = getFloatValue(data, "marginTop")
	props.marginRight = getFloatValue(data, "marginRight")
	props.marginBottom = getFloatValue(data, "marginBottom")
	props.patternLocale = getStrValue(data, "patternLocale")
	props.patternCurrencySymbol = getStrValue(data, "patternCurrencySymbol")

	props.header = getBoolValue(data, "header")
	if props.header {
		props.headerDisplay = parseBandDisplay(getStrValue(data, "headerDisplay"))
		props.headerSize = getFloatValue(data, "headerSize")
	} else {
		props.headerDisplay = BandDisplayNever
	}
	props.footer = getBoolValue(data, "footer")
	if props.footer {
		props.footerDisplay = parseBandDisplay(getStrValue(data, "footerDisplay"))
		props.footerSize = getFloatValue(data, "footerSize")
	} else {
		props.footerDisplay = BandDisplayNever
	}
	if props.contentHeight == 0 {
		props.contentHeight = props.pageHeight - props.headerSize - props.footerSize -
			props.marginTop - props.marginBottom
	}

	if creationDate := getStrValue(data, "creationDate"); creationDate != "" {
		if parsed, err := parseDatetimeString(creationDate); err == nil {
			props.creationDate = parsed
		}
	}
	return props
}

// Report generates pdf and xlsx documents from a report template and a data
// payload. The template is the decoded JSON report definition created with
// the designer, the data must match the parameters declared in the template.
type Report struct {
	errors []*Error

	documentProperties *DocumentProperties
	containers         map[string]*Container
	header             *ReportBand
	content            *ReportBand
	footer             *ReportBand
	pageCount          int

	parameters map[string]*Parameter
	styles     map[int]any
	data       map[string]any
	isTestData bool

	additionalFonts    []AdditionalFont
	pageLimit          int
	requestHeaders     map[string]string
	allowLocalImage    bool
	allowExternalImage bool

	images map[string]*imageData // cached image data

	context      *Context
	creationDate time.Time
}

// NewReportFromJSON creates a report from the JSON report definition as
// produced by the designer.
func NewReportFromJSON(reportDefinition []byte, data map[string]any, options ...ReportOption) (*Report, error) {
	var definition map[string]any
	if err := json.Unmarshal(reportDefinition, &definition); err != nil {
		return nil, err
	}
	return NewReport(definition, data, options...)
}

// NewReport creates a report from the decoded report definition and the data
// payload. Template validation problems are collected and returned by
// Errors, an error is only returned for a malformed definition which cannot
// be processed at all.
func NewReport(reportDefinition map[string]any, data map[string]any, options ...ReportOption) (*Report, error) {
	report := &Report{
		containers:         make(map[string]*Container),
		parameters:         make(map[string]*Parameter),
		styles:             make(map[int]any),
		data:               make(map[string]any),
		images:             make(map[string]*imageData),
		pageLimit:          10000,
		requestHeaders:     map[string]string{"User-Agent": "Mozilla/5.0"},
		allowLocalImage:    true,
		allowExternalImage: false,
	}
	for _, option := range options {
		option(report)
	}

	propsData, _ := reportDefinition["documentProperties"].(map[string]any)
	report.documentProperties = newDocumentProperties(report, propsData)

	report.header = newReportBand(BandHeader, "0_header", report.containers, report)
	report.content = newReportBand(BandContent, "0_content", report.containers, report)
	report.footer = newReportBand(BandFooter, "0_footer", report.containers, report)

	docElements, _ := reportDefinition["docElements"].([]any)
	if version := getIntValue(reportDefinition, "version"); version != 0 && version < 2 {
		// convert old report definitions where a table had a single content row
		for _, item := range docElements {
			elementData, ok := item.(map[string]any)
			if ok && docElementType(getStrValue(elementData, "elementType")) == elementTypeTable {
				elementData["contentDataRows"] = []any{elementData["contentData"]}
			}
		}
	}

	// the parameter list is needed to compute parameters with expressions in
	// their given order
	var parameterList []*Parameter
	if items, ok := reportDefinition["parameters"].([]any); ok {
		for _, item := range items {
			parameterData, ok := item.(map[string]any)
			if !ok {
				continue
			}
			parameter := newParameter(report, parameterData)
			if _, exists := report.parameters[parameter.Name]; exists {
				report.addError(newError(msgKeyDuplicateParameter, parameter.ID, "name"))
			}
			report.parameters[parameter.Name] = parameter
			parameterList = append(parameterList, parameter)
		}
	}

	if items, ok := reportDefinition["styles"].([]any); ok {
		for _, item := range items {
			styleData, ok := item.(map[string]any)
			if !ok {
				continue
			}
			styleID := getIntValue(styleData, "id")
			var style any
			switch getStrValue(styleData, "type") {
			case "", "text":
				style = newTextStyle(styleData, "", "")
			case "line":
				style = newLineStyle(styleData, "")
			case "image":
				style = newImageStyle(styleData, "")
			case "table":
				style = newTableStyle(styleData, "")
			case "tableBand":
				style = newTableBandStyle(styleData, "")
			case "frame":
				style = newFrameStyle(styleData, "")
			case "sectionBand":
				style = newSectionBandStyle(styleData, "")
			}
			if style != nil {
				report.styles[styleID] = style
			}
		}
	}

	// do not init elements in case of existing errors as this could cause
	// subsequent errors, e.g. a wrong parameter value type in case of a
	// duplicate parameter
	if len(report.errors) == 0 {
		for _, item := range docElements {
			elementData, ok := item.(map[string]any)
			if !ok {
				continue
			}
			elementType := docElementType(getStrValue(elementData, "elementType"))
			container := report.containers[toString(elementData["containerId"])]

			var elem docElement
			var err error
			switch elementType {
			case elementTypeText:
				elem, err = newTextElement(report, elementData)
			case elementTypeLine:
				elem, err = newLineElement(report, elementData)
			case elementTypeImage:
				elem, err = newImageElement(report, elementData)
			case elementTypeBarCode:
				elem, err = newBarCodeElement(report, elementData)
			case elementTypeTable:
				elem, err = newTableElement(report, elementData)
			case elementTypePageBreak:
				elem = newPageBreakElement(report, elementData)
			case elementTypeFrame:
				elem, err = newFrameElement(report, elementData, report.containers)
			case elementTypeSection:
				elem, err = newSectionElement(report, elementData, report.containers)
			}
			if err != nil {
				return nil, err
			}

			if elem != nil && container != nil {
				if container.isVisible() {
					eb := elem.base()
					if eb.x < 0 {
						report.addError(newError(msgKeyInvalidPosition, eb.id, "x"))
					} else if eb.x+eb.width > container.width {
						report.addError(newError(msgKeyInvalidSize, eb.id, "width"))
					}
					if eb.y < 0 {
						report.addError(newError(msgKeyInvalidPosition, eb.id, "y"))
					} else if eb.y+eb.height > container.height {
						report.addError(newError(msgKeyInvalidSize, eb.id, "height"))
					}
				}
				container.add(elem)
			}
		}

		report.context = newContext(report, report.parameters, report.data)
		report.processData(report.data, data, parameterList, report.isTestData, nil)
	}

	if len(report.errors) == 0 {
		if err := report.evaluateParameters(parameterList, report.data); err != nil {
			report.addErr(err)
		}
	}
	return report, nil
}

func (r *Report) addError(err *Error) {
	r.errors = append(r.errors, err)
}

// addErr records an error raised during parameter evaluation or rendering.
func (r *Report) addErr(err error) {
	if reportErr, ok := err.(*Error); ok {
		r.errors = append(r.errors, reportErr)
	} else {
		r.errors = append(r.errors, &Error{MsgKey: err.Error()})
	}
}

// Errors returns the template validation errors collected so far.
func (r *Report) Errors() []*Error { return r.errors }

// PageCount returns the number of pages of the last generated pdf document.
func (r *Report) PageCount() int { return r.pageCount }

// SetCreationDate sets the creation date written into the generated
// document metadata instead of the current time.
func (r *Report) SetCreationDate(creationDate time.Time) {
	r.creationDate = creationDate
}

// loadImage fetches the image into the image cache unless already present.
func (r *Report) loadImage(imageKey string, ctx *Context, imageID int, source, imageFile string) error {
	if _, loaded := r.images[imageKey]; loaded {
		return nil
	}
	img, err := newImageData(ctx, imageID, source, imageFile, r)
	if err != nil {
		return err
	}
	r.images[imageKey] = img
	return nil
}

func (r *Report) getImage(imageKey string) *imageData {
	return r.images[imageKey]
}

// GeneratePDF renders the report as pdf document into w.
func (r *Report) GeneratePDF(w io.Writer) error {
	if len(r.errors) > 0 {
		return r.errors[0]
	}
	doc := newPDFCanvas(r.documentProperties, r.additionalFonts)
	if err := r.renderPDF(doc); err != nil {
		return err
	}
	r.pageCount = r.context.getPageCount()
	if !r.creationDate.IsZero() {
		doc.SetCreationDate(r.creationDate)
	} else if !r.documentProperties.creationDate.IsZero() {
		doc.SetCreationDate(r.documentProperties.creationDate)
	}
	return doc.Output(w)
}

func (r *Report) renderPDF(doc canvas) error {
	props := r.documentProperties
	defer func() {
		r.header.cleanup()
		r.footer.cleanup()
	}()

	if err := r.content.prepare(r.context, doc, false); err != nil {
		return err
	}
	pageCount := 1
	for {
		height := props.pageHeight - props.marginTop - props.marginBottom
		if props.headerDisplay == BandDisplayAlways ||
			(props.headerDisplay == BandDisplayNotOnFirstPage && pageCount != 1) {
			height -= props.headerSize
		}
		if props.footerDisplay == BandDisplayAlways ||
			(props.footerDisplay == BandDisplayNotOnFirstPage && pageCount != 1) {
			height -= props.footerSize
		}
		complete, err := r.content.createRenderElements(0, height, r.context, doc)
		if err != nil {
			return err
		}
		if complete {
			break
		}
		pageCount++
		if r.pageLimit > 0 && pageCount > r.pageLimit {
			return newInternalError("too many pages (probably an endless loop)")
		}
	}
	r.context.setPageCount(pageCount)
	log.Debug().Int("pages", pageCount).Msg("content layout finished")

	footerOffsetY := props.pageHeight - props.footerSize - props.marginBottom
	// render at least one page to show header/footer even if the content is
	// empty
	for !r.content.isFinished() || r.context.getPageNumber() == 0 {
		doc.AddPage()
		r.context.incPageNumber()

		contentOffsetY := props.marginTop
		pageNumber := r.context.getPageNumber()
		if props.headerDisplay == BandDisplayAlways ||
			(props.headerDisplay == BandDisplayNotOnFirstPage && pageNumber != 1) {
			contentOffsetY += props.headerSize
			if err := r.header.prepare(r.context, doc, false); err != nil {
				return err
			}
			if _, err := r.header.createRenderElements(0, props.headerSize, r.context, doc); err != nil {
				return err
			}
			if err := r.header.renderPDF(props.marginLeft, props.marginTop, doc, false); err != nil {
				return err
			}
			r.header.reset()
		}
		if props.footerDisplay == BandDisplayAlways ||
			(props.footerDisplay == BandDisplayNotOnFirstPage && pageNumber != 1) {
			if err := r.footer.prepare(r.context, doc, false); err != nil {
				return err
			}
			if _, err := r.footer.createRenderElements(0, props.footerSize, r.context, doc); err != nil {
				return err
			}
			if err := r.footer.renderPDF(props.marginLeft, footerOffsetY, doc, false); err != nil {
				return err
			}
			r.footer.reset()
		}

		if err := r.content.renderPDF(props.marginLeft, contentOffsetY, doc, true); err != nil {
			return err
		}
	}
	return nil
}

// GenerateXLSX renders the report as xlsx workbook into w. The document
// bands are written below each other, each element gets its own cell.
func (r *Report) GenerateXLSX(w io.Writer) error {
	if len(r.errors) > 0 {
		return r.errors[0]
	}
	creationDate := r.creationDate
	if creationDate.IsZero() {
		creationDate = r.documentProperties.creationDate
	}
	renderer := newSpreadsheetRenderer(creationDate)

	row := 0
	renderBand := func(band *ReportBand) error {
		if err := band.prepare(r.context, nil, false); err != nil {
			return err
		}
		nextRow, _, err := band.renderSpreadsheet(row, 0, r.context, renderer)
		if err != nil {
			return err
		}
		row = nextRow
		return nil
	}

	if r.documentProperties.headerDisplay != BandDisplayNever {
		if err := renderBand(r.header); err != nil {
			return err
		}
	}
	if err := renderBand(r.content); err != nil {
		return err
	}
	if r.documentProperties.footerDisplay != BandDisplayNever {
		if err := renderBand(r.footer); err != nil {
			return err
		}
	}
	return renderer.finish(w)
}

// Verify goes through all elements in header, content and footer and
// returns an error in case an element is invalid.
func (r *Report) Verify() error {
	if len(r.errors) > 0 {
		return r.errors[0]
	}
	if r.documentProperties.headerDisplay != BandDisplayNever {
		if err := r.header.prepare(r.context, nil, true); err != nil {
			return err
		}
	}
	if err := r.content.prepare(r.context, nil, true); err != nil {
		return err
	}
	if r.documentProperties.footerDisplay != BandDisplayNever {
		if err := r.footer.prepare(r.context, nil, true); err != nil {
			return err
		}
	}
	return nil
}

// parseParameterValue converts and validates a single value of the data
// payload according to the parameter type. Invalid values are collected as
// errors, a missing value of a non-nullable parameter yields the type's
// zero value.
func (r *Report) parseParameterValue(parameter *Parameter, parentID int, isTestData bool, parameterType ParameterType, value any) any {
	errorField := "type"
	if isTestData {
		errorField = "testData"
	}
	addTypeError := func(msgKey string) {
		if parentID != 0 && isTestData {
			r.addError(newError(msgKeyInvalidTestData, parentID, "testData"))
			r.addError(newError(msgKey, parameter.ID, "type"))
		} else {
			err := newError(msgKey, parameter.ID, errorField)
			err.Context = parameter.Name
			r.addError(err)
		}
	}

	switch parameterType {
	case ParameterTypeString:
		if value == nil {
			if !parameter.Nullable {
				return ""
			}
			return nil
		}
		if _, ok := value.(string); !ok {
			addTypeError(msgKeyInvalidTestData)
			return ""
		}
	case ParameterTypeNumber:
		switch v := value.(type) {
		case nil:
			if !parameter.Nullable {
				return 0.0
			}
			return nil
		case string:
			if v == "" {
				if isTestData {
					if parameter.Nullable {
						return nil
					}
					return 0.0
				}
				addTypeError(msgKeyInvalidNumber)
				return 0.0
			}
			number, err := parseNumberString(v)
			if err != nil {
				addTypeError(msgKeyInvalidNumber)
				return 0.0
			}
			return number
		default:
			number, ok := toFloat(value)
			if !ok {
				addTypeError(msgKeyInvalidNumber)
				return 0.0
			}
			return number
		}
	case ParameterTypeBoolean:
		if value == nil {
			if !parameter.Nullable {
				return false
			}
			return nil
		}
		return isTruthy(value)
	case ParameterTypeDate:
		switch v := value.(type) {
		case nil:
			if !parameter.Nullable {
				return time.Now()
			}
			return nil
		case string:
			if isTestData && v == "" {
				if parameter.Nullable {
					return nil
				}
				return time.Now()
			}
			parsed, err := parseDatetimeString(v)
			if err != nil {
				addTypeError(msgKeyInvalidDate)
				return value
			}
			return parsed
		case time.Time:
			return v
		default:
			addTypeError(msgKeyInvalidDate)
		}
	}
	return value
}

// processData validates the data payload against the declared parameters
// and fills the report data used during rendering. Array rows get the
// internal row_number parameter injected.
func (r *Report) processData(destData, srcData map[string]any, parameters []*Parameter, isTestData bool, parents []*Parameter) {
	field := "type"
	if isTestData {
		field = "testData"
	}
	parentID := 0
	if len(parents) > 0 {
		parentID = parents[len(parents)-1].ID
	}
	for _, parameter := range parameters {
		if parameter.IsInternal {
			continue
		}
		if !validIdentifierRe.MatchString(parameter.Name) {
			r.addError(newErrorInfo(msgKeyInvalidParameterName, parameter.ID, "name", parameter.Name))
		}
		parameterType := parameter.Type
		if parameter.isEvaluated() {
			continue
		}
		value := srcData[parameter.Name]
		switch parameterType {
		case ParameterTypeString, ParameterTypeNumber, ParameterTypeBoolean, ParameterTypeDate:
			destData[parameter.Name] = r.parseParameterValue(parameter, parentID, isTestData, parameterType, value)
		case ParameterTypeImage:
			if value != nil {
				switch v := value.(type) {
				case string:
					// base64 encoded image data
					if !strings.HasPrefix(v, "data:image") {
						r.addError(newErrorInfo(msgKeyInvalidImage, parameter.ID, field, parameter.Name))
						continue
					}
				case []byte:
					_ = v
				default:
					r.addError(newErrorInfo(msgKeyInvalidImage, parameter.ID, field, parameter.Name))
					continue
				}
				destData[parameter.Name] = value
			}
		case ParameterTypeSimpleArray:
			switch v := value.(type) {
			case []any:
				listValues := make([]any, 0, len(v))
				for _, listValue := range v {
					listValues = append(listValues, r.parseParameterValue(
						parameter, parentID, isTestData, parameter.ArrayItemType, listValue))
				}
				destData[parameter.Name] = listValues
			case nil:
				if !parameter.Nullable {
					destData[parameter.Name] = []any{}
				} else {
					destData[parameter.Name] = nil
				}
			default:
				err := newError(msgKeyInvalidArray, parameter.ID, field)
				err.Context = parameter.Name
				r.addError(err)
			}
		case ParameterTypeArray:
			if len(parents) > 0 {
				r.addNestedParameterError(parameter)
				continue
			}
			switch v := value.(type) {
			case []any:
				// create a new list assigned to destData to keep srcData
				// unmodified
				destArray := make([]any, 0, len(v))
				arrayParents := append(parents, parameter)
				for rowNumber, rowValue := range v {
					row, _ := rowValue.(map[string]any)
					destArrayItem := make(map[string]any)
					r.processData(destArrayItem, row, parameter.Children, isTestData, arrayParents)
					// value for the internal row_number parameter
					destArrayItem["row_number"] = rowNumber + 1
					destArray = append(destArray, destArrayItem)
				}
				destData[parameter.Name] = destArray
			case nil:
				if !parameter.Nullable {
					destData[parameter.Name] = []any{}
				} else {
					destData[parameter.Name] = nil
				}
			default:
				err := newError(msgKeyInvalidArray, parameter.ID, field)
				err.Context = parameter.Name
				r.addError(err)
			}
		case ParameterTypeMap:
			if len(parents) > 0 {
				r.addNestedParameterError(parameter)
				continue
			}
			if value == nil && !parameter.Nullable {
				value = map[string]any{}
			}
			switch v := value.(type) {
			case map[string]any:
				destMap := make(map[string]any)
				r.processData(destMap, v, parameter.Children, isTestData, append(parents, parameter))
				destData[parameter.Name] = destMap
			case nil:
				destData[parameter.Name] = nil
			default:
				err := newError(msgKeyInvalidMap, parameter.ID, field)
				err.Context = parameter.Name
				r.addError(err)
			}
		}
	}
}

// nested array/map parameters inside other array/map parameters are not
// supported
func (r *Report) addNestedParameterError(parameter *Parameter) {
	err := newError(msgKeyInvalidDataSourceParameter, parameter.ID, "type")
	err.Context = parameter.Name
	r.addError(err)
}

// evaluateParameters computes parameters with expressions in their
// declaration order so an expression can refer to previously evaluated
// parameters.
func (r *Report) evaluateParameters(parameters []*Parameter, data map[string]any) error {
	for _, parameter := range parameters {
		if parameter.needsEvaluation() {
			if err := r.evaluateParameter(parameter, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) evaluateParameter(parameter *Parameter, data map[string]any) error {
	if parameter.isEvaluated() {
		return r.evaluateParameterExpr(parameter, data)
	}
	switch parameter.Type {
	case ParameterTypeMap:
		mapData, _ := data[parameter.Name].(map[string]any)
		if mapData == nil {
			return nil
		}
		for _, field := range parameter.Children {
			if err := r.evaluateParameter(field, mapData); err != nil {
				return err
			}
		}
	case ParameterTypeArray:
		var evalFields []*Parameter
		for _, field := range parameter.Children {
			if field.needsEvaluation() {
				evalFields = append(evalFields, field)
			}
		}
		if len(evalFields) == 0 {
			return nil
		}
		ref := r.context.getParameter(parameter.Name)
		if ref == nil {
			return nil
		}
		value, exists := r.context.getParameterData(ref)
		if !exists {
			return nil
		}
		rows, err := toDataRows(value)
		if err != nil {
			return nil
		}
		rowParameters := make(map[string]*Parameter)
		for _, rowParameter := range parameter.Children {
			rowParameters[rowParameter.Name] = rowParameter
		}
		for _, row := range rows {
			r.context.pushContext(rowParameters, row, parameter.Name)
			for _, field := range evalFields {
				if err := r.evaluateParameter(field, row); err != nil {
					r.context.popContext()
					return err
				}
			}
			r.context.popContext()
		}
	}
	return nil
}

func (r *Report) evaluateParameterExpr(parameter *Parameter, data map[string]any) error {
	if parameter.Expression == "" && !parameter.isRangeFunction() {
		err := newError(msgKeyMissingExpression, parameter.ID, "expression")
		err.Context = parameter.Name
		r.addError(err)
		return nil
	}

	var value any
	validValue := false
	if parameter.isRangeFunction() {
		number, ok := r.context.evaluateParameterFunc(parameter)
		value = number
		validValue = ok
	} else {
		result, err := r.context.evaluateExpression(parameter.Expression, parameter.ID, "expression")
		if err != nil {
			return err
		}
		value = result
		if value == nil && parameter.Nullable {
			// a nil result is valid if the parameter is nullable
			validValue = true
		} else {
			switch parameter.Type {
			case ParameterTypeString:
				_, validValue = value.(string)
			case ParameterTypeNumber:
				if number, ok := toFloat(value); ok {
					value = number
					validValue = true
				}
			case ParameterTypeBoolean:
				_, validValue = value.(bool)
			case ParameterTypeDate:
				switch v := value.(type) {
				case string:
					parsed, err := parseDatetimeString(v)
					if err != nil {
						parameterErr := newError(msgKeyInvalidExpressionType, parameter.ID, "expression")
						parameterErr.Context = parameter.Name
						r.addError(parameterErr)
					} else {
						value = parsed
					}
					validValue = true
				case time.Time:
					validValue = true
				}
			}
		}
	}

	if !validValue {
		err := newError(msgKeyInvalidExpressionType, parameter.ID, "expression")
		err.Context = parameter.Name
		r.addError(err)
		return nil
	}
	data[parameter.Name] = value
	return nil
}
