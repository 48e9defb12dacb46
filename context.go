package reportbro

import (
	"strings"
	"time"
)

// contextFrame is one level of the data scope chain. The root frame holds
// the report parameters and payload data, each table row, section row or
// evaluated array row pushes a child frame on top. Every frame gets a unique
// id so render elements can detect whether a parameter value belongs to a
// different row than a previously cached one.
type contextFrame struct {
	parameters map[string]*Parameter
	data       map[string]any
	contextID  int
	// dataSource is the name of the data source parameter whose row this
	// frame was pushed for, empty for the root frame.
	dataSource string
	parent     *contextFrame
}

// parameterRef points at a parameter found during name resolution together
// with the data map holding its value. For a field of a map parameter the
// data map is the inner collection value while the context id still comes
// from the frame the collection was found in.
type parameterRef struct {
	parameter *Parameter
	data      map[string]any
	contextID int
}

// Context resolves parameter names against the scope chain, substitutes
// ${name} placeholders and evaluates expressions. It also tracks the current
// page number and total page count of the running render.
type Context struct {
	report                *Report
	patternLocale         string
	patternCurrencySymbol string
	frame                 *contextFrame
	rootData              map[string]any
	nextID                int
	rangeCount            int
}

func newContext(report *Report, parameters map[string]*Parameter, data map[string]any) *Context {
	ctx := &Context{
		report:                report,
		patternLocale:         report.documentProperties.patternLocale,
		patternCurrencySymbol: report.documentProperties.patternCurrencySymbol,
		rootData:              data,
		nextID:                1,
	}
	ctx.frame = &contextFrame{parameters: parameters, data: data, contextID: ctx.nextID}
	data["page_number"] = 0
	data["page_count"] = 0
	return ctx
}

// pushContext enters a new scope, e.g. for a table content row. dataSource
// is the name of the data source parameter the scope belongs to, it allows
// references into an outer scope with the "source:" prefix. Must be paired
// with popContext once the row is processed.
func (ctx *Context) pushContext(parameters map[string]*Parameter, data map[string]any, dataSource string) {
	ctx.nextID++
	ctx.frame = &contextFrame{
		parameters: parameters,
		data:       data,
		contextID:  ctx.nextID,
		dataSource: dataSource,
		parent:     ctx.frame,
	}
}

// popContext leaves the current scope. Popping the root frame is an engine
// bug, it is logged and ignored so an embedding application does not crash.
func (ctx *Context) popContext() {
	if ctx.frame.parent == nil {
		log.Error().Msg("popContext called on root context")
		return
	}
	ctx.frame = ctx.frame.parent
}

// getParameter resolves a parameter name in the current scope chain. Names
// may contain dots to address fields of nested map parameters and a data
// source prefix like "items:total" to resolve a name in the scope of an
// outer data source row. Returns nil if the name is not defined.
func (ctx *Context) getParameter(name string) *parameterRef {
	frame := ctx.frame
	if idx := strings.Index(name, ":"); idx != -1 {
		sourceName := name[:idx]
		name = name[idx+1:]
		for ; frame != nil; frame = frame.parent {
			if frame.dataSource == sourceName {
				break
			}
		}
		if frame == nil {
			return nil
		}
	}
	return ctx.resolveInFrame(frame, name)
}

// resolveInFrame resolves a possibly dotted name starting at the given
// frame, following nested map parameter fields for each dot segment.
func (ctx *Context) resolveInFrame(frame *contextFrame, name string) *parameterRef {
	parts := strings.Split(name, ".")
	ref := lookupParameterFrom(frame, parts[0])
	for _, fieldName := range parts[1:] {
		if ref == nil || ref.parameter.Type != ParameterTypeMap {
			return nil
		}
		field, ok := ref.parameter.Fields[fieldName]
		if !ok {
			return nil
		}
		collection, ok := ref.data[ref.parameter.Name].(map[string]any)
		if !ok {
			return nil
		}
		ref = &parameterRef{parameter: field, data: collection, contextID: ref.contextID}
	}
	return ref
}

func (ctx *Context) lookupParameter(name string) *parameterRef {
	return lookupParameterFrom(ctx.frame, name)
}

func lookupParameterFrom(frame *contextFrame, name string) *parameterRef {
	for ; frame != nil; frame = frame.parent {
		if p, ok := frame.parameters[name]; ok {
			return &parameterRef{parameter: p, data: frame.data, contextID: frame.contextID}
		}
	}
	return nil
}

// getParameterData returns the current value for a resolved parameter.
// Sum/average parameters are recomputed on access while a table group band
// has restricted their data source to a row range.
func (ctx *Context) getParameterData(ref *parameterRef) (any, bool) {
	if ctx.rangeCount > 0 && ref.parameter.isRangeFunction() {
		if value, ok := ctx.evaluateParameterFunc(ref.parameter); ok {
			return value, true
		}
	}
	value, ok := ref.data[ref.parameter.Name]
	return value, ok
}

// getData looks up a plain value in the scope chain without resolving the
// parameter definition.
func (ctx *Context) getData(name string) (any, bool) {
	for frame := ctx.frame; frame != nil; frame = frame.parent {
		if value, ok := frame.data[name]; ok {
			return value, true
		}
	}
	return nil, false
}

func (ctx *Context) incRangeCount() { ctx.rangeCount++ }
func (ctx *Context) decRangeCount() { ctx.rangeCount-- }

// fillParameters substitutes every ${name} occurrence in the given text with
// the formatted parameter value. An explicit pattern overrides the pattern
// of the respective parameters.
func (ctx *Context) fillParameters(text string, objectID int, field, pattern string) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	var ret strings.Builder
	rest := text
	for {
		pos := strings.Index(rest, "${")
		if pos == -1 {
			ret.WriteString(rest)
			break
		}
		end := strings.Index(rest[pos:], "}")
		if end == -1 {
			ret.WriteString(rest)
			break
		}
		ret.WriteString(rest[:pos])
		parameterName := rest[pos+2 : pos+end]
		rest = rest[pos+end+1:]

		ref := ctx.getParameter(parameterName)
		if ref == nil {
			return "", newErrorInfo(msgKeyInvalidExpressionNameNotDef, objectID, field, parameterName)
		}
		value, exists := ctx.getParameterData(ref)
		if !exists {
			return "", newErrorInfo(msgKeyMissingParameterData, objectID, field, parameterName)
		}
		if value != nil {
			formatted, err := ctx.getFormattedValue(value, ref.parameter, objectID, pattern, false)
			if err != nil {
				return "", err
			}
			ret.WriteString(formatted)
		}
	}
	return ret.String(), nil
}

// fillParametersRaw works like fillParameters but ignores any pattern, the
// raw string representation of the values is used. Needed when content is
// exported to a typed spreadsheet cell and parsed again.
func (ctx *Context) fillParametersRaw(text string, objectID int, field string) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	var ret strings.Builder
	rest := text
	for {
		pos := strings.Index(rest, "${")
		if pos == -1 {
			ret.WriteString(rest)
			break
		}
		end := strings.Index(rest[pos:], "}")
		if end == -1 {
			ret.WriteString(rest)
			break
		}
		ret.WriteString(rest[:pos])
		parameterName := rest[pos+2 : pos+end]
		rest = rest[pos+end+1:]

		ref := ctx.getParameter(parameterName)
		if ref == nil {
			return "", newErrorInfo(msgKeyInvalidExpressionNameNotDef, objectID, field, parameterName)
		}
		value, exists := ctx.getParameterData(ref)
		if !exists {
			return "", newErrorInfo(msgKeyMissingParameterData, objectID, field, parameterName)
		}
		if value != nil {
			if date, ok := value.(time.Time); ok {
				ret.WriteString(date.Format("2006-01-02 15:04:05"))
			} else {
				ret.WriteString(toString(value))
			}
		}
	}
	return ret.String(), nil
}

// evaluateExpression substitutes parameters in the expression and evaluates
// it. An empty expression evaluates to true.
func (ctx *Context) evaluateExpression(expression string, objectID int, field string) (any, error) {
	if expression == "" {
		return true, nil
	}
	env := make(map[string]any)
	plainExpr := ctx.replaceParameters(expression, env)
	result, err := evalExpression(plainExpr, env)
	if err != nil {
		msg := err.Error()
		if idx := strings.Index(msg, "unknown name "); idx != -1 {
			name := strings.TrimSpace(msg[idx+len("unknown name "):])
			if cut := strings.IndexAny(name, " (\n"); cut != -1 {
				name = name[:cut]
			}
			return nil, &Error{
				MsgKey: msgKeyInvalidExpressionNameNotDef, ObjectID: objectID,
				Field: field, Info: name, Context: expression,
			}
		}
		return nil, &Error{
			MsgKey: msgKeyInvalidExpression, ObjectID: objectID,
			Field: field, Info: msg, Context: expression,
		}
	}
	return result, nil
}

// replaceParameters rewrites ${name} references into plain identifiers and
// stores the current parameter values in env so the expression evaluator can
// access them. A dotted name like ${order.total} becomes order_total.
func (ctx *Context) replaceParameters(expression string, env map[string]any) string {
	if !strings.Contains(expression, "${") {
		return expression
	}
	var ret strings.Builder
	rest := expression
	for {
		pos := strings.Index(rest, "${")
		if pos == -1 {
			ret.WriteString(rest)
			break
		}
		end := strings.Index(rest[pos:], "}")
		if end == -1 {
			ret.WriteString(rest)
			break
		}
		ret.WriteString(rest[:pos])
		parameterName := rest[pos+2 : pos+end]
		rest = rest[pos+end+1:]

		var value any
		if ref := ctx.getParameter(parameterName); ref != nil {
			value, _ = ctx.getParameterData(ref)
		} else if idx := strings.Index(parameterName, "."); idx != -1 {
			collectionValue, _ := ctx.getData(parameterName[:idx])
			if collection, ok := collectionValue.(map[string]any); ok {
				value = collection[parameterName[idx+1:]]
			}
		} else {
			value, _ = ctx.getData(parameterName)
		}
		// dots and data source prefixes are not valid in identifiers
		parameterName = strings.NewReplacer(".", "_", ":", "_").Replace(parameterName)
		if env != nil {
			env[parameterName] = value
		}
		ret.WriteString(parameterName)
	}
	return ret.String()
}

// evaluateParameterFunc computes the value of a sum or average parameter
// over the rows of its data source, restricted to the row range currently
// set on the data source parameter.
func (ctx *Context) evaluateParameterFunc(parameter *Parameter) (float64, bool) {
	expression := stripParameterName(parameter.Expression)
	idx := strings.Index(expression, ".")
	if idx == -1 {
		return 0, false
	}
	sourceName := expression[:idx]
	fieldName := expression[idx+1:]
	ref := ctx.lookupParameter(sourceName)
	if ref == nil {
		return 0, false
	}
	rowsValue, exists := ref.data[sourceName]
	if !exists {
		return 0, false
	}
	rows, ok := rowsValue.([]any)
	if !ok {
		return 0, false
	}
	start, end := 0, len(rows)
	if r, hasRange := ref.parameter.currentRange(); hasRange {
		start = r.start
		if r.end != -1 && r.end < end {
			end = r.end
		}
	}
	var total float64
	count := 0
	for i := start; i < end && i < len(rows); i++ {
		row, ok := rows[i].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := toFloat(row[fieldName]); ok {
			total += v
			count++
		}
	}
	if parameter.Type == ParameterTypeAverage {
		if count == 0 {
			return 0, true
		}
		return total / float64(count), true
	}
	return total, true
}

// getFormattedValue converts a parameter value to its display string,
// applying the number or date pattern if one is set.
func (ctx *Context) getFormattedValue(value any, parameter *Parameter, objectID int, pattern string, isArrayItem bool) (string, error) {
	valueType := parameter.Type
	if isArrayItem && parameter.Type == ParameterTypeSimpleArray {
		valueType = parameter.ArrayItemType
	}
	switch valueType {
	case ParameterTypeString:
		return toString(value), nil
	case ParameterTypeNumber, ParameterTypeAverage, ParameterTypeSum:
		number, ok := toFloat(value)
		if !ok {
			return toString(value), nil
		}
		usedPattern := parameter.Pattern
		hasCurrency := parameter.PatternHasCurrency
		if pattern != "" {
			usedPattern = pattern
			hasCurrency = strings.Contains(pattern, "$")
		}
		if usedPattern == "" {
			return toString(value), nil
		}
		formatted, err := formatNumber(number, usedPattern, ctx.patternLocale)
		if err != nil {
			return "", ctx.invalidPatternError(objectID, pattern, parameter, value)
		}
		if hasCurrency {
			formatted = strings.ReplaceAll(formatted, "$", ctx.patternCurrencySymbol)
		}
		return formatted, nil
	case ParameterTypeDate:
		date, ok := value.(time.Time)
		if !ok {
			return toString(value), nil
		}
		usedPattern := parameter.Pattern
		if pattern != "" {
			usedPattern = pattern
		}
		if usedPattern == "" {
			return date.Format("2006-01-02 15:04:05"), nil
		}
		formatted, err := formatDate(date, usedPattern)
		if err != nil {
			return "", ctx.invalidPatternError(objectID, pattern, parameter, value)
		}
		return formatted, nil
	}
	return toString(value), nil
}

// invalidPatternError reports a malformed format pattern. The error points
// at the element when the pattern was set there, otherwise at the parameter
// defining the pattern.
func (ctx *Context) invalidPatternError(objectID int, pattern string, parameter *Parameter, value any) *Error {
	errorObjectID := parameter.ID
	if pattern != "" {
		errorObjectID = objectID
	}
	err := newError(msgKeyInvalidPattern, errorObjectID, "pattern")
	err.Context = toString(value)
	return err
}

// stripParameterName removes the ${...} wrapper from a parameter reference.
func stripParameterName(expression string) string {
	s := strings.TrimSpace(expression)
	s = strings.TrimPrefix(s, "${")
	return strings.TrimSuffix(s, "}")
}

// isParameterName reports whether the expression is a single ${...}
// parameter reference.
func isParameterName(expression string) bool {
	s := strings.TrimSpace(expression)
	return strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}")
}

func (ctx *Context) incPageNumber() {
	ctx.rootData["page_number"] = ctx.getPageNumber() + 1
}

func (ctx *Context) getPageNumber() int {
	n, _ := ctx.rootData["page_number"].(int)
	return n
}

func (ctx *Context) setPageCount(pageCount int) {
	ctx.rootData["page_count"] = pageCount
}

func (ctx *Context) getPageCount() int {
	n, _ := ctx.rootData["page_count"].(int)
	return n
}
