package reportbro

import (
	"errors"
	"testing"
)

func TestFillParameters(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "name", "type": "string"},
		map[string]any{"id": 2, "name": "amount", "type": "number"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"name": "World", "amount": 12.5})

	got, err := report.context.fillParameters("Hello ${name}, total ${amount}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if want := "Hello World, total 12.5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// a pattern passed by the element overrides the parameter pattern
	got, err = report.context.fillParameters("${amount}", 1, "content", "#,##0.00")
	if err != nil {
		t.Fatalf("fill parameters with pattern: %v", err)
	}
	if want := "12.50"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// A rich text parameter is treated as plain string parameter since rich
// text rendering is not supported.
func TestRichTextParameterFallsBackToString(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "note", "type": "rich_text"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"note": "plain note"})

	if got := report.parameters["note"].Type; got != ParameterTypeString {
		t.Fatalf("parameter type = %v, want %v", got, ParameterTypeString)
	}
	got, err := report.context.fillParameters("${note}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if got != "plain note" {
		t.Errorf("got %q, want %q", got, "plain note")
	}
}

func TestFillParametersUnknownName(t *testing.T) {
	report := newTestReport(t, testDefinition(100, nil, nil), map[string]any{})

	_, err := report.context.fillParameters("${nope}", 7, "content", "")
	var reportErr *Error
	if !errors.As(err, &reportErr) {
		t.Fatalf("expected report error, got %v", err)
	}
	if reportErr.MsgKey != msgKeyInvalidExpressionNameNotDef {
		t.Errorf("msg key = %q, want %q", reportErr.MsgKey, msgKeyInvalidExpressionNameNotDef)
	}
	if reportErr.ObjectID != 7 || reportErr.Info != "nope" {
		t.Errorf("object id = %d, info = %q, want 7 and %q", reportErr.ObjectID, reportErr.Info, "nope")
	}
}

// A malformed number pattern is reported as a pattern error. The error points
// at the element when the pattern was set there, otherwise at the parameter.
func TestFillParametersInvalidPattern(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 2, "name": "amount", "type": "number", "pattern": "0.0.0"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"amount": 12.5})

	_, err := report.context.fillParameters("${amount}", 5, "content", "")
	var reportErr *Error
	if !errors.As(err, &reportErr) {
		t.Fatalf("expected report error, got %v", err)
	}
	if reportErr.MsgKey != msgKeyInvalidPattern || reportErr.Field != "pattern" {
		t.Errorf("msg key = %q, field = %q, want %q and %q",
			reportErr.MsgKey, reportErr.Field, msgKeyInvalidPattern, "pattern")
	}
	if reportErr.ObjectID != 2 {
		t.Errorf("object id = %d, want parameter id 2", reportErr.ObjectID)
	}

	_, err = report.context.fillParameters("${amount}", 5, "content", "no placeholder")
	if !errors.As(err, &reportErr) {
		t.Fatalf("expected report error, got %v", err)
	}
	if reportErr.ObjectID != 5 {
		t.Errorf("object id = %d, want element id 5", reportErr.ObjectID)
	}
}

// Popping the root context is refused instead of crashing the render.
func TestPopContextOnRoot(t *testing.T) {
	report := newTestReport(t, testDefinition(100, nil, nil), map[string]any{})
	ctx := report.context

	ctx.popContext()
	if ctx.frame == nil || ctx.frame.parent != nil {
		t.Fatal("root frame was popped")
	}
}

// An inner context shadows parameters of the enclosing scope, popping the
// context makes the outer value visible again.
func TestContextScoping(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "name", "type": "string"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"name": "outer"})
	ctx := report.context

	rowParameters := map[string]*Parameter{"name": report.parameters["name"]}
	ctx.pushContext(rowParameters, map[string]any{"name": "inner"}, "")
	got, err := ctx.fillParameters("${name}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if got != "inner" {
		t.Errorf("inner scope: got %q, want %q", got, "inner")
	}
	ctx.popContext()

	got, err = ctx.fillParameters("${name}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if got != "outer" {
		t.Errorf("outer scope: got %q, want %q", got, "outer")
	}
}

// A name with a data source prefix resolves in the scope of the named data
// source row even when an inner row scope shadows the plain name.
func TestContextDataSourceReference(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "name", "type": "string"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"name": "root"})
	ctx := report.context

	rowParameters := map[string]*Parameter{"name": report.parameters["name"]}
	ctx.pushContext(rowParameters, map[string]any{"name": "item"}, "items")
	ctx.pushContext(rowParameters, map[string]any{"name": "line"}, "lines")

	got, err := ctx.fillParameters("${name} in ${items:name}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if want := "line in item"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if ref := ctx.getParameter("missing:name"); ref != nil {
		t.Errorf("unknown data source resolved to %v", ref.parameter)
	}

	ctx.popContext()
	ctx.popContext()
}

// A dotted name walks nested map parameter fields across multiple levels.
func TestContextNestedMapFields(t *testing.T) {
	report := newTestReport(t, testDefinition(100, nil, nil), map[string]any{})
	ctx := report.context

	customer := &Parameter{
		ID: 11, Name: "customer", Type: ParameterTypeMap,
		Fields: map[string]*Parameter{
			"name": {ID: 12, Name: "name", Type: ParameterTypeString},
		},
	}
	order := &Parameter{
		ID: 10, Name: "order", Type: ParameterTypeMap,
		Fields: map[string]*Parameter{"customer": customer},
	}
	data := map[string]any{
		"order": map[string]any{
			"customer": map[string]any{"name": "deep"},
		},
	}
	ctx.pushContext(map[string]*Parameter{"order": order}, data, "")
	defer ctx.popContext()

	got, err := ctx.fillParameters("${order.customer.name}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if got != "deep" {
		t.Errorf("got %q, want %q", got, "deep")
	}

	if ref := ctx.getParameter("order.customer.street"); ref != nil {
		t.Errorf("unknown field resolved to %v", ref.parameter)
	}
}

func TestEvaluateExpression(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "amount", "type": "number"},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters),
		map[string]any{"amount": 15})
	ctx := report.context

	result, err := ctx.evaluateExpression("${amount} > 10", 1, "printIf")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !isTruthy(result) {
		t.Errorf("expected truthy result, got %v", result)
	}

	result, err = ctx.evaluateExpression("${amount} * 2", 1, "expression")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if number, ok := toFloat(result); !ok || number != 30 {
		t.Errorf("got %v, want 30", result)
	}
}

// Sum and average parameters aggregate over the rows of their data source.
// While a row range is pushed for a table group band, only the rows of the
// current group are aggregated.
func TestSumAndAverageParameters(t *testing.T) {
	parameters := []any{
		itemsParameter(map[string]any{"id": 101, "name": "price", "type": "number"}),
		map[string]any{"id": 2, "name": "total", "type": "sum", "expression": "${items.price}"},
		map[string]any{"id": 3, "name": "avg_price", "type": "average", "expression": "${items.price}"},
	}
	data := map[string]any{
		"items": []any{
			map[string]any{"price": 10},
			map[string]any{"price": 20},
			map[string]any{"price": 30},
		},
	}
	report := newTestReport(t, testDefinition(100, nil, parameters), data)
	ctx := report.context

	got, err := ctx.fillParameters("${total} / ${avg_price}", 1, "content", "")
	if err != nil {
		t.Fatalf("fill parameters: %v", err)
	}
	if want := "60 / 20"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// restrict the aggregation to the first two rows as a group band does
	items := report.parameters["items"]
	items.pushRange(0, 2)
	ctx.incRangeCount()
	ref := ctx.getParameter("total")
	if ref == nil {
		t.Fatalf("total parameter not found")
	}
	value, exists := ctx.getParameterData(ref)
	if !exists {
		t.Fatalf("total has no data")
	}
	if number, ok := toFloat(value); !ok || number != 30 {
		t.Errorf("group sum = %v, want 30", value)
	}
	items.popRange()
	ctx.decRangeCount()

	value, exists = ctx.getParameterData(ref)
	if !exists {
		t.Fatalf("total has no data")
	}
	if number, ok := toFloat(value); !ok || number != 60 {
		t.Errorf("sum after pop = %v, want 60", value)
	}
}
