package reportbro

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testDocumentProperties returns a4 document properties where the bottom
// margin is chosen so exactly contentHeight points remain for the content
// band (a4 portrait is 842 points high).
func testDocumentProperties(contentHeight float64) map[string]any {
	return map[string]any{
		"pageFormat":            "a4",
		"orientation":           "portrait",
		"contentHeight":         contentHeight,
		"marginLeft":            0,
		"marginTop":             0,
		"marginRight":           0,
		"marginBottom":          842 - contentHeight,
		"patternLocale":         "en",
		"patternCurrencySymbol": "$",
	}
}

func testDefinition(contentHeight float64, docElements []any, parameters []any) map[string]any {
	return map[string]any{
		"version":            3,
		"documentProperties": testDocumentProperties(contentHeight),
		"docElements":        docElements,
		"parameters":         parameters,
		"styles":             []any{},
	}
}

func textElementData(id int, y, width, height float64, content string) map[string]any {
	return map[string]any{
		"elementType": "text",
		"id":          id,
		"containerId": "0_content",
		"x":           0,
		"y":           y,
		"width":       width,
		"height":      height,
		"content":     content,
	}
}

func newTestReport(t *testing.T, definition map[string]any, data map[string]any) *Report {
	t.Helper()
	report, err := NewReport(definition, data)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if len(report.errors) > 0 {
		t.Fatalf("report errors: %v", report.errors)
	}
	return report
}

// An element whose predecessor does not leave enough space on the current
// page must start at the top of the next page, not at its designed y-coord.
func TestElementAfterPredecessorMovesToNextPage(t *testing.T) {
	first := textElementData(1, 0, 200, 60, "first")
	second := textElementData(2, 70, 200, 60, "second")
	second["alwaysPrintOnSamePage"] = true
	report := newTestReport(t, testDefinition(100, []any{first, second}, nil), map[string]any{})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.page != 2 {
		t.Fatalf("got %d pages, want 2", doc.page)
	}
	firstText, ok := doc.findText("first")
	if !ok || firstText.page != 1 {
		t.Errorf("first element rendered on page %d, want page 1", firstText.page)
	}
	secondText, ok := doc.findText("second")
	if !ok {
		t.Fatal("second element was not rendered")
	}
	if secondText.page != 2 {
		t.Errorf("second element rendered on page %d, want page 2", secondText.page)
	}
	// the deferred element starts at the top of page 2, the baseline offset
	// is 0.8 * font size
	if wantY := 12 * 0.8; math.Abs(secondText.y-wantY) > 0.001 {
		t.Errorf("second element baseline y = %v, want %v", secondText.y, wantY)
	}
	if got := report.context.getPageCount(); got != 2 {
		t.Errorf("page count = %d, want 2", got)
	}
}

// Elements fitting below each other on one page keep their designed offsets.
func TestElementsOnSamePageKeepOffsets(t *testing.T) {
	first := textElementData(1, 0, 200, 30, "first")
	second := textElementData(2, 40, 200, 30, "second")
	report := newTestReport(t, testDefinition(100, []any{first, second}, nil), map[string]any{})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.page != 1 {
		t.Fatalf("got %d pages, want 1", doc.page)
	}
	secondText, _ := doc.findText("second")
	if wantY := 40 + 12*0.8; math.Abs(secondText.y-wantY) > 0.001 {
		t.Errorf("second element baseline y = %v, want %v", secondText.y, wantY)
	}
}

// A manual page break inside a band which cannot break pages is rejected.
func TestPageBreakInHeaderBandFails(t *testing.T) {
	definition := testDefinition(100, []any{
		map[string]any{
			"elementType": "page_break",
			"id":          1,
			"containerId": "0_header",
			"y":           10,
		},
	}, nil)
	props := definition["documentProperties"].(map[string]any)
	props["header"] = true
	props["headerDisplay"] = "always"
	props["headerSize"] = 50.0

	report := newTestReport(t, definition, map[string]any{})
	err := report.renderPDF(&fakeCanvas{})
	if err == nil {
		t.Fatal("expected error for page break in header band")
	}
	reportErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("got %T, want *Error", err)
	}
	if reportErr.MsgKey != msgKeyInvalidSize || reportErr.Field != "y" {
		t.Errorf("got error %q field %q, want %q field %q",
			reportErr.MsgKey, reportErr.Field, msgKeyInvalidSize, "y")
	}
}

// A long text flows over multiple pages, every page gets the lines which
// still fit.
func TestTextFlowsOverPages(t *testing.T) {
	// 10 words of 6 chars, element width 40 means one word (36 wide) per
	// line, each line is 12 high
	content := "aaaaaa bbbbbb cccccc dddddd eeeeee ffffff gggggg hhhhhh iiiiii jjjjjj"
	elem := textElementData(1, 0, 40, 24, content)
	report := newTestReport(t, testDefinition(60, []any{elem}, nil), map[string]any{})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.page != 2 {
		t.Fatalf("got %d pages, want 2", doc.page)
	}
	wantPage1 := []string{"aaaaaa", "bbbbbb", "cccccc", "dddddd", "eeeeee"}
	if diff := cmp.Diff(wantPage1, doc.textsOnPage(1)); diff != "" {
		t.Errorf("page 1 lines mismatch (-want +got):\n%s", diff)
	}
	wantPage2 := []string{"ffffff", "gggggg", "hhhhhh", "iiiiii", "jjjjjj"}
	if diff := cmp.Diff(wantPage2, doc.textsOnPage(2)); diff != "" {
		t.Errorf("page 2 lines mismatch (-want +got):\n%s", diff)
	}
}

// removeEmptyElement lets following elements move up into the freed space.
func TestRemoveEmptyElement(t *testing.T) {
	first := textElementData(1, 0, 200, 30, "${empty}")
	first["removeEmptyElement"] = true
	second := textElementData(2, 40, 200, 30, "second")
	parameters := []any{
		map[string]any{"id": 10, "name": "empty", "type": "string"},
	}
	report := newTestReport(t, testDefinition(100, []any{first, second}, parameters),
		map[string]any{"empty": ""})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, ok := doc.findText(""); ok {
		t.Error("empty element was rendered")
	}
	secondText, ok := doc.findText("second")
	if !ok {
		t.Fatal("second element was not rendered")
	}
	// predecessor finished at its render y, the gap of 10 between the
	// elements is kept
	if wantY := 10 + 12*0.8; math.Abs(secondText.y-wantY) > 0.001 {
		t.Errorf("second element baseline y = %v, want %v", secondText.y, wantY)
	}
}

func TestDuplicateParameterReported(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "value", "type": "string"},
		map[string]any{"id": 2, "name": "value", "type": "string"},
	}
	report, err := NewReport(testDefinition(100, nil, parameters), map[string]any{})
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if len(report.Errors()) == 0 {
		t.Fatal("expected duplicate parameter error")
	}
	if got := report.Errors()[0].MsgKey; got != msgKeyDuplicateParameter {
		t.Errorf("got error %q, want %q", got, msgKeyDuplicateParameter)
	}
}

func TestInvalidElementGeometryReported(t *testing.T) {
	elem := textElementData(1, 0, 200, 30, "text")
	elem["x"] = -5
	report, err := NewReport(testDefinition(100, []any{elem}, nil), map[string]any{})
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if len(report.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(report.Errors()))
	}
	reportErr := report.Errors()[0]
	if reportErr.MsgKey != msgKeyInvalidPosition || reportErr.Field != "x" {
		t.Errorf("got error %q field %q, want %q field %q",
			reportErr.MsgKey, reportErr.Field, msgKeyInvalidPosition, "x")
	}
}

func TestEvaluatedParameter(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "net", "type": "number"},
		map[string]any{
			"id": 2, "name": "gross", "type": "number",
			"eval": true, "expression": "${net} * 1.2",
		},
	}
	elem := textElementData(1, 0, 200, 30, "${gross}")
	report := newTestReport(t, testDefinition(100, []any{elem}, parameters),
		map[string]any{"net": 100})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, ok := doc.findText("120"); !ok {
		t.Errorf("evaluated parameter not rendered, got texts %v", doc.textsOnPage(1))
	}
}

func TestPageNumberParameters(t *testing.T) {
	parameters := []any{
		map[string]any{"id": 1, "name": "page_number", "type": "number"},
		map[string]any{"id": 2, "name": "page_count", "type": "number"},
	}
	first := textElementData(1, 0, 200, 60, "page ${page_number} of ${page_count}")
	second := textElementData(2, 70, 200, 60, "second")
	second["alwaysPrintOnSamePage"] = true
	report := newTestReport(t, testDefinition(100, []any{first, second}, parameters), map[string]any{})

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	// the content band is prepared before the page loop so the first page
	// number is rendered with the value at preparation time
	if got := report.context.getPageCount(); got != 2 {
		t.Errorf("page count = %d, want 2", got)
	}
}
