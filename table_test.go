package reportbro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tableCellData(id int, width float64, content string) map[string]any {
	return map[string]any{
		"id":      id,
		"width":   width,
		"content": content,
	}
}

func tableBandData(id int, height float64, cells ...map[string]any) map[string]any {
	columnData := make([]any, 0, len(cells))
	for _, cell := range cells {
		columnData = append(columnData, cell)
	}
	return map[string]any{
		"id":         id,
		"height":     height,
		"columnData": columnData,
	}
}

func tableElementData(id int, dataSource string, contentRows ...map[string]any) map[string]any {
	rows := make([]any, 0, len(contentRows))
	for _, row := range contentRows {
		rows = append(rows, row)
	}
	return map[string]any{
		"elementType":     "table",
		"id":              id,
		"containerId":     "0_content",
		"x":               0,
		"y":               0,
		"width":           0,
		"height":          0,
		"dataSource":      dataSource,
		"columns":         1,
		"contentDataRows": rows,
	}
}

func itemsParameter(children ...map[string]any) map[string]any {
	childData := make([]any, 0, len(children))
	for _, child := range children {
		childData = append(childData, child)
	}
	return map[string]any{
		"id":       100,
		"name":     "items",
		"type":     "array",
		"children": childData,
	}
}

// A table header with repeatHeader set must be rendered again at the top of
// every page the table continues on.
func TestTableRepeatHeaderAcrossPages(t *testing.T) {
	headerData := tableBandData(10, 20, tableCellData(11, 100, "Name"))
	headerData["repeatHeader"] = true
	contentData := tableBandData(20, 20, tableCellData(21, 100, "${name}"))
	contentData["alwaysPrintOnSamePage"] = true
	table := tableElementData(1, "${items}", contentData)
	table["header"] = true
	table["headerData"] = headerData

	parameters := []any{itemsParameter(
		map[string]any{"id": 101, "name": "name", "type": "string"},
	)}
	data := map[string]any{
		"items": []any{
			map[string]any{"name": "r1"},
			map[string]any{"name": "r2"},
			map[string]any{"name": "r3"},
		},
	}
	report := newTestReport(t, testDefinition(70, []any{table}, parameters), data)

	doc := &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.page != 2 {
		t.Fatalf("pages = %d, want 2", doc.page)
	}
	if diff := cmp.Diff([]string{"Name", "r1", "r2"}, doc.textsOnPage(1)); diff != "" {
		t.Errorf("first page rows differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name", "r3"}, doc.textsOnPage(2)); diff != "" {
		t.Errorf("second page rows differ (-want +got):\n%s", diff)
	}
}

// A cell bound to a simple array parameter is expanded into one printed
// cell per array entry.
func TestTableSimpleArrayCellExpansion(t *testing.T) {
	parameters := []any{
		map[string]any{
			"id": 100, "name": "arr", "type": "simple_array", "arrayItemType": "string",
		},
	}
	data := map[string]any{"arr": []any{"a", "b", "c"}}
	definition := testDefinition(100, []any{
		tableElementData(1, "", tableBandData(20, 20, tableCellData(21, 30, "${arr}"))),
	}, parameters)

	report := newTestReport(t, definition, data)
	table, ok := report.containers["0_content"].docElements[0].(*TableElement)
	if !ok {
		t.Fatalf("table element not found in content band")
	}
	doc := &fakeCanvas{}
	if err := table.prepare(report.context, doc, false); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	band := table.contentRows[0]
	if len(band.printedCells) != 3 {
		t.Fatalf("printed cells = %d, want 3", len(band.printedCells))
	}
	if table.width != 90 {
		t.Errorf("table width = %g, want 90", table.width)
	}
	for i, wantX := range []float64{0, 30, 60} {
		if got := band.printedCells[i].x; got != wantX {
			t.Errorf("cell %d x = %g, want %g", i, got, wantX)
		}
	}

	// render with a fresh report, each array entry must show up in its own cell
	report = newTestReport(t, definition, data)
	doc = &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, doc.textsOnPage(1)); diff != "" {
		t.Errorf("rendered cells differ (-want +got):\n%s", diff)
	}
}

// A group band before the main content is printed whenever the group
// expression changes compared to the previous row.
func TestTableGroupBandRowIndices(t *testing.T) {
	groupData := tableBandData(10, 20, tableCellData(11, 100, "Group ${g}"))
	groupData["groupExpression"] = "${g}"
	contentData := tableBandData(20, 20, tableCellData(21, 100, "${name}"))
	table := tableElementData(1, "${items}", groupData, contentData)

	parameters := []any{itemsParameter(
		map[string]any{"id": 101, "name": "g", "type": "number"},
		map[string]any{"id": 102, "name": "name", "type": "string"},
	)}
	data := map[string]any{
		"items": []any{
			map[string]any{"g": 1, "name": "r1"},
			map[string]any{"g": 1, "name": "r2"},
			map[string]any{"g": 2, "name": "r3"},
		},
	}
	definition := testDefinition(300, []any{table}, parameters)

	report := newTestReport(t, definition, data)
	tableElem, ok := report.containers["0_content"].docElements[0].(*TableElement)
	if !ok {
		t.Fatalf("table element not found in content band")
	}
	doc := &fakeCanvas{}
	if err := tableElem.prepare(report.context, doc, false); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if diff := cmp.Diff([]int{0, 2}, tableElem.contentRows[0].groupChangedRowIndices); diff != "" {
		t.Errorf("group changed row indices differ (-want +got):\n%s", diff)
	}

	report = newTestReport(t, definition, data)
	doc = &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"Group 1", "r1", "r2", "Group 2", "r3"}
	if diff := cmp.Diff(want, doc.textsOnPage(1)); diff != "" {
		t.Errorf("rendered rows differ (-want +got):\n%s", diff)
	}
}

// A group band after the main content is printed on the last row of each
// group: whenever the group expression differs from the next row, the last
// row of the data source included.
func TestTableGroupBandAfterContentRowIndices(t *testing.T) {
	contentData := tableBandData(10, 20, tableCellData(11, 100, "${name}"))
	groupData := tableBandData(20, 20, tableCellData(21, 100, "End ${g}"))
	groupData["groupExpression"] = "${g}"
	table := tableElementData(1, "${items}", contentData, groupData)

	parameters := []any{itemsParameter(
		map[string]any{"id": 101, "name": "g", "type": "number"},
		map[string]any{"id": 102, "name": "name", "type": "string"},
	)}
	data := map[string]any{
		"items": []any{
			map[string]any{"g": 1, "name": "r1"},
			map[string]any{"g": 1, "name": "r2"},
			map[string]any{"g": 2, "name": "r3"},
		},
	}
	definition := testDefinition(300, []any{table}, parameters)

	report := newTestReport(t, definition, data)
	tableElem, ok := report.containers["0_content"].docElements[0].(*TableElement)
	if !ok {
		t.Fatalf("table element not found in content band")
	}
	doc := &fakeCanvas{}
	if err := tableElem.prepare(report.context, doc, false); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, tableElem.contentRows[1].groupChangedRowIndices); diff != "" {
		t.Errorf("group changed row indices differ (-want +got):\n%s", diff)
	}

	report = newTestReport(t, definition, data)
	doc = &fakeCanvas{}
	if err := report.renderPDF(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"r1", "r2", "End 1", "r3", "End 2"}
	if diff := cmp.Diff(want, doc.textsOnPage(1)); diff != "" {
		t.Errorf("rendered rows differ (-want +got):\n%s", diff)
	}
}
