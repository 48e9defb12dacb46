package reportbro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// A band container is rendered once per page, reset re-arms all elements so
// the replay produces exactly the same output as the first pass.
func TestContainerResetReplaysBand(t *testing.T) {
	title := textElementData(1, 0, 200, 30, "title")
	title["containerId"] = "0_header"
	subtitle := textElementData(2, 40, 200, 30, "subtitle")
	subtitle["containerId"] = "0_header"
	definition := testDefinition(200, []any{title, subtitle}, nil)
	props := definition["documentProperties"].(map[string]any)
	props["header"] = true
	props["headerDisplay"] = "always"
	props["headerSize"] = 80.0

	report := newTestReport(t, definition, map[string]any{})
	doc := &fakeCanvas{}
	band := report.header
	for pass := 1; pass <= 2; pass++ {
		doc.AddPage()
		if err := band.prepare(report.context, doc, false); err != nil {
			t.Fatalf("pass %d: prepare: %v", pass, err)
		}
		complete, err := band.createRenderElements(0, 80, report.context, doc)
		if err != nil {
			t.Fatalf("pass %d: create render elements: %v", pass, err)
		}
		if !complete {
			t.Fatalf("pass %d: band not completely rendered", pass)
		}
		if err := band.renderPDF(0, 0, doc, false); err != nil {
			t.Fatalf("pass %d: render: %v", pass, err)
		}
		band.reset()
	}

	var page1, page2 []fakeText
	for _, txt := range doc.texts {
		page := txt.page
		txt.page = 0
		if page == 1 {
			page1 = append(page1, txt)
		} else {
			page2 = append(page2, txt)
		}
	}
	if len(page1) == 0 {
		t.Fatal("no text rendered on first pass")
	}
	if diff := cmp.Diff(page1, page2, cmp.AllowUnexported(fakeText{})); diff != "" {
		t.Errorf("replayed band differs from first pass (-first +replay):\n%s", diff)
	}
}

// An element starting exactly at the bottom of the element above it is its
// successor. An element ending exactly at the start of an already known
// predecessor is not added again, it already precedes that predecessor.
func TestPredecessorsWithTouchingElements(t *testing.T) {
	first := textElementData(1, 0, 200, 30, "first")
	second := textElementData(2, 30, 200, 30, "second")
	third := textElementData(3, 60, 200, 30, "third")
	report := newTestReport(t, testDefinition(200, []any{first, second, third}, nil),
		map[string]any{})

	if err := report.content.prepare(report.context, &fakeCanvas{}, false); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	predecessorIDs := func(id int) []int {
		for _, elem := range report.content.docElements {
			if elem.base().id != id {
				continue
			}
			var ids []int
			for _, predecessor := range elem.base().predecessors {
				ids = append(ids, predecessor.base().id)
			}
			return ids
		}
		t.Fatalf("element %d not found", id)
		return nil
	}
	if diff := cmp.Diff([]int{1}, predecessorIDs(2)); diff != "" {
		t.Errorf("predecessors of second element differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, predecessorIDs(3)); diff != "" {
		t.Errorf("predecessors of third element differ (-want +got):\n%s", diff)
	}
}
