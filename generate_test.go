package reportbro_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	reportbro "github.com/jobsta/reportbro-lib"
)

func invoiceDefinition() []byte {
	return []byte(`{
		"version": 3,
		"documentProperties": {
			"pageFormat": "a4",
			"orientation": "portrait",
			"contentHeight": 0,
			"marginLeft": 20,
			"marginTop": 20,
			"marginRight": 20,
			"marginBottom": 20,
			"header": false,
			"footer": false,
			"patternLocale": "en",
			"patternCurrencySymbol": "$"
		},
		"docElements": [
			{
				"elementType": "text", "id": 1, "containerId": "0_content",
				"x": 0, "y": 0, "width": 200, "height": 20,
				"content": "Invoice for ${customer}"
			},
			{
				"elementType": "table", "id": 2, "containerId": "0_content",
				"x": 0, "y": 30, "width": 0, "height": 0,
				"dataSource": "${items}", "columns": 2,
				"header": true,
				"headerData": {
					"id": 10, "height": 20,
					"columnData": [
						{"id": 11, "width": 200, "content": "Article"},
						{"id": 12, "width": 100, "content": "Price"}
					]
				},
				"contentDataRows": [{
					"id": 20, "height": 20,
					"columnData": [
						{"id": 21, "width": 200, "content": "${name}"},
						{"id": 22, "width": 100, "content": "${price}", "pattern": "#,##0.00"}
					]
				}]
			}
		],
		"parameters": [
			{"id": 1, "name": "customer", "type": "string"},
			{"id": 2, "name": "items", "type": "array", "children": [
				{"id": 3, "name": "name", "type": "string"},
				{"id": 4, "name": "price", "type": "number"}
			]}
		],
		"styles": []
	}`)
}

func invoiceData() map[string]any {
	return map[string]any{
		"customer": "Acme Corp",
		"items": []any{
			map[string]any{"name": "Switch", "price": 12.5},
			map[string]any{"name": "Cable", "price": 3.75},
		},
	}
}

func TestGeneratePDF(t *testing.T) {
	report, err := reportbro.NewReportFromJSON(invoiceDefinition(), invoiceData())
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if errs := report.Errors(); len(errs) > 0 {
		t.Fatalf("report errors: %v", errs)
	}
	report.SetCreationDate(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := report.GeneratePDF(&buf); err != nil {
		t.Fatalf("generate pdf: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output does not start with PDF header")
	}
	if report.PageCount() != 1 {
		t.Errorf("page count = %d, want 1", report.PageCount())
	}
}

func TestGenerateXLSX(t *testing.T) {
	report, err := reportbro.NewReportFromJSON(invoiceDefinition(), invoiceData())
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.GenerateXLSX(&buf); err != nil {
		t.Fatalf("generate xlsx: %v", err)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output is not a zip archive")
	}
}

func TestGenerateXLSXWithBarcode(t *testing.T) {
	definition := []byte(`{
		"version": 3,
		"documentProperties": {
			"pageFormat": "a4", "orientation": "portrait", "contentHeight": 0,
			"marginLeft": 20, "marginTop": 20, "marginRight": 20, "marginBottom": 20,
			"header": false, "footer": false,
			"patternLocale": "en", "patternCurrencySymbol": "$"
		},
		"docElements": [
			{
				"elementType": "bar_code", "id": 1, "containerId": "0_content",
				"x": 0, "y": 0, "width": 120, "height": 60,
				"content": "${article_no}", "format": "code128"
			}
		],
		"parameters": [
			{"id": 1, "name": "article_no", "type": "string"}
		],
		"styles": []
	}`)
	report, err := reportbro.NewReportFromJSON(definition, map[string]any{"article_no": "A-10234"})
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.GenerateXLSX(&buf); err != nil {
		t.Fatalf("generate xlsx: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output is not a zip archive")
	}
}

func TestVerify(t *testing.T) {
	report, err := reportbro.NewReportFromJSON(invoiceDefinition(), invoiceData())
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if err := report.Verify(); err != nil {
		t.Errorf("verify: %v", err)
	}
}
