package docload

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		data     []byte
		want     Format
		ok       bool
	}{
		{"pdf extension", "statement.pdf", []byte("anything"), FormatPDF, true},
		{"csv extension", "jan.CSV", []byte("a,b"), FormatCSV, true},
		{"pdf magic wins over csv extension", "mislabeled.csv", []byte("%PDF-1.7 ..."), FormatPDF, true},
		{"no extension with magic", "upload", []byte("%PDF-1.4"), FormatPDF, true},
		{"unknown", "notes.txt", []byte("hello"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat(tc.filename, tc.data)
			if tc.ok {
				if err != nil || got != tc.want {
					t.Fatalf("expected %s, got %s (err=%v)", tc.want, got, err)
				}
				return
			}
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	data := []byte("2024-01-05,debit,Swiggy Order,450.00\n2024-01-06, credit, Rahul,1200\n")
	doc, err := Load("path/to/jan.csv", data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatCSV {
		t.Fatalf("format: %s", doc.Format)
	}
	if doc.SourceFile != "jan.csv" {
		t.Fatalf("source file not basename: %s", doc.SourceFile)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("rows: %d", len(doc.Rows))
	}
	// leading space trimmed
	if doc.Rows[1][1] != "credit" {
		t.Fatalf("row field: %q", doc.Rows[1][1])
	}
	if doc.Text != "" {
		t.Fatal("Text should be empty for CSV")
	}
}

func TestLoadCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\nd,e\n")
	doc, err := Load("x.csv", data)
	if err != nil {
		t.Fatalf("ragged rows should load: %v", err)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("rows: %d", len(doc.Rows))
	}
}

func TestLoadPDFWithoutTextLayer(t *testing.T) {
	// Not a readable PDF body despite the magic prefix.
	_, err := Load("scan.pdf", []byte("%PDF-1.4 garbage"))
	if !errors.Is(err, ErrNoTextLayer) {
		t.Fatalf("expected ErrNoTextLayer, got %v", err)
	}
}
