// Package docload turns an uploaded statement file into raw material for
// the transaction parser: plain text for PDFs, records for CSVs.
//
// Text extraction itself is delegated to github.com/ledongthuc/pdf; a PDF
// without a text layer (a scanned image) is reported as ErrNoTextLayer.
package docload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

type (
	// Format is the declared or detected document format.
	Format string

	// Document holds the raw extraction output of one uploaded file.
	// Exactly one of Text (PDF) or Rows (CSV) is populated.
	Document struct {
		SourceFile string
		Format     Format
		Text       string
		Rows       [][]string
	}
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoTextLayer       = errors.New("no extractable text layer")
)

// DetectFormat decides the document format from the file name and content.
// The %PDF magic wins over the extension so a mislabeled upload still
// routes correctly.
func DetectFormat(filename string, data []byte) (Format, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return FormatPDF, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Load extracts the raw content of an uploaded file.
func Load(filename string, data []byte) (*Document, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	doc := &Document{SourceFile: filepath.Base(filename), Format: format}

	switch format {
	case FormatPDF:
		text, err := extractPDFText(data)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	case FormatCSV:
		rows, err := readCSV(data)
		if err != nil {
			return nil, err
		}
		doc.Rows = rows
	}

	return doc, nil
}

// extractPDFText pulls the text layer out of a PDF, page by page.
func extractPDFText(data []byte) (text string, err error) {
	// The pdf library panics on some malformed files; treat that the
	// same as a missing text layer.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrNoTextLayer, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoTextLayer, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole
			// statement.
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrNoTextLayer
	}
	return sb.String(), nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return rows, nil
}
