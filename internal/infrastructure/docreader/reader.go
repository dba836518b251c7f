// Package docreader extracts plain text from uploaded case documents.
//
// Every entry point honors the same contract: content problems are converted
// to sentinel text embedded in the returned string, never an error. Later
// pipeline stages treat the output as opaque text, so a broken document shows
// up as absent evidence downstream rather than an aborted run.
package docreader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

type Reader struct {
	ocrBinary string
}

func New(ocrBinary string) *Reader {
	if ocrBinary == "" {
		ocrBinary = "tesseract"
	}
	return &Reader{ocrBinary: ocrBinary}
}

// Read routes by file extension. Unknown extensions yield an unsupported
// sentinel instead of failing the caller.
func (r *Reader) Read(_ context.Context, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return readPDF(path)
	case ".docx":
		return readWordDocument(path)
	case ".xlsx":
		return readWorkbook(path)
	case ".txt":
		return readPlainText(path)
	default:
		return fmt.Sprintf("Unsupported file type: %s", ext)
	}
}

func readPDF(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return readFailure(path, err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return readFailure(path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return readFailure(path, err)
	}
	return buf.String()
}

// readWorkbook concatenates all sheets, each prefixed with a sheet-name
// header line, tab-separating cells within a row.
func readWorkbook(path string) string {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return readFailure(path, err)
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return readFailure(path, err)
		}
		sb.WriteString(fmt.Sprintf("--- Sheet: %s ---\n", sheet))
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func readPlainText(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return readFailure(path, err)
	}
	return string(raw)
}

func readFailure(path string, err error) string {
	return fmt.Sprintf("Error reading file %s: %v", filepath.Base(path), err)
}
