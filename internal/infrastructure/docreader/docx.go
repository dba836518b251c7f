package docreader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// readWordDocument extracts paragraph text from a .docx archive. The format
// is a zip with the body in word/document.xml; text lives in w:t elements,
// paragraphs in w:p. No external dependency covers this format, so the
// walk is done directly over the XML token stream.
func readWordDocument(path string) string {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return readFailure(path, err)
	}
	defer archive.Close()

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return readFailure(path, fmt.Errorf("word/document.xml not found"))
	}

	rc, err := body.Open()
	if err != nil {
		return readFailure(path, err)
	}
	defer rc.Close()

	text, err := wordBodyText(rc)
	if err != nil {
		return readFailure(path, err)
	}
	return text
}

func wordBodyText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
