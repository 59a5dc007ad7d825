// Package extractor converts raw resume documents into plain text.
// Only text is extracted; tables and images are skipped, never OCR'd.
package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// Extract returns the plain text of a document. It fails with
// domain.ErrUnsupportedFormat for an unknown format tag and with
// domain.ErrExtractionFailed for corrupt, empty, or unreadable content.
// An empty string for a technically valid but content-free document is not
// an error.
func Extract(doc domain.RawDocument) (string, error) {
	if len(doc.Content) == 0 {
		return "", fmt.Errorf("%w: %s has no content", domain.ErrExtractionFailed, doc.Filename)
	}

	switch doc.Format {
	case domain.FormatPDF:
		return extractPDF(doc.Content)
	case domain.FormatDOCX:
		return extractDOCX(doc.Content)
	case domain.FormatTXT:
		return strings.ToValidUTF8(string(doc.Content), ""), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, doc.Format)
	}
}

// extractPDF pulls text content out of a PDF. The pdf library panics on some
// malformed files, so the panic is converted into an extraction error.
func extractPDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	return buf.String(), nil
}

// extractDOCX reads word/document.xml from the docx container and collects
// the text runs, one line per paragraph.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx container: %v", domain.ErrExtractionFailed, err)
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("%w: docx missing word/document.xml", domain.ErrExtractionFailed)
	}
	defer docXML.Close()

	var (
		sb     strings.Builder
		inText bool
	)
	decoder := xml.NewDecoder(docXML)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed document.xml: %v", domain.ErrExtractionFailed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
