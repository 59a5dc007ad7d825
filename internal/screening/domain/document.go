package domain

import (
	"path/filepath"
	"strings"
)

// Supported document format tags.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatTXT  = "txt"
)

// RawDocument is an uploaded resume before text extraction. It is transient
// and never persisted beyond the processing pass.
type RawDocument struct {
	Filename string
	Content  []byte
	Format   string
}

// FormatFromFilename maps a filename extension to a format tag. The second
// return value is false for extensions outside the supported set.
func FormatFromFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt":
		return FormatTXT, true
	default:
		return "", false
	}
}
