// Package format identifies office document formats so that callers can
// reject inputs that are not word-processing packages before parsing them.
package format

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format represents a document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word document, including macro-enabled
	// documents and templates.
	DOCX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) presentation.
	PPTX
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case ODT:
		return "ODT"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case ODT:
		return ".odt"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx", ".docm", ".dotx", ".dotm":
		return DOCX
	case ".odt":
		return ODT
	case ".xlsx", ".xlsm":
		return XLSX
	case ".pptx", ".pptm":
		return PPTX
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// IsTemporary reports whether filename is an editor lock or owner file,
// such as "~$report.docx", rather than a real document.
func IsTemporary(filename string) bool {
	base := filepath.Base(filename)
	return strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~lock.")
}

// FromContentType maps the content type of a package's main part to a
// format.
func FromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "wordprocessingml"), strings.Contains(ct, "ms-word"):
		return DOCX
	case strings.Contains(ct, "spreadsheetml"), strings.Contains(ct, "ms-excel"):
		return XLSX
	case strings.Contains(ct, "presentationml"), strings.Contains(ct, "ms-powerpoint"):
		return PPTX
	case strings.Contains(ct, "opendocument.text"):
		return ODT
	case ct == "application/pdf":
		return PDF
	default:
		return Unknown
	}
}

// DetectFromMagic determines the format from leading bytes. Zip archives
// whose type cannot be told from the header alone are Unknown; use
// DetectFromReader for those.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}
	return FromContentType(mimetype.Detect(data).String())
}

// DetectFromReader inspects the content to determine format. It can
// distinguish between the zip-based formats (DOCX, XLSX, PPTX, ODT) by
// looking at the archive's entries.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, 3072)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if f := FromContentType(mt.String()); f != Unknown {
		return f, nil
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return detectZIPFormat(r, size)
		}
	}
	return Unknown, nil
}

// detectZIPFormat inspects a ZIP archive to determine if it's DOCX, XLSX, PPTX, ODT, etc.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	// Check for OpenDocument Format first (has mimetype file at the start)
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err == nil {
				data := make([]byte, 256)
				n, _ := rc.Read(data)
				rc.Close()
				if strings.Contains(string(data[:n]), "application/vnd.oasis.opendocument.text") {
					return ODT, nil
				}
			}
		}
	}

	// Check for Office Open XML markers
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			continue
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}

	return Unknown, nil
}
