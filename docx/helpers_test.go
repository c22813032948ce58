package docx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

// wrapDocument wraps body content in a w:document element.
func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>` + body + `</w:body>
</w:document>`
}

// buildDOCX zips the given parts. [Content_Types].xml and _rels/.rels are
// added when missing; pass an empty string to omit one.
func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	if _, ok := parts["[Content_Types].xml"]; !ok {
		parts["[Content_Types].xml"] = testContentTypes
	}
	if _, ok := parts["_rels/.rels"]; !ok {
		parts["_rels/.rels"] = testPackageRels
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		if content == "" {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// createTestDOCX creates a minimal DOCX file for testing.
func createTestDOCX(t *testing.T, content string) string {
	t.Helper()

	data := buildDOCX(t, map[string]string{
		"word/document.xml": wrapDocument(content),
	})
	docxPath := filepath.Join(t.TempDir(), "test.docx")
	if err := os.WriteFile(docxPath, data, 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return docxPath
}

// openTestPackage opens an in-memory package built from parts.
func openTestPackage(t *testing.T, parts map[string]string) *Package {
	t.Helper()

	pkg, err := OpenBytes(buildDOCX(t, parts))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	t.Cleanup(func() { pkg.Close() })
	return pkg
}
