package docx

import (
	"errors"
	"testing"
	"time"
)

func TestOpenFile(t *testing.T) {
	docxPath := createTestDOCX(t, `<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`)

	pkg, err := OpenFile(docxPath)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer pkg.Close()

	if pkg.MainPart() != "word/document.xml" {
		t.Errorf("MainPart() = %q, want %q", pkg.MainPart(), "word/document.xml")
	}
	if pkg.Size() <= 0 {
		t.Errorf("Size() = %d, want > 0", pkg.Size())
	}

	if err := pkg.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := pkg.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		if _, err := OpenBytes([]byte("plain text")); err == nil {
			t.Error("OpenBytes() should fail for non-zip data")
		}
	})

	t.Run("missing content types", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"[Content_Types].xml": "",
			"word/document.xml":   wrapDocument(""),
		})
		_, err := OpenBytes(data)
		if !errors.Is(err, ErrMissingContentTypes) {
			t.Errorf("error = %v, want ErrMissingContentTypes", err)
		}
	})

	t.Run("missing main part", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"word/other.xml": wrapDocument(""),
		})
		_, err := OpenBytes(data)
		if !errors.Is(err, ErrMissingMainPart) {
			t.Errorf("error = %v, want ErrMissingMainPart", err)
		}
	})
}

func TestMainPartFromRelationships(t *testing.T) {
	pkg := openTestPackage(t, map[string]string{
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/word/document2.xml"/>
</Relationships>`,
		"word/document2.xml": wrapDocument(""),
	})

	if pkg.MainPart() != "word/document2.xml" {
		t.Errorf("MainPart() = %q, want %q", pkg.MainPart(), "word/document2.xml")
	}
}

func TestPartAccess(t *testing.T) {
	pkg := openTestPackage(t, map[string]string{
		"word/document.xml":   wrapDocument(""),
		"word/media/img1.png": "PNGDATA",
		"word/media/a.bin":    "12",
	})

	if !pkg.Has("word/media/img1.png") || !pkg.Has("/word/media/img1.png") {
		t.Error("Has() should find the image with and without a leading slash")
	}

	data, err := pkg.Part("word/media/img1.png")
	if err != nil || string(data) != "PNGDATA" {
		t.Errorf("Part() = %q, %v", data, err)
	}

	if _, err := pkg.Part("word/missing.xml"); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("Part(missing) error = %v, want ErrPartNotFound", err)
	}

	if size, ok := pkg.PartSize("word/media/img1.png"); !ok || size != 7 {
		t.Errorf("PartSize() = %d, %v, want 7, true", size, ok)
	}
	if _, ok := pkg.PartSize("nope"); ok {
		t.Error("PartSize(nope) should report false")
	}

	tests := []struct {
		part string
		want string
	}{
		{"word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{"word/media/img1.png", "image/png"},
		{"word/media/IMG2.PNG", "image/png"},
		{"word/media/a.bin", ""},
	}
	for _, tt := range tests {
		if got := pkg.ContentType(tt.part); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

func TestRelationships(t *testing.T) {
	pkg := openTestPackage(t, map[string]string{
		"word/document.xml": wrapDocument(""),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
  <Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>
  <Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject" Target="../embeddings/obj.bin"/>
  <Relationship Id="rId8" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
</Relationships>`,
		"word/header1.xml": `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`,
	})

	rels, err := pkg.Relationships(pkg.MainPart())
	if err != nil {
		t.Fatalf("Relationships() error = %v", err)
	}
	if rels.Len() != 4 {
		t.Errorf("Len() = %d, want 4", rels.Len())
	}

	tests := []struct {
		id       string
		part     string
		external bool
	}{
		{"rId5", "word/media/image1.png", false},
		{"rId6", "", true},
		{"rId7", "embeddings/obj.bin", false},
	}
	for _, tt := range tests {
		rel, ok := rels.Lookup(tt.id)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.id)
			continue
		}
		if rel.Part != tt.part || rel.External != tt.external {
			t.Errorf("Lookup(%q) = %+v, want part %q external %v", tt.id, rel, tt.part, tt.external)
		}
	}

	if _, ok := rels.Lookup("rId99"); ok {
		t.Error("Lookup(rId99) should not be found")
	}

	again, _ := pkg.Relationships("word/document.xml")
	if again != rels {
		t.Error("Relationships() should be cached per part")
	}

	parts := pkg.HeaderFooterParts()
	if len(parts) != 1 || parts[0] != "word/header1.xml" {
		t.Errorf("HeaderFooterParts() = %v, want [word/header1.xml]", parts)
	}

	none, err := pkg.Relationships("word/header1.xml")
	if err != nil || none.Len() != 0 {
		t.Errorf("Relationships(header) = %d, %v, want empty table", none.Len(), err)
	}
}

func TestProperties(t *testing.T) {
	pkg := openTestPackage(t, map[string]string{
		"word/document.xml": wrapDocument(""),
		"docProps/core.xml": `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Quarterly Report</dc:title>
  <dc:creator>Jane Doe</dc:creator>
  <cp:keywords>finance, q3</cp:keywords>
  <cp:revision>4</cp:revision>
  <dcterms:created>2024-03-01T10:00:00Z</dcterms:created>
  <dcterms:modified>bogus</dcterms:modified>
</cp:coreProperties>`,
		"docProps/app.xml": `<?xml version="1.0" encoding="UTF-8"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>Microsoft Office Word</Application>
  <Company>Acme</Company>
</Properties>`,
	})

	core, err := pkg.CoreProperties()
	if err != nil {
		t.Fatalf("CoreProperties() error = %v", err)
	}
	if core.Title != "Quarterly Report" || core.Creator != "Jane Doe" || core.Revision != "4" {
		t.Errorf("CoreProperties() = %+v", core)
	}
	if core.Keywords != "finance, q3" {
		t.Errorf("Keywords = %q", core.Keywords)
	}
	if !core.Created.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Created = %v", core.Created)
	}
	if !core.Modified.IsZero() {
		t.Errorf("Modified = %v, want zero for an unparseable date", core.Modified)
	}

	app, err := pkg.AppProperties()
	if err != nil {
		t.Fatalf("AppProperties() error = %v", err)
	}
	if app.Application != "Microsoft Office Word" || app.Company != "Acme" {
		t.Errorf("AppProperties() = %+v", app)
	}
}

func TestPropertiesMissing(t *testing.T) {
	pkg := openTestPackage(t, map[string]string{"word/document.xml": wrapDocument("")})

	core, err := pkg.CoreProperties()
	if err != nil || core.Title != "" {
		t.Errorf("CoreProperties() = %+v, %v, want zero value", core, err)
	}
	app, err := pkg.AppProperties()
	if err != nil || app.Application != "" {
		t.Errorf("AppProperties() = %+v, %v, want zero value", app, err)
	}
}
