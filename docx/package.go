// Package docx provides access to the parts of a DOCX (Office Open XML)
// package: the zip container, content types, relationship tables, styles,
// numbering, document properties and a streaming reader over the main
// document body.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// Errors returned when opening a package.
var (
	ErrMissingContentTypes = errors.New("missing required part [Content_Types].xml")
	ErrMissingMainPart     = errors.New("missing main document part")
	ErrPartNotFound        = errors.New("part not found")
)

const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
	defaultMainPart  = "word/document.xml"

	relTypeOfficeDocument = "/officeDocument"
	relTypeStyles         = "/styles"
	relTypeNumbering      = "/numbering"
	relTypeHeader         = "/header"
	relTypeFooter         = "/footer"
	relTypeCore           = "/core-properties"
	relTypeExtended       = "/extended-properties"
)

// Package provides access to the parts of an opened DOCX package.
type Package struct {
	closer    io.Closer
	zr        *zip.Reader
	files     map[string]*zip.File
	size      int64
	overrides map[string]string
	defaults  map[string]string
	mainPart  string
	rels      map[string]*Relationships
}

// OpenFile opens a DOCX file for reading.
func OpenFile(filename string) (*Package, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	var size int64
	if fi, err := os.Stat(filename); err == nil {
		size = fi.Size()
	}

	p, err := newPackage(&zr.Reader, size)
	if err != nil {
		zr.Close()
		return nil, err
	}
	p.closer = zr
	return p, nil
}

// OpenBytes opens a DOCX package held in memory.
func OpenBytes(data []byte) (*Package, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader opens a DOCX package from r, which holds size bytes.
func OpenReader(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newPackage(zr, size)
}

func newPackage(zr *zip.Reader, size int64) (*Package, error) {
	p := &Package{
		zr:        zr,
		files:     make(map[string]*zip.File, len(zr.File)),
		size:      size,
		overrides: make(map[string]string),
		defaults:  make(map[string]string),
		rels:      make(map[string]*Relationships),
	}
	for _, f := range zr.File {
		p.files[strings.TrimPrefix(f.Name, "/")] = f
	}

	if !p.Has(contentTypesPart) {
		return nil, ErrMissingContentTypes
	}
	if err := p.parseContentTypes(); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}

	main, err := p.locateMainPart()
	if err != nil {
		return nil, err
	}
	p.mainPart = main
	return p, nil
}

// Close releases the underlying file handle. It is safe to call more than
// once.
func (p *Package) Close() error {
	if p.closer != nil {
		err := p.closer.Close()
		p.closer = nil
		return err
	}
	return nil
}

// Size returns the byte size of the package as opened.
func (p *Package) Size() int64 {
	return p.size
}

// MainPart returns the name of the main document part.
func (p *Package) MainPart() string {
	return p.mainPart
}

// Has reports whether the package contains a part with the given name.
func (p *Package) Has(name string) bool {
	_, ok := p.files[strings.TrimPrefix(name, "/")]
	return ok
}

// Parts returns the names of all parts in the package, sorted.
func (p *Package) Parts() []string {
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenPart returns a reader over the uncompressed content of a part.
func (p *Package) OpenPart(name string) (io.ReadCloser, error) {
	f, ok := p.files[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPartNotFound)
	}
	return f.Open()
}

// Part reads the content of a part.
func (p *Package) Part(name string) ([]byte, error) {
	rc, err := p.OpenPart(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// PartSize returns the uncompressed size of a part.
func (p *Package) PartSize(name string) (int64, bool) {
	f, ok := p.files[strings.TrimPrefix(name, "/")]
	if !ok {
		return 0, false
	}
	return int64(f.UncompressedSize64), true
}

// ContentType returns the declared content type of a part: an Override entry
// when present, otherwise the Default entry for its extension.
func (p *Package) ContentType(name string) string {
	name = strings.TrimPrefix(name, "/")
	if ct, ok := p.overrides[strings.ToLower(name)]; ok {
		return ct
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	return p.defaults[ext]
}

func (p *Package) parseContentTypes() error {
	data, err := p.Part(contentTypesPart)
	if err != nil {
		return err
	}
	var types contentTypesXML
	if err := xml.Unmarshal(data, &types); err != nil {
		return err
	}
	for _, d := range types.Defaults {
		p.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range types.Overrides {
		p.overrides[strings.ToLower(strings.TrimPrefix(o.PartName, "/"))] = o.ContentType
	}
	return nil
}

// locateMainPart follows the package-level officeDocument relationship,
// falling back to word/document.xml.
func (p *Package) locateMainPart() (string, error) {
	main := defaultMainPart
	if p.Has(packageRelsPart) {
		rels, err := p.Relationships("")
		if err != nil {
			return "", fmt.Errorf("parsing package relationships: %w", err)
		}
		if rel, ok := rels.FirstOfType(relTypeOfficeDocument); ok && !rel.External {
			main = rel.Part
		}
	}
	if !p.Has(main) {
		return "", fmt.Errorf("%s: %w", main, ErrMissingMainPart)
	}
	return main, nil
}

// Relationships returns the relationship table of a part. The empty name
// selects the package-level table in _rels/.rels. A part without a
// relationships part has an empty table.
func (p *Package) Relationships(part string) (*Relationships, error) {
	part = strings.TrimPrefix(part, "/")
	if rels, ok := p.rels[part]; ok {
		return rels, nil
	}

	relsPart := relsPartName(part)
	rels := newRelationships(part)
	if p.Has(relsPart) {
		data, err := p.Part(relsPart)
		if err != nil {
			return nil, err
		}
		var x relationshipsXML
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fmt.Errorf("%s: %w", relsPart, err)
		}
		for _, r := range x.Relationships {
			rels.add(r)
		}
	}
	p.rels[part] = rels
	return rels, nil
}

// relsPartName maps word/document.xml to word/_rels/document.xml.rels.
func relsPartName(part string) string {
	if part == "" {
		return packageRelsPart
	}
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// relatedPart returns the target part of the first main-document relationship
// of the given type, or fallback when there is none.
func (p *Package) relatedPart(relType, fallback string) string {
	rels, err := p.Relationships(p.mainPart)
	if err == nil {
		if rel, ok := rels.FirstOfType(relType); ok && !rel.External {
			return rel.Part
		}
	}
	return fallback
}

// StyleResolver parses the styles part. A package without one yields an
// empty resolver and no error. When the part is malformed the empty resolver
// is returned together with the error.
func (p *Package) StyleResolver() (*StyleResolver, error) {
	name := p.relatedPart(relTypeStyles, "word/styles.xml")
	if !p.Has(name) {
		return NewStyleResolver(nil), nil
	}
	data, err := p.Part(name)
	if err != nil {
		return NewStyleResolver(nil), err
	}
	styles := &stylesXML{}
	if err := xml.Unmarshal(data, styles); err != nil {
		return NewStyleResolver(nil), fmt.Errorf("%s: %w", name, err)
	}
	return NewStyleResolver(styles), nil
}

// NumberingResolver parses the numbering part, with the same conventions as
// StyleResolver.
func (p *Package) NumberingResolver() (*NumberingResolver, error) {
	name := p.relatedPart(relTypeNumbering, "word/numbering.xml")
	if !p.Has(name) {
		return NewNumberingResolver(nil), nil
	}
	data, err := p.Part(name)
	if err != nil {
		return NewNumberingResolver(nil), err
	}
	numbering := &numberingXML{}
	if err := xml.Unmarshal(data, numbering); err != nil {
		return NewNumberingResolver(nil), fmt.Errorf("%s: %w", name, err)
	}
	return NewNumberingResolver(numbering), nil
}

// HeaderFooterParts returns the header and footer parts referenced by the
// main document, in relationship order.
func (p *Package) HeaderFooterParts() []string {
	rels, err := p.Relationships(p.mainPart)
	if err != nil {
		return nil
	}
	var parts []string
	seen := make(map[string]bool)
	for _, rel := range rels.All() {
		if rel.External || seen[rel.Part] {
			continue
		}
		if !strings.HasSuffix(rel.Type, relTypeHeader) && !strings.HasSuffix(rel.Type, relTypeFooter) {
			continue
		}
		if p.Has(rel.Part) {
			seen[rel.Part] = true
			parts = append(parts, rel.Part)
		}
	}
	return parts
}
