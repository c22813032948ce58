package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// CoreProperties holds the Dublin Core metadata from docProps/core.xml.
type CoreProperties struct {
	Title          string
	Subject        string
	Creator        string
	Keywords       string
	Description    string
	LastModifiedBy string
	Revision       string
	Category       string
	Created        time.Time
	Modified       time.Time
}

// AppProperties holds the extended properties from docProps/app.xml.
type AppProperties struct {
	Application string
	AppVersion  string
	Company     string
	Template    string
	Pages       string
	Words       string
}

// CoreProperties parses the core properties part. A package without one
// returns zero values and no error.
func (p *Package) CoreProperties() (CoreProperties, error) {
	var props CoreProperties
	name := p.packagePart(relTypeCore, "docProps/core.xml")
	if !p.Has(name) {
		return props, nil
	}
	data, err := p.Part(name)
	if err != nil {
		return props, err
	}

	var x corePropertiesXML
	if err := xml.Unmarshal(data, &x); err != nil {
		return props, fmt.Errorf("%s: %w", name, err)
	}
	props = CoreProperties{
		Title:          strings.TrimSpace(x.Title),
		Subject:        strings.TrimSpace(x.Subject),
		Creator:        strings.TrimSpace(x.Creator),
		Keywords:       strings.TrimSpace(x.Keywords),
		Description:    strings.TrimSpace(x.Description),
		LastModifiedBy: strings.TrimSpace(x.LastModifiedBy),
		Revision:       strings.TrimSpace(x.Revision),
		Category:       strings.TrimSpace(x.Category),
		Created:        parseW3CDate(x.Created),
		Modified:       parseW3CDate(x.Modified),
	}
	return props, nil
}

// AppProperties parses the extended properties part.
func (p *Package) AppProperties() (AppProperties, error) {
	var props AppProperties
	name := p.packagePart(relTypeExtended, "docProps/app.xml")
	if !p.Has(name) {
		return props, nil
	}
	data, err := p.Part(name)
	if err != nil {
		return props, err
	}

	var x appPropertiesXML
	if err := xml.Unmarshal(data, &x); err != nil {
		return props, fmt.Errorf("%s: %w", name, err)
	}
	return AppProperties{
		Application: strings.TrimSpace(x.Application),
		AppVersion:  strings.TrimSpace(x.AppVersion),
		Company:     strings.TrimSpace(x.Company),
		Template:    strings.TrimSpace(x.Template),
		Pages:       strings.TrimSpace(x.Pages),
		Words:       strings.TrimSpace(x.Words),
	}, nil
}

// packagePart resolves a package-level relationship by type.
func (p *Package) packagePart(relType, fallback string) string {
	rels, err := p.Relationships("")
	if err == nil {
		if rel, ok := rels.FirstOfType(relType); ok && !rel.External {
			return rel.Part
		}
	}
	return fallback
}

// parseW3CDate parses the dcterms:W3CDTF timestamps used by core.xml.
func parseW3CDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
