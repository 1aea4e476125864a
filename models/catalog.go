// models/catalog.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CatalogPayload is the metadata mapping returned by the catalog API. Its
// shape is owned by the catalog; only a few keys are read.
type CatalogPayload map[string]any

// Field returns the value under key as a string. Missing keys, nil values and
// empty strings all count as absent.
func (p CatalogPayload) Field(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// HasError reports whether the catalog flagged this payload with an "error" key.
func (p CatalogPayload) HasError() bool {
	_, ok := p["error"]
	return ok
}

// String renders the whole payload as JSON with sorted keys so report rows are
// stable across runs.
func (p CatalogPayload) String() string {
	if p == nil {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // descriptions carry HTML and ampersands
	if err := enc.Encode(map[string]any(p)); err != nil {
		return fmt.Sprintf("%v", map[string]any(p))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// CatalogLookupResult is what a catalog lookup produced: a payload (nil when
// nothing came back) plus any diagnostic text emitted along the way.
type CatalogLookupResult struct {
	Payload    CatalogPayload
	Diagnostic string
}

// CatalogMetadata is the normalized view of a catalog lookup. It is always
// fully populated; failed lookups fall back to defaults.
type CatalogMetadata struct {
	Name        string
	Homepage    string
	Description string
	RawMetadata string
}

func DefaultCatalogMetadata() CatalogMetadata {
	return CatalogMetadata{Name: DefaultDatasetName}
}

// HasHomepage reports whether the catalog supplied a homepage URL worth
// querying the archive for.
func (m CatalogMetadata) HasHomepage() bool {
	return strings.TrimSpace(m.Homepage) != ""
}
