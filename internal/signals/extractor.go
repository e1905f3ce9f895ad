// Package signals turns a free-text process description and uploaded file
// metadata into the set of matched catalog tags.
//
// Matching is literal, case-insensitive substring containment. It is not
// word-boundary aware: "scheduled" matches the "schedule" keyword.
package signals

import (
	"path/filepath"
	"strings"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/pkg/models"
)

var documentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// Extractor matches text against a catalog's tag vocabulary.
type Extractor struct {
	rules []catalog.TagRule
}

// NewExtractor creates an extractor over the catalog's tag rules.
func NewExtractor(c *catalog.Catalog) *Extractor {
	return &Extractor{rules: c.Rules()}
}

// Extract returns the matched tags in catalog order. File-derived tags
// (document for PDFs and images, data for CSVs) are placed at their catalog
// position too. Empty input yields an empty, non-nil slice.
func (e *Extractor) Extract(text string, files []models.FileDescriptor) []models.Tag {
	lower := strings.ToLower(text)

	matched := make(map[models.Tag]bool)
	for _, r := range e.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				matched[r.Tag] = true
				break
			}
		}
	}

	for _, f := range files {
		if IsDocument(f) {
			matched[models.TagDocument] = true
		}
		if IsCSV(f) {
			matched[models.TagData] = true
		}
	}

	tags := make([]models.Tag, 0, len(matched))
	for _, r := range e.rules {
		if matched[r.Tag] {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// Contains reports whether any keyword is a substring of the lower-cased text.
func Contains(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsDocument reports whether a file is a PDF or an image, by extension or
// declared media type.
func IsDocument(f models.FileDescriptor) bool {
	if documentExtensions[strings.ToLower(filepath.Ext(f.Name))] {
		return true
	}
	mt := strings.ToLower(f.Type)
	return mt == "application/pdf" || strings.HasPrefix(mt, "image/")
}

// IsCSV reports whether a file has a .csv extension.
func IsCSV(f models.FileDescriptor) bool {
	return strings.EqualFold(filepath.Ext(f.Name), ".csv")
}
