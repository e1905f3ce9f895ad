// Package catalog holds the immutable agent template catalog.
//
// The catalog is parsed once from the embedded templates.yaml. Tag rules are
// the ordered keyword vocabulary used by the signal extractor; their order
// fixes the order of resolved agents. Templates are keyed by ID and reachable
// by tag. Defaults are used when nothing in the input matched.
//
// Entries are never handed out directly. Every lookup returns a deep clone so
// callers may set per-workflow fields without corrupting the catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/cognifloe/control-plane/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// TagRule binds a tag to its keywords and (optionally) its agent template.
type TagRule struct {
	Tag        models.Tag `yaml:"tag" json:"tag"`
	Keywords   []string   `yaml:"keywords" json:"keywords"`
	TemplateID string     `yaml:"template,omitempty" json:"template,omitempty"`
}

// file is the on-disk shape of templates.yaml.
type file struct {
	Tags      []TagRule              `yaml:"tags"`
	Defaults  []string               `yaml:"defaults"`
	Templates []models.AgentTemplate `yaml:"templates"`
}

// Catalog is a read-only agent template catalog.
type Catalog struct {
	rules     []TagRule
	byTag     map[models.Tag]int
	templates map[string]*models.AgentTemplate
	order     []string // template IDs in file order
	defaults  []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded templates.yaml.
// It is parsed on first use and shared for the life of the process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedTemplates)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded templates.yaml is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from YAML and validates its references.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{
		byTag:     make(map[models.Tag]int, len(f.Tags)),
		templates: make(map[string]*models.AgentTemplate, len(f.Templates)),
	}

	for i := range f.Templates {
		t := f.Templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("template #%d has no id", i+1)
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.templates[t.ID] = &t
		c.order = append(c.order, t.ID)
	}

	for i, r := range f.Tags {
		if r.Tag == "" {
			return nil, fmt.Errorf("tag rule #%d has no tag", i+1)
		}
		if _, dup := c.byTag[r.Tag]; dup {
			return nil, fmt.Errorf("duplicate tag %q", r.Tag)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("tag %q has no keywords", r.Tag)
		}
		if r.TemplateID != "" {
			if _, ok := c.templates[r.TemplateID]; !ok {
				return nil, fmt.Errorf("tag %q references unknown template %q", r.Tag, r.TemplateID)
			}
		}
		c.byTag[r.Tag] = len(c.rules)
		c.rules = append(c.rules, r)
	}

	if i, ok := c.byTag[models.TagOrchestrator]; !ok || c.rules[i].TemplateID == "" {
		return nil, fmt.Errorf("catalog must define an %q tag with a template", models.TagOrchestrator)
	}

	for _, id := range f.Defaults {
		if _, ok := c.templates[id]; !ok {
			return nil, fmt.Errorf("default references unknown template %q", id)
		}
	}
	c.defaults = f.Defaults

	return c, nil
}

// Rules returns the tag rules in catalog order.
func (c *Catalog) Rules() []TagRule {
	out := make([]TagRule, len(c.rules))
	for i, r := range c.rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Tags returns the tag vocabulary in catalog order.
func (c *Catalog) Tags() []models.Tag {
	out := make([]models.Tag, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Tag
	}
	return out
}

// Template returns a clone of the template with the given ID.
func (c *Catalog) Template(id string) (*models.AgentTemplate, bool) {
	t, ok := c.templates[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// TemplateForTag returns a clone of the template bound to a tag.
// Tags without a template (or unknown tags) report false.
func (c *Catalog) TemplateForTag(tag models.Tag) (*models.AgentTemplate, bool) {
	i, ok := c.byTag[tag]
	if !ok || c.rules[i].TemplateID == "" {
		return nil, false
	}
	return c.Template(c.rules[i].TemplateID)
}

// Orchestrator returns a clone of the coordinating agent template.
func (c *Catalog) Orchestrator() *models.AgentTemplate {
	t, _ := c.TemplateForTag(models.TagOrchestrator)
	return t
}

// Defaults returns clones of the fallback templates, in order.
func (c *Catalog) Defaults() []*models.AgentTemplate {
	out := make([]*models.AgentTemplate, 0, len(c.defaults))
	for _, id := range c.defaults {
		t, _ := c.Template(id)
		out = append(out, t)
	}
	return out
}

// Templates returns clones of every template in file order.
func (c *Catalog) Templates() []*models.AgentTemplate {
	out := make([]*models.AgentTemplate, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id].Clone())
	}
	return out
}

// Count returns the number of templates.
func (c *Catalog) Count() int {
	return len(c.order)
}
