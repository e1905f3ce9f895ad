// Package resolver turns matched tags into the ordered list of agent
// instances proposed for a workflow.
//
// Rules, applied in order:
//  1. For each matched tag in catalog order, append a clone of its template.
//     Tags without a template are skipped.
//  2. If two or more agents resolved and the orchestrator tag was not
//     matched, append a clone of the orchestrator template.
//  3. If nothing resolved, append the catalog's default templates instead.
//
// Resolution is deterministic and every returned instance is a fresh deep
// clone, so callers may mutate status and confidence freely.
package resolver

import (
	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/pkg/models"
)

// Resolver resolves tags against a template catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve returns the agent instances for a tag set. The input order is not
// significant; output follows catalog order. Unknown tags are ignored.
func (r *Resolver) Resolve(tags []models.Tag) []*models.AgentTemplate {
	matched := make(map[models.Tag]bool, len(tags))
	for _, t := range tags {
		matched[t] = true
	}

	agents := make([]*models.AgentTemplate, 0, len(tags)+1)
	for _, tag := range r.catalog.Tags() {
		if !matched[tag] {
			continue
		}
		tpl, ok := r.catalog.TemplateForTag(tag)
		if !ok {
			continue
		}
		agents = append(agents, tpl)
	}

	if len(agents) >= 2 && !matched[models.TagOrchestrator] {
		agents = append(agents, r.catalog.Orchestrator())
	}

	if len(agents) == 0 {
		agents = append(agents, r.catalog.Defaults()...)
	}

	return agents
}
