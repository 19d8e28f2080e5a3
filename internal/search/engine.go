// Package search builds federated intern queries for free-text search and attribute filters.
package search

import (
	"context"
	"strings"

	"github.com/Sanjit42/naming-service/internal/domain"
)

// Filters maps filter field names to the value an intern must equal.
type Filters map[string]string

// Engine compiles search terms and filters into a domain.Query and runs it on a Finder.
type Engine struct {
	finder domain.Finder
}

// NewEngine creates an engine backed by f.
func NewEngine(f domain.Finder) *Engine {
	return &Engine{finder: f}
}

// BuildQuery returns the query for term and filters.
//
// Every search field is compared with Contains against term; an empty term adds
// no condition. Each non-blank filter adds an Equals predicate that must hold.
// Unknown filter names fail with domain.ErrUnknownFilter.
func BuildQuery(term string, filters Filters) (domain.Query, error) {
	var q domain.Query

	if term != "" {
		for _, f := range domain.SearchFields {
			q.AnyOf = append(q.AnyOf, domain.Predicate{Field: f, Comparison: domain.Contains, Value: term})
		}
	}

	for name := range filters {
		if _, err := domain.ParseField(name); err != nil {
			return domain.Query{}, err
		}
	}
	for _, f := range domain.FilterFields {
		value := strings.TrimSpace(filters[string(f)])
		if value == "" {
			continue
		}
		q.AllOf = append(q.AllOf, domain.Predicate{Field: f, Comparison: domain.Equals, Value: value})
	}
	return q, nil
}

// Search returns every intern with at least one search field containing term.
func (e *Engine) Search(ctx context.Context, term string) ([]domain.Intern, error) {
	return e.Query(ctx, term, nil)
}

// Filter returns the interns matching every non-blank filter.
func (e *Engine) Filter(ctx context.Context, filters Filters) ([]domain.Intern, error) {
	return e.Query(ctx, "", filters)
}

// Query combines a search term with filters. Results are distinct and ordered by id.
func (e *Engine) Query(ctx context.Context, term string, filters Filters) ([]domain.Intern, error) {
	q, err := BuildQuery(term, filters)
	if err != nil {
		return nil, err
	}
	return e.finder.Find(ctx, q)
}
