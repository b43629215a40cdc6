// Package resource describes each entity declaratively (scalar fields and
// relations) so one set of views, handlers and commands serves all of them.
package resource

import (
	"context"
	"fmt"

	"notebook-console/internal/domain"
	"notebook-console/internal/store"
)

type Resource[T domain.Entity] struct {
	// Key is the route segment and store name, e.g. "note-book".
	Key       string
	Title     string
	Plural    string
	Store     *store.Store[T]
	Fields    []Field[T]
	Relations []Relation[T]
	SetID     func(*T, *domain.ID)
}

// Clean prepares e for sending: relations without an id are dropped.
func (r *Resource[T]) Clean(e T) T {
	return cleanWith(r.Relations)(e)
}

func cleanWith[T domain.Entity](relations []Relation[T]) func(T) T {
	return func(e T) T {
		for _, rel := range relations {
			e = rel.Clean(e)
		}
		return e
	}
}

func (r *Resource[T]) Field(name string) (Field[T], bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

func (r *Resource[T]) Relation(name string) (Relation[T], bool) {
	for _, rel := range r.Relations {
		if rel.Name() == name {
			return rel, true
		}
	}
	return nil, false
}

// Apply writes submitted values onto e. Only keys present in values are
// touched; relation values are resolved against the fetched collections.
func (r *Resource[T]) Apply(e *T, values map[string]string) error {
	for _, f := range r.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := f.Set(e, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", f.Name, err)
		}
	}
	for _, rel := range r.Relations {
		if v, ok := values[rel.Name()]; ok {
			rel.Assign(e, v)
		}
	}
	return nil
}

// Values is the inverse of Apply: form values for e.
func (r *Resource[T]) Values(e T) map[string]string {
	values := make(map[string]string, len(r.Fields)+len(r.Relations))
	for _, f := range r.Fields {
		values[f.Name] = f.Value(e)
	}
	for _, rel := range r.Relations {
		values[rel.Name()] = rel.Selected(e)
	}
	return values
}

// FetchRelated loads every collection the relation pickers choose from.
// All fetches are attempted; the first error is returned.
func (r *Resource[T]) FetchRelated(ctx context.Context) error {
	var firstErr error
	for _, rel := range r.Relations {
		if err := rel.Fetch(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to fetch %s options: %w", rel.Name(), err)
		}
	}
	return firstErr
}

// Paths of the entity's client routes.
func (r *Resource[T]) ListPath() string           { return "/" + r.Key }
func (r *Resource[T]) NewPath() string            { return "/" + r.Key + "/new" }
func (r *Resource[T]) RefreshPath() string        { return "/" + r.Key + "/refresh" }
func (r *Resource[T]) DetailPath(id string) string { return "/" + r.Key + "/" + id }
func (r *Resource[T]) EditPath(id string) string   { return "/" + r.Key + "/" + id + "/edit" }
func (r *Resource[T]) DeletePath(id string) string { return "/" + r.Key + "/" + id + "/delete" }
