package resource

import (
	"context"

	"notebook-console/internal/domain"
	"notebook-console/internal/store"
)

// Option is one choice of a relation picker.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Relation is an optional many-to-one reference from T to another entity,
// edited through a picker holding the related record's id.
type Relation[T domain.Entity] interface {
	Name() string
	Label() string
	// Target is the resource key of the related entity, "" for users.
	Target() string
	// Selected is the picker value for e: the related id or "".
	Selected(e T) string
	// Display is the related record's label, or "" when absent.
	Display(e T) string
	Options() []Option
	// Fetch loads the related collection the picker chooses from.
	Fetch(ctx context.Context) error
	// Assign resolves value against the fetched collection; no match
	// clears the reference.
	Assign(e *T, value string)
	// Clean drops a reference whose id is blank before sending.
	Clean(e T) T
}

type relation[T, R domain.Entity] struct {
	name   string
	label  string
	target string
	source *store.Store[R]
	get    func(T) *R
	set    func(*T, *R)
}

func NewRelation[T, R domain.Entity](name, label, target string, source *store.Store[R], get func(T) *R, set func(*T, *R)) Relation[T] {
	return &relation[T, R]{
		name:   name,
		label:  label,
		target: target,
		source: source,
		get:    get,
		set:    set,
	}
}

func (r *relation[T, R]) Name() string   { return r.name }
func (r *relation[T, R]) Label() string  { return r.label }
func (r *relation[T, R]) Target() string { return r.target }

func (r *relation[T, R]) Selected(e T) string {
	return domain.RefID(r.get(e))
}

func (r *relation[T, R]) Display(e T) string {
	return domain.RefLabel(r.get(e))
}

func (r *relation[T, R]) Options() []Option {
	entities := r.source.State().Entities
	options := make([]Option, 0, len(entities))
	for _, e := range entities {
		options = append(options, Option{Value: domain.IDString(e), Label: e.DisplayLabel()})
	}
	return options
}

func (r *relation[T, R]) Fetch(ctx context.Context) error {
	_, err := r.source.FetchList(ctx, store.ListParams{})
	return err
}

func (r *relation[T, R]) Assign(e *T, value string) {
	if value == "" {
		r.set(e, nil)
		return
	}
	r.set(e, Resolve(r.source.State().Entities, value))
}

func (r *relation[T, R]) Clean(e T) T {
	ref := r.get(e)
	if ref == nil {
		return e
	}
	if id := domain.RefID(ref); id == "" || id == "-1" {
		r.set(&e, nil)
	}
	return e
}

// Resolve finds the record whose id renders as value, comparing ids as
// strings. It returns a copy, or nil when nothing matches.
func Resolve[R domain.Entity](entities []R, value string) *R {
	for _, e := range entities {
		if domain.IDString(e) == value {
			found := e
			return &found
		}
	}
	return nil
}
