package resource

import "strings"

type Kind string

const (
	KindText     Kind = "text"
	KindBlob     Kind = "blob"
	KindDateTime Kind = "datetime"
)

// Field is one scalar attribute of T as edited in a form and shown in
// list and detail views.
type Field[T any] struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// Rules are extra validator tags, e.g. "max=255".
	Rules string
	// Value renders the form value.
	Value func(T) string
	// Display renders the read-only value; Value is used when nil.
	Display func(T) string
	Set     func(*T, string) error
}

// Tag is the validator tag applied to the submitted form value.
func (f Field[T]) Tag() string {
	var tags []string
	if f.Required {
		tags = append(tags, "required")
	} else if f.Rules != "" {
		tags = append(tags, "omitempty")
	}
	if f.Rules != "" {
		tags = append(tags, f.Rules)
	}
	return strings.Join(tags, ",")
}

func (f Field[T]) Show(e T) string {
	if f.Display != nil {
		return f.Display(e)
	}
	return f.Value(e)
}

func text[T any](name, label string, required bool, get func(T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Kind:     KindText,
		Required: required,
		Value:    get,
		Set: func(e *T, v string) error {
			set(e, v)
			return nil
		},
	}
}
