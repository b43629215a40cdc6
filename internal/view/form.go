package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notebook-console/internal/domain"
	"notebook-console/internal/resource"

	"github.com/go-playground/validator/v10"
)

var validationMessages = map[string]string{
	"required": "This field is required.",
	"datetime": "This field should be a date and time.",
	"max":      "This field is too long.",
	"min":      "This field is too short.",
}

type FormOptions struct {
	Location *time.Location
	Now      func() time.Time
	Validate *validator.Validate
}

type FormField struct {
	Name     string
	Label    string
	Kind     resource.Kind
	Required bool
	Value    string
	Error    string
}

type FormRelation struct {
	Name     string
	Label    string
	Selected string
	Options  []resource.Option
}

type FormModel struct {
	Key          string
	Title        string
	IsNew        bool
	ID           string
	Action       string
	Fields       []FormField
	Relations    []FormRelation
	Loading      bool
	SaveDisabled bool
	ListPath     string
	ErrorMessage string
}

// Form creates a record when built without an id and edits one otherwise.
type Form[T domain.Entity] struct {
	res      *resource.Resource[T]
	id       domain.ID
	isNew    bool
	loc      *time.Location
	now      func() time.Time
	validate *validator.Validate

	// submitted is set once this form has dispatched a write.
	submitted bool
}

func NewForm[T domain.Entity](res *resource.Resource[T], id domain.ID, opts FormOptions) *Form[T] {
	f := &Form[T]{
		res:      res,
		id:       id,
		isNew:    id == "",
		loc:      opts.Location,
		now:      opts.Now,
		validate: opts.Validate,
	}
	if f.loc == nil {
		f.loc = time.Local
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.validate == nil {
		f.validate = validator.New()
	}
	return f
}

func (f *Form[T]) IsNew() bool {
	return f.isNew
}

// Mount clears the store for a new record or loads the edited one, then
// loads every collection the relation pickers need.
func (f *Form[T]) Mount(ctx context.Context) error {
	var loadErr error
	if f.isNew {
		f.res.Store.Reset()
	} else {
		_, loadErr = f.res.Store.FetchOne(ctx, f.id)
	}

	relErr := f.res.FetchRelated(ctx)
	return errors.Join(loadErr, relErr)
}

// Defaults are the initial form values.
func (f *Form[T]) Defaults() map[string]string {
	if f.isNew {
		values := make(map[string]string)
		for _, field := range f.res.Fields {
			if field.Kind == resource.KindDateTime {
				values[field.Name] = domain.DefaultLocalDateTime(f.now(), f.loc)
			}
		}
		return values
	}

	e := f.res.Store.State().Entity
	if domain.IDString(e) != f.id.String() {
		return map[string]string{}
	}
	return f.res.Values(e)
}

// Validate returns a message per invalid field.
func (f *Form[T]) Validate(values map[string]string) map[string]string {
	errs := make(map[string]string)
	for _, field := range f.res.Fields {
		tag := field.Tag()
		if tag == "" {
			continue
		}
		err := f.validate.Var(values[field.Name], tag)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			errs[field.Name] = message(verrs[0].Tag())
		} else {
			errs[field.Name] = err.Error()
		}
	}
	return errs
}

func message(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "This field is invalid."
}

// Submit validates values, merges them over the focused record and creates
// or updates it. Field errors are returned without sending anything.
func (f *Form[T]) Submit(ctx context.Context, values map[string]string) (map[string]string, error) {
	if errs := f.Validate(values); len(errs) > 0 {
		return errs, nil
	}

	if err := f.prepare(ctx, values); err != nil {
		return nil, err
	}

	var entity T
	if !f.isNew {
		entity = f.res.Store.State().Entity
	}
	if err := f.res.Apply(&entity, values); err != nil {
		return nil, err
	}

	f.submitted = true
	if f.isNew {
		f.res.SetID(&entity, nil)
		_, err := f.res.Store.Create(ctx, entity)
		return nil, err
	}

	id := f.id
	f.res.SetID(&entity, &id)
	_, err := f.res.Store.Update(ctx, entity)
	return nil, err
}

// prepare makes sure the edited record is loaded, and that every picked
// relation can be resolved, when a submit arrives without a preceding mount.
func (f *Form[T]) prepare(ctx context.Context, values map[string]string) error {
	if !f.isNew && domain.IDString(f.res.Store.State().Entity) != f.id.String() {
		if _, err := f.res.Store.FetchOne(ctx, f.id); err != nil {
			return fmt.Errorf("failed to load %s %s: %w", f.res.Key, f.id, err)
		}
	}
	for _, rel := range f.res.Relations {
		v := values[rel.Name()]
		if v == "" || hasOption(rel.Options(), v) {
			continue
		}
		if err := rel.Fetch(ctx); err != nil {
			return fmt.Errorf("failed to fetch %s options: %w", rel.Name(), err)
		}
	}
	return nil
}

func hasOption(options []resource.Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Navigation returns the list path once the write has succeeded.
func (f *Form[T]) Navigation() (string, bool) {
	if f.submitted && f.res.Store.State().UpdateSuccess {
		return f.res.ListPath(), true
	}
	return "", false
}

func (f *Form[T]) Model(values, errs map[string]string) FormModel {
	st := f.res.Store.State()

	m := FormModel{
		Key:          f.res.Key,
		Title:        f.res.Title,
		IsNew:        f.isNew,
		ID:           f.id.String(),
		Loading:      !f.isNew && st.Loading,
		SaveDisabled: st.Updating,
		ListPath:     f.res.ListPath(),
		ErrorMessage: st.ErrorMessage,
	}
	if f.isNew {
		m.Action = f.res.NewPath()
	} else {
		m.Action = f.res.EditPath(f.id.String())
	}

	for _, field := range f.res.Fields {
		m.Fields = append(m.Fields, FormField{
			Name:     field.Name,
			Label:    field.Label,
			Kind:     field.Kind,
			Required: field.Required,
			Value:    values[field.Name],
			Error:    errs[field.Name],
		})
	}
	for _, rel := range f.res.Relations {
		m.Relations = append(m.Relations, FormRelation{
			Name:     rel.Name(),
			Label:    rel.Label(),
			Selected: values[rel.Name()],
			Options:  rel.Options(),
		})
	}
	return m
}
