package view

import (
	"context"

	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
)

type DetailField struct {
	Label string
	Value string
	Kind  resource.Kind
	Link  string
}

type DetailModel struct {
	Key          string
	Title        string
	ID           string
	Fields       []DetailField
	Loading      bool
	ListPath     string
	EditPath     string
	ErrorMessage string
}

type Detail[T domain.Entity] struct {
	res *resource.Resource[T]
	id  domain.ID
}

func NewDetail[T domain.Entity](res *resource.Resource[T], id domain.ID) *Detail[T] {
	return &Detail[T]{res: res, id: id}
}

func (d *Detail[T]) Mount(ctx context.Context) error {
	_, err := d.res.Store.FetchOne(ctx, d.id)
	return err
}

func (d *Detail[T]) Model() DetailModel {
	st := d.res.Store.State()
	e := st.Entity

	m := DetailModel{
		Key:          d.res.Key,
		Title:        d.res.Title,
		ID:           domain.IDString(e),
		Loading:      st.Loading,
		ListPath:     d.res.ListPath(),
		EditPath:     d.res.EditPath(d.id.String()),
		ErrorMessage: st.ErrorMessage,
	}

	// The focused record belongs to another route until this fetch lands.
	if m.ID != d.id.String() {
		m.ID = ""
		return m
	}

	for _, f := range d.res.Fields {
		m.Fields = append(m.Fields, DetailField{Label: f.Label, Value: f.Show(e), Kind: f.Kind})
	}
	for _, rel := range d.res.Relations {
		c := relationCell(rel, e)
		m.Fields = append(m.Fields, DetailField{Label: rel.Label(), Value: c.Text, Link: c.Link})
	}
	return m
}
