package view

import (
	"context"

	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
)

type DeleteModel struct {
	Key             string
	Title           string
	ID              string
	Label           string
	Open            bool
	ConfirmPath     string
	CancelPath      string
	ConfirmDisabled bool
	ErrorMessage    string
}

type DeleteDialog[T domain.Entity] struct {
	res       *resource.Resource[T]
	id        domain.ID
	loadModal bool
}

func NewDeleteDialog[T domain.Entity](res *resource.Resource[T], id domain.ID) *DeleteDialog[T] {
	return &DeleteDialog[T]{res: res, id: id}
}

func (d *DeleteDialog[T]) Mount(ctx context.Context) error {
	if _, err := d.res.Store.FetchOne(ctx, d.id); err != nil {
		return err
	}
	d.loadModal = true
	return nil
}

// Confirm deletes the focused record, loading it first when the store
// focuses a different one. A dialog built for a record the store already
// holds deletes it without another read.
func (d *DeleteDialog[T]) Confirm(ctx context.Context) error {
	if domain.IDString(d.res.Store.State().Entity) != d.id.String() {
		if err := d.Mount(ctx); err != nil {
			return err
		}
	}
	d.loadModal = true

	id := d.res.Store.State().Entity.EntityID()
	if id == nil {
		return nil
	}
	return d.res.Store.Delete(ctx, *id)
}

// Navigation closes the dialog once the delete has succeeded.
func (d *DeleteDialog[T]) Navigation() (string, bool) {
	if d.loadModal && d.res.Store.State().UpdateSuccess {
		d.loadModal = false
		return d.res.ListPath(), true
	}
	return "", false
}

func (d *DeleteDialog[T]) Cancel() string {
	return d.res.ListPath()
}

func (d *DeleteDialog[T]) Model() DeleteModel {
	st := d.res.Store.State()

	m := DeleteModel{
		Key:             d.res.Key,
		Title:           d.res.Title,
		ID:              d.id.String(),
		Open:            d.loadModal,
		ConfirmPath:     d.res.DeletePath(d.id.String()),
		CancelPath:      d.res.ListPath(),
		ConfirmDisabled: st.Updating,
		ErrorMessage:    st.ErrorMessage,
	}
	if domain.IDString(st.Entity) == d.id.String() {
		m.Label = st.Entity.DisplayLabel()
	}
	return m
}
