// Package view holds the list, detail, form and delete-dialog components.
// Each one drives a resource's store and turns its state into a model the
// templates and the CLI render; none of them knows about HTTP.
package view

import (
	"context"
	"fmt"
	"strings"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
	"notebook-console/internal/store"
)

type Column struct {
	Name  string
	Label string
}

type Cell struct {
	Text string
	// Link points at the related record's detail page, if it has one.
	Link string
}

type Row struct {
	ID         string
	Cells      []Cell
	ViewPath   string
	EditPath   string
	DeletePath string
}

type ListModel struct {
	Key             string
	Title           string
	Plural          string
	NewPath         string
	RefreshPath     string
	Columns         []Column
	Rows            []Row
	Loading         bool
	RefreshDisabled bool
	Empty           bool
	ErrorMessage    string
	RefreshError    string
	Alert           string
}

type List[T domain.Entity] struct {
	res   *resource.Resource[T]
	alert *apiclient.Alert
}

func NewList[T domain.Entity](res *resource.Resource[T]) *List[T] {
	return &List[T]{res: res}
}

// Mount fetches the collection. The alert of a preceding write is picked
// up here and shown once.
func (l *List[T]) Mount(ctx context.Context) error {
	if alert := l.res.Store.TakeAlert(); alert != nil {
		l.alert = alert
	}
	_, err := l.res.Store.FetchList(ctx, store.ListParams{})
	return err
}

// Refresh refetches the collection. An alert still pending in the store is
// left for the next Mount.
func (l *List[T]) Refresh(ctx context.Context) error {
	_, err := l.res.Store.FetchList(ctx, store.ListParams{})
	return err
}

func (l *List[T]) Model() ListModel {
	st := l.res.Store.State()

	m := ListModel{
		Key:             l.res.Key,
		Title:           l.res.Title,
		Plural:          l.res.Plural,
		NewPath:         l.res.NewPath(),
		RefreshPath:     l.res.RefreshPath(),
		Columns:         columns(l.res),
		Rows:            make([]Row, 0, len(st.Entities)),
		Loading:         st.Loading,
		RefreshDisabled: st.Loading,
		Empty:           len(st.Entities) == 0 && !st.Loading,
		ErrorMessage:    st.ErrorMessage,
		RefreshError:    st.RefreshError,
		Alert:           AlertText(l.alert, l.res.Title),
	}

	for _, e := range st.Entities {
		id := domain.IDString(e)
		m.Rows = append(m.Rows, Row{
			ID:         id,
			Cells:      cells(l.res, e),
			ViewPath:   l.res.DetailPath(id),
			EditPath:   l.res.EditPath(id),
			DeletePath: l.res.DeletePath(id),
		})
	}
	return m
}

func columns[T domain.Entity](res *resource.Resource[T]) []Column {
	cols := make([]Column, 0, len(res.Fields)+len(res.Relations))
	for _, f := range res.Fields {
		cols = append(cols, Column{Name: f.Name, Label: f.Label})
	}
	for _, rel := range res.Relations {
		cols = append(cols, Column{Name: rel.Name(), Label: rel.Label()})
	}
	return cols
}

func cells[T domain.Entity](res *resource.Resource[T], e T) []Cell {
	out := make([]Cell, 0, len(res.Fields)+len(res.Relations))
	for _, f := range res.Fields {
		out = append(out, Cell{Text: f.Show(e)})
	}
	for _, rel := range res.Relations {
		out = append(out, relationCell(rel, e))
	}
	return out
}

func relationCell[T domain.Entity](rel resource.Relation[T], e T) Cell {
	c := Cell{Text: rel.Display(e)}
	if id := rel.Selected(e); id != "" && rel.Target() != "" {
		c.Link = "/" + rel.Target() + "/" + id
	}
	return c
}

// AlertText renders the API's write notification as a sentence.
func AlertText(alert *apiclient.Alert, title string) string {
	if alert == nil {
		return ""
	}

	action := alert.Key[strings.LastIndex(alert.Key, ".")+1:]
	switch action {
	case "created":
		return fmt.Sprintf("A new %s is created with identifier %s", title, alert.Param)
	case "updated":
		return fmt.Sprintf("A %s is updated with identifier %s", title, alert.Param)
	case "deleted":
		return fmt.Sprintf("A %s is deleted with identifier %s", title, alert.Param)
	}
	return alert.Key
}
