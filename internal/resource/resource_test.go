package resource

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/fakeapi"
	"notebook-console/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) (*fakeapi.Server, *Workspace) {
	t.Helper()
	api := fakeapi.New(t)
	client := apiclient.New(apiclient.Config{
		BaseURL: api.URL,
		Timeout: 5 * time.Second,
		AppName: fakeapi.AppName,
		Logger:  zerolog.Nop(),
	})
	ws := NewWorkspace(WorkspaceConfig{
		API:      client,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(ws.Close)
	return api, ws
}

func TestRelationResolvesPickerValue(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("note-books",
		fakeapi.Record{"id": 1, "name": "A"},
		fakeapi.Record{"id": 2, "name": "B"},
	)
	ctx := context.Background()

	require.NoError(t, ws.Notes.FetchRelated(ctx))

	var note domain.Note
	require.NoError(t, ws.Notes.Apply(&note, map[string]string{
		"title":    "t",
		"notebook": "2",
	}))
	require.Equal(t, &domain.NoteBook{ID: domain.IDPtr("2"), Name: "B"}, note.Notebook)

	body, err := json.Marshal(note)
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"t","notebook":{"id":2,"name":"B"}}`, string(body))
}

func TestRelationUnknownValueClearsReference(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("users", fakeapi.Record{"id": 1, "login": "admin"})
	require.NoError(t, ws.NoteBooks.FetchRelated(context.Background()))

	nb := domain.NoteBook{User: &domain.User{ID: domain.IDPtr("1"), Login: "admin"}}
	require.NoError(t, ws.NoteBooks.Apply(&nb, map[string]string{"user": "9"}))
	require.Nil(t, nb.User)

	require.NoError(t, ws.NoteBooks.Apply(&nb, map[string]string{"user": "1"}))
	require.Equal(t, "admin", nb.User.Login)

	require.NoError(t, ws.NoteBooks.Apply(&nb, map[string]string{"user": ""}))
	require.Nil(t, nb.User)
}

func TestResolve(t *testing.T) {
	users := []domain.User{
		{ID: domain.IDPtr("1"), Login: "a"},
		{ID: domain.IDPtr("10"), Login: "b"},
	}

	tests := []struct {
		name  string
		value string
		want  *domain.User
	}{
		{name: "first", value: "1", want: &users[0]},
		{name: "exact match only", value: "10", want: &users[1]},
		{name: "missing", value: "2", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Resolve(users, tt.value))
		})
	}
}

func TestCleanDropsBlankReferences(t *testing.T) {
	_, ws := newTestWorkspace(t)

	share := domain.Share{
		Invite:   "x",
		Author:   &domain.User{},
		WithUser: &domain.User{ID: domain.IDPtr("-1")},
		Sharing:  &domain.Note{ID: domain.IDPtr("5")},
	}
	cleaned := ws.Shares.Clean(share)

	require.Nil(t, cleaned.Author)
	require.Nil(t, cleaned.WithUser)
	require.Equal(t, share.Sharing, cleaned.Sharing)
	require.NotNil(t, share.Author)
}

func TestApplyAndValuesRoundTrip(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("users", fakeapi.Record{"id": 3, "login": "bob"})
	api.Seed("note-books", fakeapi.Record{"id": 4, "name": "Work"})
	require.NoError(t, ws.Notes.FetchRelated(context.Background()))

	values := map[string]string{
		"title":    "Groceries",
		"content":  "milk",
		"date":     "2024-03-05T09:30",
		"user":     "3",
		"notebook": "4",
	}

	var note domain.Note
	require.NoError(t, ws.Notes.Apply(&note, values))
	require.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), *note.Date)
	require.Equal(t, values, ws.Notes.Values(note))
}

func TestApplyRejectsBadDate(t *testing.T) {
	_, ws := newTestWorkspace(t)

	var note domain.Note
	err := ws.Notes.Apply(&note, map[string]string{"date": "yesterday"})
	require.ErrorContains(t, err, "failed to set date")
}

func TestFieldTag(t *testing.T) {
	tests := []struct {
		name  string
		field Field[domain.Note]
		want  string
	}{
		{name: "required", field: Field[domain.Note]{Required: true}, want: "required"},
		{name: "required with rules", field: Field[domain.Note]{Required: true, Rules: "max=10"}, want: "required,max=10"},
		{name: "optional with rules", field: Field[domain.Note]{Rules: "max=10"}, want: "omitempty,max=10"},
		{name: "free", field: Field[domain.Note]{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.field.Tag())
		})
	}
}

func TestFetchRelatedReportsFailures(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Fail("GET", "/api/users", 500, "Internal Server Error")
	api.Seed("notes", fakeapi.Record{"id": 1, "title": "n"})

	err := ws.Shares.FetchRelated(context.Background())
	require.ErrorContains(t, err, "failed to fetch author options")

	require.Len(t, ws.Shares.Relations[2].Options(), 1)
	require.Equal(t, Option{Value: "1", Label: "n"}, ws.Shares.Relations[2].Options()[0])
}

func TestWorkspaceMenuAndSnapshot(t *testing.T) {
	_, ws := newTestWorkspace(t)

	menu := Menu()
	require.Equal(t, []MenuItem{
		{Key: "note-book", Title: "Note Book", Path: "/note-book"},
		{Key: "note", Title: "Note", Path: "/note"},
		{Key: "share", Title: "Share", Path: "/share"},
	}, menu)
	require.Equal(t, ws.Notes.ListPath(), menu[1].Path)

	snap, ok := ws.Snapshot("note")
	require.True(t, ok)
	require.IsType(t, store.State[domain.Note]{}, snap)

	_, ok = ws.Snapshot("nope")
	require.False(t, ok)
}

func TestWorkspaceSubscribe(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("shares", fakeapi.Record{"id": 1, "invite": "x"})

	var stores []string
	ws.Subscribe(func(ev store.Event) {
		if ev.Phase == store.PhaseFulfilled {
			stores = append(stores, ev.Store)
		}
	})

	_, err := ws.Shares.Store.FetchList(context.Background(), store.ListParams{})
	require.NoError(t, err)
	require.Equal(t, []string{"share"}, stores)

	ws.Close()
	_, err = ws.Shares.Store.FetchList(context.Background(), store.ListParams{})
	require.NoError(t, err)
	require.Len(t, stores, 1)
}

func TestPaths(t *testing.T) {
	_, ws := newTestWorkspace(t)
	r := ws.NoteBooks

	require.Equal(t, "/note-book", r.ListPath())
	require.Equal(t, "/note-book/new", r.NewPath())
	require.Equal(t, "/note-book/refresh", r.RefreshPath())
	require.Equal(t, "/note-book/7", r.DetailPath("7"))
	require.Equal(t, "/note-book/7/edit", r.EditPath("7"))
	require.Equal(t, "/note-book/7/delete", r.DeletePath("7"))
}
