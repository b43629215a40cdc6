package view

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/fakeapi"
	"notebook-console/internal/resource"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestWorkspace(t *testing.T) (*fakeapi.Server, *resource.Workspace) {
	t.Helper()
	api := fakeapi.New(t)
	client := apiclient.New(apiclient.Config{
		BaseURL: api.URL,
		Timeout: 5 * time.Second,
		AppName: fakeapi.AppName,
		Logger:  zerolog.Nop(),
	})
	ws := resource.NewWorkspace(resource.WorkspaceConfig{
		API:      client,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	})
	return api, ws
}

func testFormOptions() FormOptions {
	return FormOptions{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
}

// calls strips query strings so cache busters do not leak into assertions.
func calls(api *fakeapi.Server) []string {
	out := api.CallLines()
	for i, c := range out {
		out[i], _, _ = strings.Cut(c, "?")
	}
	return out
}

func TestListModel(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("notes",
		fakeapi.Record{"id": 2, "title": "B", "notebook": map[string]any{"id": 9, "name": "Work"}},
		fakeapi.Record{"id": 1, "title": "A", "date": "2024-01-02T03:04:00Z"},
	)

	list := NewList(ws.Notes)
	require.NoError(t, list.Mount(context.Background()))

	m := list.Model()
	require.False(t, m.Loading)
	require.False(t, m.RefreshDisabled)
	require.False(t, m.Empty)
	require.Equal(t, "/note/new", m.NewPath)
	require.Equal(t, []Column{
		{Name: "title", Label: "Title"},
		{Name: "content", Label: "Content"},
		{Name: "date", Label: "Date"},
		{Name: "user", Label: "User"},
		{Name: "notebook", Label: "Notebook"},
	}, m.Columns)

	require.Len(t, m.Rows, 2)
	require.Equal(t, "2", m.Rows[0].ID)
	require.Equal(t, "/note/2/edit", m.Rows[0].EditPath)
	require.Equal(t, Cell{Text: "Work", Link: "/note-book/9"}, m.Rows[0].Cells[4])
	require.Equal(t, Cell{}, m.Rows[0].Cells[3])
	require.Equal(t, "02/01/24 03:04", m.Rows[1].Cells[2].Text)
}

func TestListEmptyState(t *testing.T) {
	_, ws := newTestWorkspace(t)

	list := NewList(ws.Shares)
	require.NoError(t, list.Refresh(context.Background()))

	m := list.Model()
	require.True(t, m.Empty)
	require.Empty(t, m.Rows)
}

func TestListErrorMessage(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Fail(http.MethodGet, "/api/shares", http.StatusInternalServerError, "Internal Server Error")

	list := NewList(ws.Shares)
	require.Error(t, list.Mount(context.Background()))
	require.Equal(t, "request failed with status code 500: Internal Server Error (error.http.500)", list.Model().ErrorMessage)
}

func TestDetailModel(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("shares", fakeapi.Record{
		"id":      5,
		"invite":  "read",
		"author":  map[string]any{"id": 1, "login": "admin"},
		"sharing": map[string]any{"id": 3, "title": "Plans"},
	})

	detail := NewDetail(ws.Shares, "5")
	require.NoError(t, detail.Mount(context.Background()))

	m := detail.Model()
	require.Equal(t, "5", m.ID)
	require.Equal(t, "/share/5/edit", m.EditPath)
	require.Equal(t, []DetailField{
		{Label: "Invite", Value: "read", Kind: resource.KindText},
		{Label: "Author", Value: "admin"},
		{Label: "With User", Value: ""},
		{Label: "Sharing", Value: "Plans", Link: "/note/3"},
	}, m.Fields)
}

func TestDetailNotFound(t *testing.T) {
	_, ws := newTestWorkspace(t)

	detail := NewDetail(ws.Shares, "404")
	err := detail.Mount(context.Background())
	require.True(t, apiclient.IsNotFound(err))

	m := detail.Model()
	require.Empty(t, m.ID)
	require.Empty(t, m.Fields)
	require.NotEmpty(t, m.ErrorMessage)
}

func TestNoteBookCreateScenario(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ctx := context.Background()

	form := NewForm(ws.NoteBooks, "", testFormOptions())
	require.True(t, form.IsNew())
	require.NoError(t, form.Mount(ctx))

	_, ok := form.Navigation()
	require.False(t, ok)

	errs, err := form.Submit(ctx, map[string]string{"name": "programming", "handle": "Helena"})
	require.NoError(t, err)
	require.Empty(t, errs)

	path, ok := form.Navigation()
	require.True(t, ok)
	require.Equal(t, "/note-book", path)

	require.Equal(t, []string{
		"GET /api/users",
		"POST /api/note-books",
		"GET /api/note-books",
	}, calls(api))

	st := ws.NoteBooks.Store.State()
	require.Len(t, st.Entities, 1)
	require.Equal(t, "programming", st.Entities[0].Name)
	require.NotNil(t, st.Entities[0].ID)
}

func TestNoteCreateScenario(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("note-books",
		fakeapi.Record{"id": 1, "name": "A"},
		fakeapi.Record{"id": 2, "name": "B"},
	)
	ctx := context.Background()

	form := NewForm(ws.Notes, "", testFormOptions())
	require.NoError(t, form.Mount(ctx))
	require.Equal(t, map[string]string{"date": "2024-05-06T07:08"}, form.Defaults())

	_, err := form.Submit(ctx, map[string]string{
		"title":    "Shopping",
		"content":  "eggs",
		"date":     "2024-05-06T07:08",
		"notebook": "2",
	})
	require.NoError(t, err)

	records := api.Records("notes")
	require.Len(t, records, 1)
	require.Equal(t, map[string]any{"id": float64(2), "name": "B"}, records[0]["notebook"])
	require.Equal(t, "2024-05-06T07:08:00Z", records[0]["date"])

	path, ok := form.Navigation()
	require.True(t, ok)
	require.Equal(t, "/note", path)
}

func TestFormNewResetsStore(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("shares", fakeapi.Record{"id": 1, "invite": "x"})
	ctx := context.Background()

	_, err := ws.Shares.Store.FetchOne(ctx, "1")
	require.NoError(t, err)

	form := NewForm(ws.Shares, "", testFormOptions())
	require.NoError(t, form.Mount(ctx))
	require.Nil(t, ws.Shares.Store.State().Entity.ID)
	require.Empty(t, form.Defaults())
}

func TestFormValidate(t *testing.T) {
	_, ws := newTestWorkspace(t)
	form := NewForm(ws.Notes, "", testFormOptions())

	errs := form.Validate(map[string]string{"title": "t", "date": "tomorrow"})
	require.Equal(t, map[string]string{
		"content": "This field is required.",
		"date":    "This field should be a date and time.",
	}, errs)

	errs, err := form.Submit(context.Background(), map[string]string{"title": "t"})
	require.NoError(t, err)
	require.Contains(t, errs, "content")

	_, ok := form.Navigation()
	require.False(t, ok)
}

func TestFormEdit(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("users", fakeapi.Record{"id": 1, "login": "admin"})
	api.Seed("notes", fakeapi.Record{
		"id":      7,
		"title":   "Old",
		"content": "c",
		"date":    "2024-01-02T03:04:00Z",
		"user":    map[string]any{"id": 1, "login": "admin"},
	})
	ctx := context.Background()

	form := NewForm(ws.Notes, "7", testFormOptions())
	require.False(t, form.IsNew())
	require.NoError(t, form.Mount(ctx))

	values := form.Defaults()
	require.Equal(t, map[string]string{
		"title":    "Old",
		"content":  "c",
		"date":     "2024-01-02T03:04",
		"user":     "1",
		"notebook": "",
	}, values)

	m := form.Model(values, nil)
	require.Equal(t, "/note/7/edit", m.Action)
	require.False(t, m.Loading)
	require.False(t, m.SaveDisabled)
	require.Len(t, m.Relations, 2)
	require.Equal(t, []resource.Option{{Value: "1", Label: "admin"}}, m.Relations[0].Options)

	values["title"] = "New"
	_, err := form.Submit(ctx, values)
	require.NoError(t, err)

	require.Equal(t, "New", api.Records("notes")[0]["title"])
	require.Contains(t, calls(api), "PUT /api/notes/7")

	path, ok := form.Navigation()
	require.True(t, ok)
	require.Equal(t, "/note", path)
}

func TestFormEditSubmitWithoutMount(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Seed("note-books", fakeapi.Record{"id": 3, "name": "A", "handle": "a"})

	form := NewForm(ws.NoteBooks, "3", testFormOptions())
	_, err := form.Submit(context.Background(), map[string]string{"name": "B", "handle": "b"})
	require.NoError(t, err)

	require.Equal(t, []string{
		"GET /api/note-books/3",
		"PUT /api/note-books/3",
		"GET /api/note-books",
	}, calls(api))
}

func TestFormSubmitRejected(t *testing.T) {
	api, ws := newTestWorkspace(t)
	api.Fail(http.MethodPost, "/api/note-books", http.StatusBadRequest, "Bad Request")
	ctx := context.Background()

	form := NewForm(ws.NoteBooks, "", testFormOptions())
	require.NoError(t, form.Mount(ctx))

	_, err := form.Submit(ctx, map[string]string{"name": "n", "handle": "h"})
	require.Error(t, err)

	_, ok := form.Navigation()
	require.False(t, ok)
	require.Contains(t, form.Model(nil, nil).ErrorMessage, "400")
}

func TestShareDeleteScenario(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ids := api.Seed("shares", fakeapi.Record{"invite": "x"}, fakeapi.Record{"invite": "y"})
	id := domain.ID(itoa(ids[0]))
	ctx := context.Background()

	dialog := NewDeleteDialog(ws.Shares, id)
	require.NoError(t, dialog.Mount(ctx))

	m := dialog.Model()
	require.True(t, m.Open)
	require.Equal(t, "x", m.Label)

	api.ResetCalls()
	require.NoError(t, dialog.Confirm(ctx))
	require.Equal(t, []string{
		"DELETE /api/shares/" + id.String(),
		"GET /api/shares",
	}, calls(api))

	path, ok := dialog.Navigation()
	require.True(t, ok)
	require.Equal(t, "/share", path)
	require.False(t, dialog.Model().Open)

	_, ok = dialog.Navigation()
	require.False(t, ok)

	list := NewList(ws.Shares)
	require.Len(t, list.Model().Rows, 1)
}

func TestDeleteConfirmFromNewDialogUsesFocusedRecord(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ids := api.Seed("shares", fakeapi.Record{"invite": "x"})
	id := domain.ID(itoa(ids[0]))
	ctx := context.Background()

	require.NoError(t, NewDeleteDialog(ws.Shares, id).Mount(ctx))

	// A later request builds its own dialog over the same store.
	dialog := NewDeleteDialog(ws.Shares, id)
	api.ResetCalls()
	require.NoError(t, dialog.Confirm(ctx))
	require.Equal(t, []string{
		"DELETE /api/shares/" + id.String(),
		"GET /api/shares",
	}, calls(api))

	path, ok := dialog.Navigation()
	require.True(t, ok)
	require.Equal(t, "/share", path)
}

func TestDeleteConfirmLoadsOtherRecord(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ids := api.Seed("shares", fakeapi.Record{"invite": "x"}, fakeapi.Record{"invite": "y"})
	first, second := domain.ID(itoa(ids[0])), domain.ID(itoa(ids[1]))
	ctx := context.Background()

	require.NoError(t, NewDeleteDialog(ws.Shares, first).Mount(ctx))

	api.ResetCalls()
	require.NoError(t, NewDeleteDialog(ws.Shares, second).Confirm(ctx))
	require.Equal(t, []string{
		"GET /api/shares/" + second.String(),
		"DELETE /api/shares/" + second.String(),
		"GET /api/shares",
	}, calls(api))
}

func TestDeleteLastShowsEmptyState(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ids := api.Seed("note-books", fakeapi.Record{"name": "only"})
	ctx := context.Background()

	dialog := NewDeleteDialog(ws.NoteBooks, domain.ID(itoa(ids[0])))
	require.NoError(t, dialog.Confirm(ctx))

	require.True(t, NewList(ws.NoteBooks).Model().Empty)
}

func TestDeleteCancelDoesNotMutate(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ids := api.Seed("notes", fakeapi.Record{"title": "keep"})

	dialog := NewDeleteDialog(ws.Notes, domain.ID(itoa(ids[0])))
	require.NoError(t, dialog.Mount(context.Background()))
	require.Equal(t, "/note", dialog.Cancel())

	require.Len(t, api.Records("notes"), 1)
	for _, c := range calls(api) {
		require.NotContains(t, c, http.MethodDelete)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestListShowsWriteAlertOnce(t *testing.T) {
	_, ws := newTestWorkspace(t)
	ctx := context.Background()

	created, err := ws.NoteBooks.Store.Create(ctx, domain.NoteBook{Name: "n", Handle: "h"})
	require.NoError(t, err)

	list := NewList(ws.NoteBooks)
	require.NoError(t, list.Mount(ctx))
	require.Equal(t, "A new Note Book is created with identifier "+created.ID.String(), list.Model().Alert)

	again := NewList(ws.NoteBooks)
	require.NoError(t, again.Mount(ctx))
	require.Empty(t, again.Model().Alert)
}

func TestListRefreshLeavesAlertPending(t *testing.T) {
	api, ws := newTestWorkspace(t)
	ctx := context.Background()

	_, err := ws.NoteBooks.Store.Create(ctx, domain.NoteBook{Name: "n", Handle: "h"})
	require.NoError(t, err)
	api.Seed("note-books", fakeapi.Record{"name": "later"})

	api.ResetCalls()
	refreshed := NewList(ws.NoteBooks)
	require.NoError(t, refreshed.Refresh(ctx))
	require.Equal(t, []string{"GET /api/note-books"}, calls(api))

	m := refreshed.Model()
	require.Empty(t, m.Alert)
	require.Len(t, m.Rows, 2)
	require.Equal(t, "/note-book/refresh", m.RefreshPath)

	mounted := NewList(ws.NoteBooks)
	require.NoError(t, mounted.Mount(ctx))
	require.NotEmpty(t, mounted.Model().Alert)
}

func TestAlertText(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "notebookApp.share.created", want: "A new Share is created with identifier 4"},
		{key: "notebookApp.share.updated", want: "A Share is updated with identifier 4"},
		{key: "notebookApp.share.deleted", want: "A Share is deleted with identifier 4"},
		{key: "custom", want: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.Equal(t, tt.want, AlertText(&apiclient.Alert{Key: tt.key, Param: "4"}, "Share"))
		})
	}
	require.Empty(t, AlertText(nil, "Share"))
}

func TestFormNavigationIgnoresEarlierWrites(t *testing.T) {
	_, ws := newTestWorkspace(t)
	ctx := context.Background()

	_, err := ws.Shares.Store.Create(ctx, domain.Share{Invite: "x"})
	require.NoError(t, err)
	require.True(t, ws.Shares.Store.State().UpdateSuccess)

	form := NewForm(ws.Shares, "", testFormOptions())
	_, ok := form.Navigation()
	require.False(t, ok)
}
