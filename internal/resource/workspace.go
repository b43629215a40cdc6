package resource

import (
	"sync"
	"time"

	"notebook-console/internal/domain"
	"notebook-console/internal/repository"
	"notebook-console/internal/store"

	"github.com/rs/zerolog"
)

type (
	UserRepository     = repository.EntityRepository[domain.User]
	NoteBookRepository = repository.EntityRepository[domain.NoteBook]
	NoteRepository     = repository.EntityRepository[domain.Note]
	ShareRepository    = repository.EntityRepository[domain.Share]
)

const (
	NoteBooksPath = "/api/note-books"
	NotesPath     = "/api/notes"
	SharesPath    = "/api/shares"
)

type WorkspaceConfig struct {
	API       repository.Requester
	UsersPath string
	Location  *time.Location
	Logger    zerolog.Logger
}

// Workspace owns one store per entity type. Every browser session and
// every CLI invocation gets its own.
type Workspace struct {
	Users     *store.Store[domain.User]
	NoteBooks *Resource[domain.NoteBook]
	Notes     *Resource[domain.Note]
	Shares    *Resource[domain.Share]

	mu            sync.Mutex
	unsubscribers []func()
}

type MenuItem struct {
	Key   string
	Title string
	Path  string
}

func NewWorkspace(cfg WorkspaceConfig) *Workspace {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	usersPath := cfg.UsersPath
	if usersPath == "" {
		usersPath = "/api/users"
	}

	users := store.New(store.Config[domain.User]{
		Name:   "user",
		Repo:   repository.NewEntityRepository[domain.User](cfg.API, usersPath),
		Logger: cfg.Logger,
	})
	noteBooks := NewNoteBookResource(
		repository.NewEntityRepository[domain.NoteBook](cfg.API, NoteBooksPath),
		users, cfg.Logger)
	notes := NewNoteResource(
		repository.NewEntityRepository[domain.Note](cfg.API, NotesPath),
		users, noteBooks.Store, loc, cfg.Logger)
	shares := NewShareResource(
		repository.NewEntityRepository[domain.Share](cfg.API, SharesPath),
		users, notes.Store, cfg.Logger)

	return &Workspace{
		Users:     users,
		NoteBooks: noteBooks,
		Notes:     notes,
		Shares:    shares,
	}
}

// Subscribe forwards the events of every store to fn until Close.
func (w *Workspace) Subscribe(fn func(store.Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.unsubscribers = append(w.unsubscribers,
		w.Users.Subscribe(fn),
		w.NoteBooks.Store.Subscribe(fn),
		w.Notes.Store.Subscribe(fn),
		w.Shares.Store.Subscribe(fn),
	)
}

func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, unsubscribe := range w.unsubscribers {
		unsubscribe()
	}
	w.unsubscribers = nil
}

// Menu lists the entity pages in navigation order.
func Menu() []MenuItem {
	return []MenuItem{
		{Key: KeyNoteBook, Title: "Note Book", Path: "/" + KeyNoteBook},
		{Key: KeyNote, Title: "Note", Path: "/" + KeyNote},
		{Key: KeyShare, Title: "Share", Path: "/" + KeyShare},
	}
}

// Snapshot returns the state of the store named key.
func (w *Workspace) Snapshot(key string) (any, bool) {
	switch key {
	case "user":
		return w.Users.State(), true
	case w.NoteBooks.Key:
		return w.NoteBooks.Store.State(), true
	case w.Notes.Key:
		return w.Notes.Store.State(), true
	case w.Shares.Key:
		return w.Shares.Store.State(), true
	}
	return nil, false
}
