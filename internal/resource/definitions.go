package resource

import (
	"time"

	"notebook-console/internal/domain"
	"notebook-console/internal/store"

	"github.com/rs/zerolog"
)

const (
	KeyNoteBook = "note-book"
	KeyNote     = "note"
	KeyShare    = "share"
)

func NewNoteBookResource(repo NoteBookRepository, users *store.Store[domain.User], logger zerolog.Logger) *Resource[domain.NoteBook] {
	relations := []Relation[domain.NoteBook]{
		NewRelation("user", "User", "", users,
			func(nb domain.NoteBook) *domain.User { return nb.User },
			func(nb *domain.NoteBook, u *domain.User) { nb.User = u }),
	}

	return &Resource[domain.NoteBook]{
		Key:    KeyNoteBook,
		Title:  "Note Book",
		Plural: "Note Books",
		Store: store.New(store.Config[domain.NoteBook]{
			Name:   KeyNoteBook,
			Repo:   repo,
			Clean:  cleanWith(relations),
			Logger: logger,
		}),
		Fields: []Field[domain.NoteBook]{
			text("name", "Name", true,
				func(nb domain.NoteBook) string { return nb.Name },
				func(nb *domain.NoteBook, v string) { nb.Name = v }),
			text("handle", "Handle", true,
				func(nb domain.NoteBook) string { return nb.Handle },
				func(nb *domain.NoteBook, v string) { nb.Handle = v }),
		},
		Relations: relations,
		SetID:     func(nb *domain.NoteBook, id *domain.ID) { nb.ID = id },
	}
}

func NewNoteResource(repo NoteRepository, users *store.Store[domain.User], noteBooks *store.Store[domain.NoteBook], loc *time.Location, logger zerolog.Logger) *Resource[domain.Note] {
	relations := []Relation[domain.Note]{
		NewRelation("user", "User", "", users,
			func(n domain.Note) *domain.User { return n.User },
			func(n *domain.Note, u *domain.User) { n.User = u }),
		NewRelation("notebook", "Notebook", KeyNoteBook, noteBooks,
			func(n domain.Note) *domain.NoteBook { return n.Notebook },
			func(n *domain.Note, nb *domain.NoteBook) { n.Notebook = nb }),
	}

	return &Resource[domain.Note]{
		Key:    KeyNote,
		Title:  "Note",
		Plural: "Notes",
		Store: store.New(store.Config[domain.Note]{
			Name:   KeyNote,
			Repo:   repo,
			Clean:  cleanWith(relations),
			Logger: logger,
		}),
		Fields: []Field[domain.Note]{
			text("title", "Title", true,
				func(n domain.Note) string { return n.Title },
				func(n *domain.Note, v string) { n.Title = v }),
			{
				Name:     "content",
				Label:    "Content",
				Kind:     KindBlob,
				Required: true,
				Value:    func(n domain.Note) string { return n.Content },
				Set: func(n *domain.Note, v string) error {
					n.Content = v
					return nil
				},
			},
			{
				Name:     "date",
				Label:    "Date",
				Kind:     KindDateTime,
				Required: true,
				Rules:    "datetime=" + domain.LocalDateTimeLayout,
				Value:    func(n domain.Note) string { return domain.FormatLocalDateTime(n.Date, loc) },
				Display:  func(n domain.Note) string { return domain.FormatDisplayDateTime(n.Date, loc) },
				Set: func(n *domain.Note, v string) error {
					t, err := domain.ParseLocalDateTime(v, loc)
					if err != nil {
						return err
					}
					n.Date = t
					return nil
				},
			},
		},
		Relations: relations,
		SetID:     func(n *domain.Note, id *domain.ID) { n.ID = id },
	}
}

func NewShareResource(repo ShareRepository, users *store.Store[domain.User], notes *store.Store[domain.Note], logger zerolog.Logger) *Resource[domain.Share] {
	relations := []Relation[domain.Share]{
		NewRelation("author", "Author", "", users,
			func(s domain.Share) *domain.User { return s.Author },
			func(s *domain.Share, u *domain.User) { s.Author = u }),
		NewRelation("withUser", "With User", "", users,
			func(s domain.Share) *domain.User { return s.WithUser },
			func(s *domain.Share, u *domain.User) { s.WithUser = u }),
		NewRelation("sharing", "Sharing", KeyNote, notes,
			func(s domain.Share) *domain.Note { return s.Sharing },
			func(s *domain.Share, n *domain.Note) { s.Sharing = n }),
	}

	return &Resource[domain.Share]{
		Key:    KeyShare,
		Title:  "Share",
		Plural: "Shares",
		Store: store.New(store.Config[domain.Share]{
			Name:   KeyShare,
			Repo:   repo,
			Clean:  cleanWith(relations),
			Logger: logger,
		}),
		Fields: []Field[domain.Share]{
			text("invite", "Invite", true,
				func(s domain.Share) string { return s.Invite },
				func(s *domain.Share, v string) { s.Invite = v }),
		},
		Relations: relations,
		SetID:     func(s *domain.Share, id *domain.ID) { s.ID = id },
	}
}
