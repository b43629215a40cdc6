// Package store keeps the client-side state of one REST collection: the
// fetched list, the focused record, and the request flags views render from.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/repository"

	"github.com/rs/zerolog"
)

var ErrMissingID = errors.New("entity identifier is required")

type ListParams = repository.ListParams

type State[T domain.Entity] struct {
	Loading       bool             `json:"loading"`
	Updating      bool             `json:"updating"`
	UpdateSuccess bool             `json:"updateSuccess"`
	ErrorMessage  string           `json:"errorMessage,omitempty"`
	RefreshError  string           `json:"refreshError,omitempty"`
	Entities      []T              `json:"entities"`
	Entity        T                `json:"entity"`
	Alert         *apiclient.Alert `json:"alert,omitempty"`
}

type Config[T domain.Entity] struct {
	// Name identifies the store in events and logs, e.g. "note-book".
	Name string
	Repo repository.EntityRepository[T]
	// Clean prepares an entity for sending; nil sends it unchanged.
	Clean  func(T) T
	Logger zerolog.Logger
}

type readKind int

const (
	noRead   readKind = -1
	readList readKind = 0
	readOne  readKind = 1
)

type Store[T domain.Entity] struct {
	name   string
	repo   repository.EntityRepository[T]
	clean  func(T) T
	logger zerolog.Logger

	mu        sync.Mutex
	state     State[T]
	seq       [2]uint64
	listeners map[int]func(Event)
	nextSub   int
}

func New[T domain.Entity](cfg Config[T]) *Store[T] {
	clean := cfg.Clean
	if clean == nil {
		clean = func(e T) T { return e }
	}

	return &Store[T]{
		name:      cfg.Name,
		repo:      cfg.Repo,
		clean:     clean,
		logger:    cfg.Logger.With().Str("store", cfg.Name).Logger(),
		state:     initialState[T](),
		listeners: make(map[int]func(Event)),
	}
}

func initialState[T domain.Entity]() State[T] {
	return State[T]{Entities: []T{}}
}

func (s *Store[T]) Name() string {
	return s.name
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Entities = append([]T(nil), s.state.Entities...)
	if st.Entities == nil {
		st.Entities = []T{}
	}
	return st
}

// TakeAlert returns the alert of the last successful write and clears it,
// so it is shown once.
func (s *Store[T]) TakeAlert() *apiclient.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := s.state.Alert
	s.state.Alert = nil
	return alert
}

// Subscribe registers fn for every state transition. fn runs outside the
// store lock and may read State.
func (s *Store[T]) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store[T]) FetchList(ctx context.Context, params ListParams) ([]T, error) {
	seq := s.begin(ActionFetchList, "", readList, readPending)

	entities, err := s.repo.List(ctx, params)
	if err != nil {
		s.reject(ActionFetchList, "", readList, seq, err)
		return nil, err
	}

	s.fulfill(ActionFetchList, "", readList, seq, func(st *State[T]) {
		st.Entities = entities
		st.Loading = false
	})
	return entities, nil
}

func (s *Store[T]) FetchOne(ctx context.Context, id domain.ID) (T, error) {
	var zero T
	if id == "" {
		return zero, ErrMissingID
	}

	seq := s.begin(ActionFetchOne, id.String(), readOne, readPending)

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.reject(ActionFetchOne, id.String(), readOne, seq, err)
		return zero, err
	}

	s.fulfill(ActionFetchOne, id.String(), readOne, seq, func(st *State[T]) {
		st.Entity = entity
		st.Loading = false
	})
	return entity, nil
}

func (s *Store[T]) Create(ctx context.Context, entity T) (T, error) {
	return s.save(ctx, ActionCreate, entity, s.repo.Create)
}

func (s *Store[T]) Update(ctx context.Context, entity T) (T, error) {
	if entity.EntityID() == nil {
		var zero T
		return zero, ErrMissingID
	}
	return s.save(ctx, ActionUpdate, entity, s.repo.Update)
}

// PartialUpdate sends only the set fields as a JSON merge patch. Names in
// clear are sent as null.
func (s *Store[T]) PartialUpdate(ctx context.Context, entity T, clear ...string) (T, error) {
	if entity.EntityID() == nil {
		var zero T
		return zero, ErrMissingID
	}
	return s.save(ctx, ActionPartialUpdate, entity, func(ctx context.Context, e T) (T, *apiclient.Alert, error) {
		return s.repo.Patch(ctx, e, clear...)
	})
}

func (s *Store[T]) Delete(ctx context.Context, id domain.ID) error {
	if id == "" {
		return ErrMissingID
	}

	s.begin(ActionDelete, id.String(), noRead, writePending)

	alert, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.reject(ActionDelete, id.String(), noRead, 0, err)
		return err
	}

	s.fulfill(ActionDelete, id.String(), noRead, 0, func(st *State[T]) {
		s.seq[readOne]++
		var zero T
		st.Entity = zero
		st.Updating = false
		st.UpdateSuccess = true
		st.Alert = alert
	})

	s.refreshAfterWrite(ctx)
	return nil
}

// Reset returns the store to its initial state. Reads still in flight are
// discarded when they resolve.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	s.state = initialState[T]()
	s.seq[readList]++
	s.seq[readOne]++
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.emit(listeners, Event{Store: s.name, Action: ActionReset, Phase: PhaseFulfilled})
}

type saveFunc[T domain.Entity] func(context.Context, T) (T, *apiclient.Alert, error)

func (s *Store[T]) save(ctx context.Context, action Action, entity T, send saveFunc[T]) (T, error) {
	id := domain.IDString(entity)
	s.begin(action, id, noRead, writePending)

	saved, alert, err := send(ctx, s.clean(entity))
	if err != nil {
		s.reject(action, id, noRead, 0, err)
		var zero T
		return zero, err
	}

	s.fulfill(action, domain.IDString(saved), noRead, 0, func(st *State[T]) {
		s.seq[readOne]++
		st.Entity = saved
		st.Updating = false
		st.Loading = false
		st.UpdateSuccess = true
		st.Alert = alert
	})

	s.refreshAfterWrite(ctx)
	return saved, nil
}

// refreshAfterWrite reloads the collection once after a successful write.
// A failure here is kept apart from the write's outcome.
func (s *Store[T]) refreshAfterWrite(ctx context.Context) {
	seq := s.begin(ActionRefresh, "", readList, refreshPending)

	entities, err := s.repo.List(ctx, ListParams{})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh list after write")
		s.transition(ActionRefresh, "", PhaseRejected, err, readList, seq, func(st *State[T]) {
			st.Loading = false
			st.RefreshError = err.Error()
		})
		return
	}

	s.fulfill(ActionRefresh, "", readList, seq, func(st *State[T]) {
		st.Entities = entities
		st.Loading = false
	})
}

type pendingKind int

const (
	readPending pendingKind = iota
	writePending
	refreshPending
)

// begin applies the pending transition and returns the issue sequence for
// reads.
func (s *Store[T]) begin(action Action, id string, kind readKind, pending pendingKind) uint64 {
	s.mu.Lock()
	var seq uint64
	if kind != noRead {
		s.seq[kind]++
		seq = s.seq[kind]
	}

	switch pending {
	case readPending:
		s.state.ErrorMessage = ""
		s.state.RefreshError = ""
		s.state.UpdateSuccess = false
		s.state.Loading = true
	case writePending:
		s.state.ErrorMessage = ""
		s.state.RefreshError = ""
		s.state.UpdateSuccess = false
		s.state.Updating = true
		s.state.Alert = nil
	case refreshPending:
		s.state.Loading = true
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Debug().Str("action", string(action)).Str("id", id).Msg("pending")
	s.emit(listeners, Event{Store: s.name, Action: action, Phase: PhasePending, ID: id})
	return seq
}

// fulfill applies fn under the store lock. A write's fn bumps the readOne
// sequence so a record read issued before the write cannot overwrite it.
func (s *Store[T]) fulfill(action Action, id string, kind readKind, seq uint64, fn func(*State[T])) {
	s.transition(action, id, PhaseFulfilled, nil, kind, seq, fn)
}

func (s *Store[T]) reject(action Action, id string, kind readKind, seq uint64, err error) {
	s.logger.Warn().Err(err).Str("action", string(action)).Str("id", id).Msg("request rejected")
	s.transition(action, id, PhaseRejected, err, kind, seq, func(st *State[T]) {
		st.Loading = false
		st.Updating = false
		st.UpdateSuccess = false
		st.ErrorMessage = errorMessage(err)
	})
}

func (s *Store[T]) transition(action Action, id string, phase Phase, err error, kind readKind, seq uint64, fn func(*State[T])) {
	s.mu.Lock()
	if kind != noRead && seq != s.seq[kind] {
		s.mu.Unlock()
		s.logger.Debug().Str("action", string(action)).Uint64("seq", seq).Msg("dropping stale response")
		return
	}
	fn(&s.state)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.emit(listeners, Event{Store: s.name, Action: action, Phase: phase, ID: id, Err: err})
}

func (s *Store[T]) snapshotListeners() []func(Event) {
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func (s *Store[T]) emit(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}

func errorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return fmt.Sprintf("request failed: %v", err)
}
