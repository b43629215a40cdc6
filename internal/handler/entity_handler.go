package handler

import (
	"errors"
	"net/http"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/middleware"
	"notebook-console/internal/resource"
	"notebook-console/internal/store"
	"notebook-console/internal/view"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ListPage is the content of the list template; Delete is set when the
// delete dialog is open over the list.
type ListPage struct {
	List   view.ListModel
	Delete *view.DeleteModel
}

// EntityHandler serves the list, detail, form and delete routes of one
// entity type from the requesting session's workspace.
type EntityHandler[T domain.Entity] struct {
	key      string
	pick     func(*resource.Workspace) *resource.Resource[T]
	render   *Renderer
	formOpts view.FormOptions
}

func NewEntityHandler[T domain.Entity](key string, pick func(*resource.Workspace) *resource.Resource[T], render *Renderer, formOpts view.FormOptions) *EntityHandler[T] {
	return &EntityHandler[T]{
		key:      key,
		pick:     pick,
		render:   render,
		formOpts: formOpts,
	}
}

// Register mounts the entity routes under /{key}.
func (h *EntityHandler[T]) Register(r *mux.Router) {
	sub := r.PathPrefix("/" + h.key).Subrouter()

	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/new", h.NewForm).Methods(http.MethodGet)
	sub.HandleFunc("/new", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	sub.HandleFunc("/{id}", h.Detail).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/edit", h.EditForm).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/edit", h.Update).Methods(http.MethodPost)
	sub.HandleFunc("/{id}/delete", h.DeleteDialog).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/delete", h.Delete).Methods(http.MethodPost)
}

func (h *EntityHandler[T]) resource(w http.ResponseWriter, r *http.Request) (*resource.Resource[T], bool) {
	s := middleware.GetSession(r)
	if s == nil || s.Workspace == nil {
		h.render.Error(w, r, http.StatusInternalServerError, "No session is attached to the request.")
		return nil, false
	}
	return h.pick(s.Workspace), true
}

func (h *EntityHandler[T]) routeID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id, err := domain.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.render.Error(w, r, http.StatusNotFound, "The page does not exist.")
		return "", false
	}
	return id, true
}

func (h *EntityHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}

	list := view.NewList(res)
	err := list.Mount(r.Context())
	logFailure(r, err, "failed to fetch list")
	h.renderList(w, r, statusFor(err), list)
}

// Refresh reloads the collection for the list page's refresh action.
func (h *EntityHandler[T]) Refresh(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}

	list := view.NewList(res)
	err := list.Refresh(r.Context())
	logFailure(r, err, "failed to refresh list")
	h.renderList(w, r, statusFor(err), list)
}

func (h *EntityHandler[T]) renderList(w http.ResponseWriter, r *http.Request, status int, list *view.List[T]) {
	m := list.Model()
	h.render.Render(w, r, status, "list", Page{
		Title:   m.Plural,
		Active:  h.key,
		Content: ListPage{List: m},
	})
}

func (h *EntityHandler[T]) Detail(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	detail := view.NewDetail(res, id)
	err := detail.Mount(r.Context())
	logFailure(r, err, "failed to fetch entity")

	h.render.Render(w, r, statusFor(err), "detail", Page{
		Title:   res.Title,
		Active:  h.key,
		Content: detail.Model(),
	})
}

func (h *EntityHandler[T]) NewForm(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	h.showForm(w, r, view.NewForm(res, "", h.formOpts))
}

func (h *EntityHandler[T]) EditForm(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}
	h.showForm(w, r, view.NewForm(res, id, h.formOpts))
}

func (h *EntityHandler[T]) showForm(w http.ResponseWriter, r *http.Request, form *view.Form[T]) {
	err := form.Mount(r.Context())
	logFailure(r, err, "failed to load form")

	h.renderForm(w, r, statusFor(err), form, form.Defaults(), nil)
}

func (h *EntityHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	h.submit(w, r, res, view.NewForm(res, "", h.formOpts))
}

func (h *EntityHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}
	h.submit(w, r, res, view.NewForm(res, id, h.formOpts))
}

func (h *EntityHandler[T]) submit(w http.ResponseWriter, r *http.Request, res *resource.Resource[T], form *view.Form[T]) {
	if err := r.ParseForm(); err != nil {
		h.render.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	values := formValues(r, res)

	errs, err := form.Submit(r.Context(), values)
	if path, ok := form.Navigation(); ok {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	logFailure(r, err, "failed to save entity")

	status := statusFor(err)
	if len(errs) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.renderForm(w, r, status, form, values, errs)
}

func (h *EntityHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, form *view.Form[T], values, errs map[string]string) {
	m := form.Model(values, errs)
	h.render.Render(w, r, status, "form", Page{
		Title:   m.Title,
		Active:  h.key,
		Content: m,
	})
}

func (h *EntityHandler[T]) DeleteDialog(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	list := view.NewList(res)
	listErr := list.Mount(r.Context())
	logFailure(r, listErr, "failed to fetch list")

	dialog := view.NewDeleteDialog(res, id)
	err := dialog.Mount(r.Context())
	logFailure(r, err, "failed to fetch entity")

	h.renderDelete(w, r, statusFor(err), list, dialog)
}

func (h *EntityHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	dialog := view.NewDeleteDialog(res, id)
	err := dialog.Confirm(r.Context())
	if path, ok := dialog.Navigation(); ok {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	logFailure(r, err, "failed to delete entity")

	h.renderDelete(w, r, statusFor(err), view.NewList(res), dialog)
}

func (h *EntityHandler[T]) renderDelete(w http.ResponseWriter, r *http.Request, status int, list *view.List[T], dialog *view.DeleteDialog[T]) {
	lm := list.Model()
	dm := dialog.Model()
	h.render.Render(w, r, status, "list", Page{
		Title:   lm.Plural,
		Active:  h.key,
		Content: ListPage{List: lm, Delete: &dm},
	})
}

func formValues[T domain.Entity](r *http.Request, res *resource.Resource[T]) map[string]string {
	values := make(map[string]string, len(res.Fields)+len(res.Relations))
	for _, f := range res.Fields {
		values[f.Name] = r.PostForm.Get(f.Name)
	}
	for _, rel := range res.Relations {
		values[rel.Name()] = r.PostForm.Get(rel.Name())
	}
	return values
}

// statusFor maps a failed API call onto the status of the page showing it.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, store.ErrMissingID):
		return http.StatusBadRequest
	case apiclient.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func logFailure(r *http.Request, err error, msg string) {
	if err == nil {
		return
	}
	zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg(msg)
}
