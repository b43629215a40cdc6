package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
)

// Requester is the part of *apiclient.Client the repositories need.
type Requester interface {
	Do(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

type ListParams struct {
	Page int
	Size int
	Sort string
}

// EntityRepository is the REST collection behind one entity type.
type EntityRepository[T domain.Entity] interface {
	List(ctx context.Context, params ListParams) ([]T, error)
	FindByID(ctx context.Context, id domain.ID) (T, error)
	Create(ctx context.Context, entity T) (T, *apiclient.Alert, error)
	Update(ctx context.Context, entity T) (T, *apiclient.Alert, error)
	// Patch sends the set fields of entity as a merge patch. Every name in
	// clear is sent as null so the API removes it.
	Patch(ctx context.Context, entity T, clear ...string) (T, *apiclient.Alert, error)
	Delete(ctx context.Context, id domain.ID) (*apiclient.Alert, error)
	Path() string
}

type entityRepository[T domain.Entity] struct {
	api  Requester
	path string
	now  func() time.Time
}

// NewEntityRepository serves the collection at path, e.g. "/api/note-books".
func NewEntityRepository[T domain.Entity](api Requester, path string) EntityRepository[T] {
	return &entityRepository[T]{
		api:  api,
		path: path,
		now:  time.Now,
	}
}

func (r *entityRepository[T]) Path() string {
	return r.path
}

func (r *entityRepository[T]) List(ctx context.Context, params ListParams) ([]T, error) {
	query := url.Values{}
	if params.Page > 0 || params.Size > 0 {
		query.Set("page", strconv.Itoa(params.Page))
		query.Set("size", strconv.Itoa(params.Size))
	}
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}
	query.Set("cacheBuster", strconv.FormatInt(r.now().UnixMilli(), 10))

	var entities []T
	if _, err := r.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   r.path,
		Query:  query,
		Result: &entities,
	}); err != nil {
		return nil, err
	}

	if entities == nil {
		entities = []T{}
	}
	return entities, nil
}

func (r *entityRepository[T]) FindByID(ctx context.Context, id domain.ID) (T, error) {
	var entity T
	_, err := r.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   r.itemPath(id),
		Result: &entity,
	})
	return entity, err
}

func (r *entityRepository[T]) Create(ctx context.Context, entity T) (T, *apiclient.Alert, error) {
	return r.write(ctx, http.MethodPost, r.path, "", entity)
}

func (r *entityRepository[T]) Update(ctx context.Context, entity T) (T, *apiclient.Alert, error) {
	id := entity.EntityID()
	if id == nil {
		var zero T
		return zero, nil, fmt.Errorf("failed to update %s: %w", r.path, domain.ErrEmptyID)
	}
	return r.write(ctx, http.MethodPut, r.itemPath(*id), "", entity)
}

func (r *entityRepository[T]) Patch(ctx context.Context, entity T, clear ...string) (T, *apiclient.Alert, error) {
	id := entity.EntityID()
	if id == nil {
		var zero T
		return zero, nil, fmt.Errorf("failed to patch %s: %w", r.path, domain.ErrEmptyID)
	}
	var body any = entity
	if len(clear) > 0 {
		body = domain.MergePatch[T]{Entity: entity, Clear: clear}
	}
	return r.write(ctx, http.MethodPatch, r.itemPath(*id), apiclient.MergePatchJSON, body)
}

func (r *entityRepository[T]) Delete(ctx context.Context, id domain.ID) (*apiclient.Alert, error) {
	resp, err := r.api.Do(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   r.itemPath(id),
	})
	if err != nil {
		return nil, err
	}
	return resp.Alert, nil
}

func (r *entityRepository[T]) write(ctx context.Context, method, path, contentType string, body any) (T, *apiclient.Alert, error) {
	var saved T
	resp, err := r.api.Do(ctx, apiclient.Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
		Result:      &saved,
	})
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return saved, resp.Alert, nil
}

func (r *entityRepository[T]) itemPath(id domain.ID) string {
	return r.path + "/" + url.PathEscape(id.String())
}
