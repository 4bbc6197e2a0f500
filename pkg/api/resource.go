package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/auth"
	"github.com/etm-murmansk/site/pkg/content"
	"github.com/etm-murmansk/site/pkg/httputil"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/etm-murmansk/site/pkg/storage"
	"github.com/sirupsen/logrus"
)

// ListResponse is the envelope of list endpoints
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// CreatedResponse is returned after a record is created
type CreatedResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// resource serves the CRUD routes of one content collection
type resource[T any] struct {
	routeKind RouteKind
	kind      content.Kind[T]
	records   *storage.Records[T]
	sanitizer *content.Sanitizer
	metrics   *observability.Metrics
}

func newResource[T any](routeKind RouteKind, kind content.Kind[T], deps Dependencies, sanitizer *content.Sanitizer) *resource[T] {
	records := storage.NewRecords(deps.DB, kind.Table)
	if deps.Clock != nil {
		records.WithClock(deps.Clock)
	}
	return &resource[T]{
		routeKind: routeKind,
		kind:      kind,
		records:   records,
		sanitizer: sanitizer,
		metrics:   deps.Metrics,
	}
}

func (h *resource[T]) routes() []Route {
	name := h.kind.Resource
	return []Route{
		{Kind: h.routeKind, Method: http.MethodGet, Resource: name, Handler: h.list},
		{Kind: h.routeKind, Method: http.MethodGet, Resource: name, WithID: true, Handler: h.get},
		{Kind: h.routeKind, Method: http.MethodPost, Resource: name, Protected: true, Handler: h.create},
		{Kind: h.routeKind, Method: http.MethodPut, Resource: name, WithID: true, Protected: true, Handler: h.update},
		{Kind: h.routeKind, Method: http.MethodDelete, Resource: name, WithID: true, Protected: true, Handler: h.delete},
	}
}

func (h *resource[T]) present(rec *T) {
	if h.kind.Present != nil {
		h.kind.Present(rec, h.sanitizer)
	}
}

func (h *resource[T]) notFound() error {
	return apperr.NotFound(h.kind.Messages.NotFound)
}

func (h *resource[T]) mutated(r *http.Request, op string, id int64) {
	if h.metrics != nil {
		h.metrics.RecordMutations.WithLabelValues(h.kind.Resource, op).Inc()
	}
	adminID, _ := auth.AdminIDFromContext(r.Context())
	observability.FromContext(r.Context()).WithFields(logrus.Fields{
		"resource": h.kind.Resource,
		"op":       op,
		"id":       id,
		"admin_id": adminID,
	}).Info("record changed")
}

func (h *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	q := h.kind.Sort.Query(content.ListParams{
		Limit:  httputil.QueryInt(r, "limit", content.DefaultLimit),
		Offset: httputil.QueryInt(r, "offset", 0),
		Sort:   httputil.QueryString(r, "sort", ""),
	})

	items, total, err := h.records.List(r.Context(), q)
	if err != nil {
		httputil.WriteAppError(w, r, apperr.Internal(err))
		return
	}
	for i := range items {
		h.present(&items[i])
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse[T]{
		Data:   items,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

func (h *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathInt64(r, "id")
	if !ok {
		httputil.WriteAppError(w, r, h.notFound())
		return
	}

	rec, err := h.records.Get(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, r, h.storageError(err))
		return
	}
	h.present(rec)
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	rec, err := h.decode(r)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	id, err := h.records.Create(r.Context(), rec)
	if err != nil {
		httputil.WriteAppError(w, r, apperr.Internal(err))
		return
	}
	h.mutated(r, "create", id)

	httputil.WriteJSON(w, http.StatusCreated, CreatedResponse{
		Success: true,
		ID:      strconv.FormatInt(id, 10),
		Message: h.kind.Messages.Created,
	})
}

// update replaces every writable column. The record must exist before the
// body is looked at.
func (h *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathInt64(r, "id")
	if !ok {
		httputil.WriteAppError(w, r, h.notFound())
		return
	}
	if _, err := h.records.Get(r.Context(), id); err != nil {
		httputil.WriteAppError(w, r, h.storageError(err))
		return
	}

	rec, err := h.decode(r)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.records.Update(r.Context(), id, rec); err != nil {
		httputil.WriteAppError(w, r, h.storageError(err))
		return
	}
	h.mutated(r, "update", id)
	httputil.WriteMessage(w, http.StatusOK, h.kind.Messages.Updated)
}

func (h *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathInt64(r, "id")
	if !ok {
		httputil.WriteAppError(w, r, h.notFound())
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		httputil.WriteAppError(w, r, h.storageError(err))
		return
	}
	h.mutated(r, "delete", id)
	httputil.WriteMessage(w, http.StatusOK, h.kind.Messages.Deleted)
}

func (h *resource[T]) decode(r *http.Request) (*T, error) {
	p, err := content.ReadPayload(r.Body)
	if err != nil {
		return nil, err
	}
	return h.kind.Decode(p)
}

func (h *resource[T]) storageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return h.notFound()
	}
	return apperr.Internal(err)
}
