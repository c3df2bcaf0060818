package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type listResponse struct {
	Entries    []JournalEntry            `json:"entries"`
	Pagination internalShared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), scope, filter)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := internalShared.NewPagination(page, perPage, len(entries))
	start, end := pagination.Window()
	httpx.JSON(w, http.StatusOK, listResponse{Entries: append([]JournalEntry{}, entries[start:end]...), Pagination: pagination})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	var in PostingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if in.ReferenceType == "" {
		in.ReferenceType = RefManual
	}
	in.PostedBy = internalShared.ActorFromContext(r.Context())
	entry, err := h.service.Post(r.Context(), scope, in)
	if err != nil {
		h.logger.Warn("post journal", slog.String("scope", scope.Key()), slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, id, ok := h.target(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), scope, id)
	if err != nil {
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in.UpdatedBy = internalShared.ActorFromContext(r.Context())
	entry, err := h.service.Update(r.Context(), scope, id, in)
	if err != nil {
		h.logger.Warn("update journal", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), scope, id, internalShared.ActorFromContext(r.Context())); err != nil {
		h.logger.Warn("delete journal", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (internalShared.Scope, uuid.UUID, bool) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return internalShared.Scope{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.Classify(httpx.ErrNotFound, shared.ErrJournalNotFound))
		return internalShared.Scope{}, uuid.Nil, false
	}
	return scope, id, true
}

func parseFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	var filter ListFilter
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, httpx.Classify(httpx.ErrValidation, err)
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, httpx.Classify(httpx.ErrValidation, err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	filter.ReferenceType = ReferenceType(q.Get("reference_type"))
	return filter, nil
}
