package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

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
	r.Post("/initialize", h.Initialize)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	accounts, err := h.service.List(r.Context(), scope)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	acc, err := h.service.Create(r.Context(), scope, in, internalShared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("create account", slog.String("code", in.Code), slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	created, err := h.service.Initialize(r.Context(), scope, internalShared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("initialize chart", slog.String("scope", scope.Key()), slog.Any("error", err))
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}
