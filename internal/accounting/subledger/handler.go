package subledger

import (
	"log/slog"
	"net/http"
	"strconv"

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
	r.Get("/{kind}/{id}", h.Show)
}

// Show renders a counterparty statement.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, ok := internalShared.ScopeFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.RespondError(w, httpx.Classify(httpx.ErrNotFound, err))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, httpx.Classify(httpx.ErrNotFound, shared.ErrCounterpartyNotFound))
		return
	}
	stmt, err := h.service.Statement(r.Context(), scope, kind, id)
	if err != nil {
		if !shared.IsValidation(err) {
			h.logger.Warn("ledger statement", slog.String("kind", string(kind)), slog.Int64("id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}
