package posting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

const idempotencyModule = "ledger.events"

// IdempotencyPort rejects replays of the same Idempotency-Key.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, scope internalShared.Scope, key, module string) error
	Delete(ctx context.Context, scope internalShared.Scope, key, module string) error
}

type Handler struct {
	service     *Service
	idempotency IdempotencyPort
	logger      *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service, idempotency IdempotencyPort) *Handler {
	return &Handler{logger: logger, service: service, idempotency: idempotency}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

type eventResponse struct {
	Outcome
	Warning string `json:"warning,omitempty"`
}

// Create posts one business event. A sub-ledger failure after the journal
// committed still answers 201 with a warning.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope, ok := internalShared.ScopeFromContext(ctx)
	if !ok {
		httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
		return
	}
	var evt Event
	if err := httpx.DecodeJSON(r, &evt); err != nil {
		httpx.RespondError(w, err)
		return
	}
	evt.Actor = internalShared.ActorFromContext(ctx)

	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(ctx, scope, key, idempotencyModule); err != nil {
			httpx.RespondError(w, shared.HTTPError(err))
			return
		}
	}

	out, err := h.service.Post(ctx, scope, evt)
	if err != nil {
		var failure *shared.PostingFailure
		if errors.As(err, &failure) && failure.JournalPersisted() {
			httpx.JSON(w, http.StatusCreated, eventResponse{Outcome: out, Warning: failure.Error()})
			return
		}
		if key != "" && h.idempotency != nil {
			if delErr := h.idempotency.Delete(ctx, scope, key, idempotencyModule); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		httpx.RespondError(w, shared.HTTPError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, eventResponse{Outcome: out})
}
