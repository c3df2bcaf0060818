package accounting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/posting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
)

// Handler wires the ledger endpoints.
type Handler struct {
	logger *slog.Logger
	module *Module
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, module *Module) *Handler {
	return &Handler{logger: logger, module: module}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", accounts.NewHandler(h.logger, h.module.Accounts).MountRoutes)
	r.Route("/journal", journals.NewHandler(h.logger, h.module.Journals).MountRoutes)
	r.Route("/events", posting.NewHandler(h.logger, h.module.Posting, h.module.idempotency).MountRoutes)
	r.Route("/ledger", subledger.NewHandler(h.logger, h.module.Subledger).MountRoutes)
	r.Route("/reports", reports.NewHandler(h.logger, h.module.Reports).MountRoutes)
}
