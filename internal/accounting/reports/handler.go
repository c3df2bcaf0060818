package reports

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

const (
	rateLimit  = 30
	rateWindow = time.Minute
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the report endpoints behind a per-scope rate limit.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "report rate limit exceeded")
		}),
	)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/trial-balance", h.report(func(ctx context.Context, scope internalShared.Scope, _ *http.Request) (any, error) {
			return h.service.TrialBalance(ctx, scope)
		}))
		gr.Get("/profit-loss", h.report(func(ctx context.Context, scope internalShared.Scope, r *http.Request) (any, error) {
			period, err := parsePeriod(r, h.service.now().UTC())
			if err != nil {
				return nil, err
			}
			return h.service.ProfitAndLoss(ctx, scope, period)
		}))
		gr.Get("/balance-sheet", h.report(func(ctx context.Context, scope internalShared.Scope, _ *http.Request) (any, error) {
			return h.service.BalanceSheet(ctx, scope)
		}))
		gr.Get("/aged-receivables", h.report(func(ctx context.Context, scope internalShared.Scope, _ *http.Request) (any, error) {
			return h.service.AgedReceivables(ctx, scope)
		}))
		gr.Get("/aged-payables", h.report(func(ctx context.Context, scope internalShared.Scope, _ *http.Request) (any, error) {
			return h.service.AgedPayables(ctx, scope)
		}))
		gr.Get("/summary", h.report(func(ctx context.Context, scope internalShared.Scope, _ *http.Request) (any, error) {
			return h.service.Summary(ctx, scope)
		}))
	})
}

func (h *Handler) report(load func(context.Context, internalShared.Scope, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := internalShared.ScopeFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.HTTPError(internalShared.ErrScopeRequired))
			return
		}
		out, err := load(r.Context(), scope, r)
		if err != nil {
			h.logger.Error("build report", slog.String("path", r.URL.Path), slog.String("scope", scope.Key()), slog.Any("error", err))
			httpx.RespondError(w, shared.HTTPError(err))
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	if scope, ok := internalShared.ScopeFromContext(r.Context()); ok {
		return scope.Key(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// parsePeriod reads start_date and end_date (RFC3339 or YYYY-MM-DD). A
// missing end is now and a date-only end covers the whole day; a missing
// start is the first of the end's month.
func parsePeriod(r *http.Request, now time.Time) (*Period, error) {
	rawStart := r.URL.Query().Get("start_date")
	rawEnd := r.URL.Query().Get("end_date")
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}
	end := now
	if rawEnd != "" {
		t, dateOnly, err := parseDate(rawEnd)
		if err != nil {
			return nil, err
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
	}
	p := MonthToDate(end)
	if rawStart != "" {
		t, _, err := parseDate(rawStart)
		if err != nil {
			return nil, err
		}
		p.Start = t
	}
	return &p, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: invalid date %q", httpx.ErrValidation, raw)
	}
	return t, true, nil
}
