package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AccountLister reads the chart with current balances.
type AccountLister interface {
	List(ctx context.Context, scope internalShared.Scope) ([]accounts.Account, error)
}

// Service assembles read-side reports. Balances are read without a snapshot,
// so a report may observe a posting that is still being applied.
type Service struct {
	accounts AccountLister
	sources  SourceRepository
	cache    *Cache
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

func NewService(accs AccountLister, sources SourceRepository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{accounts: accs, sources: sources, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// TrialBalance is cached per scope until the next journal mutation.
func (s *Service) TrialBalance(ctx context.Context, scope internalShared.Scope) (TrialBalance, error) {
	var out TrialBalance
	err := s.cached(ctx, scope, "trial_balance", &out, func(ctx context.Context) (any, error) {
		accs, err := s.accounts.List(ctx, scope)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(accs), nil
	})
	return out, err
}

// BalanceSheet is cached per scope until the next journal mutation.
func (s *Service) BalanceSheet(ctx context.Context, scope internalShared.Scope) (BalanceSheet, error) {
	var out BalanceSheet
	err := s.cached(ctx, scope, "balance_sheet", &out, func(ctx context.Context) (any, error) {
		accs, err := s.accounts.List(ctx, scope)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(accs), nil
	})
	return out, err
}

// ProfitAndLoss uses month-to-date when period is nil. It is not cached
// because its sales path does not follow journal mutations.
func (s *Service) ProfitAndLoss(ctx context.Context, scope internalShared.Scope, period *Period) (ProfitAndLoss, error) {
	if err := scope.Validate(); err != nil {
		return ProfitAndLoss{}, err
	}
	p := MonthToDate(s.now().UTC())
	if period != nil {
		p = *period
	}
	var (
		accs  []accounts.Account
		sales []Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accs, err = s.accounts.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.sources.SalesBetween(gctx, scope, p.Start, p.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProfitAndLoss{}, err
	}
	return BuildProfitAndLoss(accs, sales, p), nil
}

func (s *Service) AgedReceivables(ctx context.Context, scope internalShared.Scope) (Aging, error) {
	if err := scope.Validate(); err != nil {
		return Aging{}, err
	}
	sales, err := s.sources.OpenReceivables(ctx, scope)
	if err != nil {
		return Aging{}, err
	}
	return BuildAging(ReceivableItems(sales), s.now().UTC()), nil
}

func (s *Service) AgedPayables(ctx context.Context, scope internalShared.Scope) (Aging, error) {
	if err := scope.Validate(); err != nil {
		return Aging{}, err
	}
	orders, err := s.sources.OpenPayables(ctx, scope)
	if err != nil {
		return Aging{}, err
	}
	return BuildAging(PayableItems(orders), s.now().UTC()), nil
}

// Summary loads its four inputs concurrently.
func (s *Service) Summary(ctx context.Context, scope internalShared.Scope) (Summary, error) {
	if err := scope.Validate(); err != nil {
		return Summary{}, err
	}
	now := s.now().UTC()
	month := MonthToDate(now)
	var in SummaryInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.Accounts, err = s.accounts.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		in.Receivables, err = s.sources.OpenReceivables(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		in.Payables, err = s.sources.OpenPayables(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		in.MonthSales, err = s.sources.SalesBetween(gctx, scope, month.Start, month.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return BuildSummary(in, now), nil
}

// cached serves report from the versioned cache and collapses concurrent
// builds of the same key. A cache failure falls back to a direct build.
func (s *Service) cached(ctx context.Context, scope internalShared.Scope, report string, dest any, build func(context.Context) (any, error)) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	key, err := s.cache.BuildKey(ctx, scope, report)
	if err != nil {
		s.logger.Warn("report cache key", slog.String("report", report), slog.Any("error", err))
		var direct *Cache
		return direct.FetchJSON(ctx, "", dest, build)
	}
	// The flight is shared by every waiter on key, so it must outlive the
	// request that happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(flightCtx, key, &raw, build); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
