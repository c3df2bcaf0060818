package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Service manages the per-scope chart of accounts.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Initialize seeds the default chart when the scope has no accounts yet.
// It reports whether any accounts were created.
func (s *Service) Initialize(ctx context.Context, scope internalShared.Scope, actor string) (bool, error) {
	if err := scope.Validate(); err != nil {
		return false, err
	}
	n, err := s.repo.Count(ctx, scope)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	now := s.now().UTC()
	rows := make([]Account, 0, len(defaultChart))
	for _, entry := range defaultChart {
		rows = append(rows, Account{
			ID:          uuid.New(),
			Code:        entry.code,
			Name:        entry.name,
			Type:        entry.typ,
			Category:    entry.category,
			Description: "",
			Balance:     decimal.Zero,
			IsSystem:    true,
			IsActive:    true,
			CreatedBy:   actor,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.repo.InsertMany(ctx, scope, rows); err != nil {
		return false, fmt.Errorf("accounts: seed chart: %w", err)
	}
	return true, nil
}

// Create adds a user-defined account with a zero balance.
func (s *Service) Create(ctx context.Context, scope internalShared.Scope, in CreateInput, actor string) (Account, error) {
	if err := scope.Validate(); err != nil {
		return Account{}, err
	}
	in.Type = AccountType(strings.ToLower(string(in.Type)))
	if !in.Type.Valid() {
		return Account{}, fmt.Errorf("%w: %q", shared.ErrInvalidAccountType, in.Type)
	}
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return Account{}, fmt.Errorf("%w: code and name required", shared.ErrInvalidLine)
	}
	now := s.now().UTC()
	return s.repo.Insert(ctx, scope, Account{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
		Balance:     decimal.Zero,
		IsActive:    true,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) List(ctx context.Context, scope internalShared.Scope) ([]Account, error) {
	return s.repo.List(ctx, scope)
}

// LookupByCode returns the account or shared.ErrAccountNotFound.
func (s *Service) LookupByCode(ctx context.Context, scope internalShared.Scope, code string) (Account, error) {
	return s.repo.FindByCode(ctx, scope, code)
}

// LookupByName matches the account name exactly, ignoring case.
func (s *Service) LookupByName(ctx context.Context, scope internalShared.Scope, name string) (Account, error) {
	accounts, err := s.repo.List(ctx, scope)
	if err != nil {
		return Account{}, err
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	for _, acc := range accounts {
		if fold.String(acc.Name) == want {
			return acc, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

// AdjustBalance applies a signed delta to the account's running balance.
func (s *Service) AdjustBalance(ctx context.Context, scope internalShared.Scope, code string, delta decimal.Decimal) error {
	return s.repo.AdjustBalance(ctx, scope, code, delta)
}

// Scopes lists every scope that owns a chart of accounts.
func (s *Service) Scopes(ctx context.Context) ([]internalShared.Scope, error) {
	return s.repo.ListScopes(ctx)
}
