// Package integrity recomputes ledger balances from their history and reports
// every place where a stored running balance disagrees with it.
package integrity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/subledger"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AccountReader lists the chart with running balances.
type AccountReader interface {
	List(ctx context.Context, scope internalShared.Scope) ([]accounts.Account, error)
}

// JournalReader lists posted entries with their lines.
type JournalReader interface {
	List(ctx context.Context, scope internalShared.Scope, filter journals.ListFilter) ([]journals.JournalEntry, error)
}

// StatementReader lists counterparties with their sub-ledger rows.
type StatementReader interface {
	Statements(ctx context.Context, scope internalShared.Scope, kind subledger.Kind) ([]subledger.Statement, error)
}

// ViolationKind classifies a failed check.
type ViolationKind string

const (
	ViolationAccountBalance      ViolationKind = "account_balance"
	ViolationUnbalancedEntry     ViolationKind = "unbalanced_entry"
	ViolationCounterpartyBalance ViolationKind = "counterparty_balance"
)

// Violation is one stored figure that disagrees with its history.
type Violation struct {
	Kind     ViolationKind   `json:"kind"`
	Subject  string          `json:"subject"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: stored %s expected %s", v.Kind, v.Subject, v.Stored.StringFixed(2), v.Expected.StringFixed(2))
}

// Report is the outcome of checking one scope.
type Report struct {
	Scope          string      `json:"scope"`
	Accounts       int         `json:"accounts"`
	Entries        int         `json:"entries"`
	Counterparties int         `json:"counterparties"`
	Violations     []Violation `json:"violations"`
}

// OK reports whether the scope passed every check.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

type Checker struct {
	accounts   AccountReader
	journals   JournalReader
	statements StatementReader
	logger     *slog.Logger
}

func NewChecker(accs AccountReader, entries JournalReader, statements StatementReader, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{accounts: accs, journals: entries, statements: statements, logger: logger}
}

// Check runs every invariant for scope. Balances are compared exactly; entry
// totals use the posting tolerance.
func (c *Checker) Check(ctx context.Context, scope internalShared.Scope) (Report, error) {
	if err := scope.Validate(); err != nil {
		return Report{}, err
	}
	report := Report{Scope: scope.Key(), Violations: []Violation{}}

	chart, err := c.accounts.List(ctx, scope)
	if err != nil {
		return Report{}, fmt.Errorf("list accounts: %w", err)
	}
	entries, err := c.journals.List(ctx, scope, journals.ListFilter{})
	if err != nil {
		return Report{}, fmt.Errorf("list journal entries: %w", err)
	}
	report.Accounts = len(chart)
	report.Entries = len(entries)

	replay := make(map[string]decimal.Decimal, len(chart))
	for _, entry := range entries {
		debit, credit := decimal.Zero, decimal.Zero
		for _, line := range entry.Lines {
			debit = debit.Add(line.Debit)
			credit = credit.Add(line.Credit)
			if line.Linked() {
				replay[line.AccountCode] = replay[line.AccountCode].Add(line.Delta())
			}
		}
		if !shared.WithinTolerance(debit, credit) {
			report.Violations = append(report.Violations, Violation{
				Kind:     ViolationUnbalancedEntry,
				Subject:  entry.EntryNumber,
				Stored:   debit,
				Expected: credit,
			})
		}
	}
	for _, acc := range chart {
		expected := replay[acc.Code]
		if !acc.Balance.Equal(expected) {
			report.Violations = append(report.Violations, Violation{
				Kind:     ViolationAccountBalance,
				Subject:  acc.Code + " " + acc.Name,
				Stored:   acc.Balance,
				Expected: expected,
			})
		}
	}

	if c.statements != nil {
		for _, kind := range []subledger.Kind{subledger.KindCustomer, subledger.KindVendor} {
			stmts, err := c.statements.Statements(ctx, scope, kind)
			if err != nil {
				return Report{}, fmt.Errorf("list %s statements: %w", kind, err)
			}
			report.Counterparties += len(stmts)
			for _, stmt := range stmts {
				expected := decimal.Zero
				for _, e := range stmt.Entries {
					expected = expected.Add(kind.Delta(e.Debit, e.Credit))
				}
				if !stmt.Counterparty.Balance.Equal(expected) {
					report.Violations = append(report.Violations, Violation{
						Kind:     ViolationCounterpartyBalance,
						Subject:  fmt.Sprintf("%s %d %s", kind, stmt.Counterparty.ID, stmt.Counterparty.Name),
						Stored:   stmt.Counterparty.Balance,
						Expected: expected,
					})
				}
			}
		}
	}

	for _, v := range report.Violations {
		c.logger.Warn("ledger integrity violation", slog.String("scope", report.Scope), slog.String("violation", v.String()))
	}
	return report, nil
}
