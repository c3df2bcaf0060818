// Package cli implements the operator commands behind ledgerctl.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/integrity"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// ExitViolations is returned by the integrity command when drift was found.
const ExitViolations = 10

// LedgerCLI runs operator commands against an assembled ledger module.
type LedgerCLI struct {
	module *accounting.Module
}

// NewLedgerCLI constructs the helper around module.
func NewLedgerCLI(module *accounting.Module) *LedgerCLI {
	return &LedgerCLI{module: module}
}

// InitChartOptions defines flags for init-chart.
type InitChartOptions struct {
	Scope  string
	Actor  string
	Stdout io.Writer
	Stderr io.Writer
}

// InitChartCommand seeds the default chart of accounts for one scope.
func (c *LedgerCLI) InitChartCommand(ctx context.Context, opts InitChartOptions) int {
	stdout, stderr := writers(opts.Stdout, opts.Stderr)
	scope, err := shared.ParseScopeKey(opts.Scope)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init-chart: --scope: %v\n", err)
		return 1
	}
	created, err := c.module.Accounts.Initialize(ctx, scope, opts.Actor)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init-chart: %v\n", err)
		return 1
	}
	if created {
		_, _ = fmt.Fprintf(stdout, "chart of accounts created for %s\n", scope.Key())
	} else {
		_, _ = fmt.Fprintf(stdout, "chart of accounts already present for %s\n", scope.Key())
	}
	return 0
}

// TrialBalanceOptions defines flags for trial-balance.
type TrialBalanceOptions struct {
	Scope  string
	Stdout io.Writer
	Stderr io.Writer
}

// TrialBalanceCommand prints the trial balance of one scope as JSON.
func (c *LedgerCLI) TrialBalanceCommand(ctx context.Context, opts TrialBalanceOptions) int {
	stdout, stderr := writers(opts.Stdout, opts.Stderr)
	scope, err := shared.ParseScopeKey(opts.Scope)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "trial-balance: --scope: %v\n", err)
		return 1
	}
	tb, err := c.module.Reports.TrialBalance(ctx, scope)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "trial-balance: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tb); err != nil {
		_, _ = fmt.Fprintf(stderr, "trial-balance: encode json: %v\n", err)
		return 1
	}
	return 0
}

// IntegrityOptions defines flags for integrity.
type IntegrityOptions struct {
	Scopes     []string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// IntegrityCommand checks the given scopes, or every scope when none are
// given. It returns ExitViolations when any stored balance drifted.
func (c *LedgerCLI) IntegrityCommand(ctx context.Context, opts IntegrityOptions) int {
	stdout, stderr := writers(opts.Stdout, opts.Stderr)
	scopes := make([]shared.Scope, 0, len(opts.Scopes))
	for _, key := range opts.Scopes {
		scope, err := shared.ParseScopeKey(key)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "integrity: --scope: %v\n", err)
			return 1
		}
		scopes = append(scopes, scope)
	}
	if len(scopes) == 0 {
		listed, err := c.module.Accounts.Scopes(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "integrity: list scopes: %v\n", err)
			return 1
		}
		scopes = listed
	}

	reports := make([]integrity.Report, 0, len(scopes))
	violations := 0
	for _, scope := range scopes {
		report, err := c.module.Integrity.Check(ctx, scope)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "integrity: %s: %v\n", scope.Key(), err)
			return 1
		}
		violations += len(report.Violations)
		reports = append(reports, report)
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(reports); err != nil {
			_, _ = fmt.Fprintf(stderr, "integrity: encode json: %v\n", err)
			return 1
		}
	} else {
		renderIntegrityHuman(stdout, reports)
	}
	if violations > 0 {
		return ExitViolations
	}
	return 0
}

func renderIntegrityHuman(out io.Writer, reports []integrity.Report) {
	if len(reports) == 0 {
		_, _ = fmt.Fprintln(out, "No scopes with a chart of accounts.")
		return
	}
	for _, report := range reports {
		status := "ok"
		if !report.OK() {
			status = fmt.Sprintf("%d violation(s)", len(report.Violations))
		}
		_, _ = fmt.Fprintf(out, "%s: %d accounts, %d entries, %d counterparties: %s\n",
			report.Scope, report.Accounts, report.Entries, report.Counterparties, status)
		for _, v := range report.Violations {
			_, _ = fmt.Fprintf(out, " - %s\n", v)
		}
	}
}

func writers(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
