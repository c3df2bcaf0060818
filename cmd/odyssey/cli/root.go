package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// ExitError carries a non-zero process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Deps opens the resources commands run against.
type Deps struct {
	// Module assembles the ledger; the returned func releases it.
	Module func(ctx context.Context) (*accounting.Module, func(), error)
	Jobs   func() (*JobsCLI, error)
}

// NewRootCommand creates the ledgerctl command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the odyssey ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInitChartCommand(deps),
		newTrialBalanceCommand(deps),
		newIntegrityCommand(deps),
		newJobsCommand(deps),
	)
	return root
}

func withLedger(cmd *cobra.Command, deps Deps, run func(*LedgerCLI) int) error {
	if deps.Module == nil {
		return fmt.Errorf("%s: ledger not configured", cmd.Name())
	}
	module, release, err := deps.Module(cmd.Context())
	if err != nil {
		return err
	}
	defer release()
	if code := run(NewLedgerCLI(module)); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func newInitChartCommand(deps Deps) *cobra.Command {
	var opts InitChartOptions
	cmd := &cobra.Command{
		Use:   "init-chart",
		Short: "Seed the default chart of accounts for a scope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return withLedger(cmd, deps, func(c *LedgerCLI) int {
				return c.InitChartCommand(cmd.Context(), opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key, e.g. tenant:42 or demo:7")
	cmd.Flags().StringVar(&opts.Actor, "actor", "ledgerctl", "actor recorded in the audit trail")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newTrialBalanceCommand(deps Deps) *cobra.Command {
	var opts TrialBalanceOptions
	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance of a scope as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return withLedger(cmd, deps, func(c *LedgerCLI) int {
				return c.TrialBalanceCommand(cmd.Context(), opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key, e.g. tenant:42 or demo:7")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newIntegrityCommand(deps Deps) *cobra.Command {
	var opts IntegrityOptions
	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Recompute balances from history and report drift",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return withLedger(cmd, deps, func(c *LedgerCLI) int {
				return c.IntegrityCommand(cmd.Context(), opts)
			})
		},
	}
	cmd.Flags().StringSliceVar(&opts.Scopes, "scope", nil, "scope keys to check (default: all)")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "print reports as JSON")
	return cmd
}

func newJobsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Enqueue and inspect background jobs",
	}

	var trigger TriggerOptions
	enqueue := &cobra.Command{
		Use:   "enqueue <job>",
		Short: fmt.Sprintf("Enqueue %s or %s", jobs.TaskLedgerIntegrity, jobs.TaskIdempotencyCleanup),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger.Name = args[0]
			return withJobs(deps, func(c *JobsCLI) error {
				info, err := c.Trigger(cmd.Context(), trigger)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	}
	enqueue.Flags().StringSliceVar(&trigger.Scopes, "scope", nil, "scope keys for the integrity job")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print default queue statistics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobs(deps, func(c *JobsCLI) error {
				out, err := c.InspectQueue(cmd.Context())
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			})
		},
	}

	cmd.AddCommand(enqueue, stats)
	return cmd
}

func withJobs(deps Deps, run func(*JobsCLI) error) error {
	if deps.Jobs == nil {
		return errors.New("jobs: queue not configured")
	}
	c, err := deps.Jobs()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return run(c)
}
