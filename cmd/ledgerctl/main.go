package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/odyssey-ledger/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	root := cli.NewRootCommand(cli.Deps{
		Module: func(ctx context.Context) (*accounting.Module, func(), error) {
			if cfg.UsesMemoryStore() {
				return nil, nil, errors.New("ledgerctl requires STORE_DRIVER=postgres")
			}
			runtime, err := app.Bootstrap(ctx, cfg, logger, nil)
			if err != nil {
				return nil, nil, err
			}
			return runtime.Module, runtime.Close, nil
		},
		Jobs: func() (*cli.JobsCLI, error) {
			return cli.NewJobsCLI(cfg.RedisAddr), nil
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		_, _ = fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
		os.Exit(1)
	}
}
