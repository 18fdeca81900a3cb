package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/legal-translator/internal/app"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCMD().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var root = &cobra.Command{
		Use:           "legaltr",
		Short:         "Operate the legal document translation pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		migrateCMD(),
		dbhealthCMD(),
		extractCMD(),
		chunkCMD(),
		translateCMD(),
		statusCMD(),
		runCMD(),
	)
	return root
}

// cliLogger writes to stderr so command output on stdout stays machine readable.
func cliLogger(cfg *common.Config, w io.Writer) *slog.Logger {
	logger := app.NewLogger(cfg.Log, w)
	slog.SetDefault(logger)
	return logger
}

func openDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	return app.OpenDB(ctx, cfg.Database, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
