package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
)

func migrateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the files and translation_jobs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			db, err := openDB(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", db.Dialect)
			return nil
		},
	}
}

func dbhealthCMD() *cobra.Command {
	var timeout time.Duration
	var cmd = &cobra.Command{
		Use:   "dbhealth",
		Short: "Ping the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			db, err := openDB(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)

			if err := db.HealthCheck(cmd.Context(), timeout, logger); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DB health: OK")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
