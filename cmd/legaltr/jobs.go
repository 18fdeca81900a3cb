package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/legal-translator/internal/app"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/pipeline"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
)

func parseJobArg(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid job id %q (must be UUID): %w", raw, err)
	}
	return id, nil
}

func statusCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print a job's status, progress and source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobArg(args[0])
			if err != nil {
				return err
			}
			cfg := common.LoadConfig()
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			db, err := openDB(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)

			jf, err := repository.NewJobRepository(db, logger).Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), jf)
		},
	}
}

// runCMD drives one stored job to completion in this process.
func runCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job-id>",
		Short: "Run the pipeline for an uploaded job and print its final summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobArg(args[0])
			if err != nil {
				return err
			}
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			ctx := cmd.Context()

			db, err := openDB(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)

			signer, err := storage.NewSigner(cfg.Storage.SigningSecret)
			if err != nil {
				return err
			}
			blobs, err := storage.NewFSStore(cfg.Storage.Root, cfg.Server.PublicBaseURL, signer, logger)
			if err != nil {
				return err
			}
			tcache, closeCache, err := app.NewCache(ctx, cfg.Cache, logger)
			if err != nil {
				return err
			}
			defer closeCache()

			orch, err := pipeline.NewOrchestrator(app.PipelineDeps(cfg, db, blobs, tcache, nil, logger), logger)
			if err != nil {
				return err
			}
			sum, err := orch.Start(ctx, id)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), sum); err != nil {
				return err
			}
			if sum.ErrorMessage != nil {
				return fmt.Errorf("job %s failed: %s", id, *sum.ErrorMessage)
			}
			return nil
		},
	}
}
