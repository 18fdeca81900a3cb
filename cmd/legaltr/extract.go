package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/legal-translator/internal/app"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
)

type extractReport struct {
	Method     extract.Method `json:"method"`
	Pages      int            `json:"pages"`
	TotalChars int            `json:"total_chars"`
	Scanned    *bool          `json:"scanned,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Warnings   []string       `json:"warnings,omitempty"`
}

func extractCMD() *cobra.Command {
	var text, classify bool
	var cmd = &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract text from a local PDF, falling back to OCR for scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			ctx := cmd.Context()

			res, err := app.NewExtractor(cfg.OCR, logger).Extract(ctx, args[0])
			if err != nil {
				return err
			}
			if text {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), res.RawText())
				return err
			}
			report := extractReport{
				Method:     res.Method,
				Pages:      len(res.Pages),
				TotalChars: res.TotalChars(),
				DurationMS: res.Duration.Milliseconds(),
				Warnings:   res.Warnings,
			}
			if classify {
				scanned, err := app.NewClassifier(cfg.OCR, logger).IsScanned(ctx, args[0])
				if err != nil {
					return err
				}
				report.Scanned = &scanned
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the extracted text instead of a summary")
	cmd.Flags().BoolVar(&classify, "classify", false, "also report whether the text layer looks scanned")
	return cmd
}

type chunkReport struct {
	Index      int  `json:"index"`
	Runes      int  `json:"runes"`
	Structural bool `json:"structural"`
}

func chunkCMD() *cobra.Command {
	var maxChars int
	var mode string
	var cmd = &cobra.Command{
		Use:   "chunk <file.pdf>",
		Short: "Show how a local PDF would be split into translation requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if maxChars > 0 {
				cfg.Translate.MaxChars = maxChars
			}
			if mode != "" {
				cfg.Translate.ChunkMode = mode
			}
			logger := cliLogger(cfg, cmd.ErrOrStderr())

			res, err := app.NewExtractor(cfg.OCR, logger).Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			chunks, err := app.NewChunker(cfg.Translate).Chunk(res)
			if err != nil {
				return err
			}
			out := make([]chunkReport, len(chunks))
			for i, c := range chunks {
				out[i] = chunkReport{Index: c.Index, Runes: c.Len(), Structural: c.Structural}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "override SARVAM_MAX_CHARS")
	cmd.Flags().StringVar(&mode, "mode", "", "plain or structural (default CHUNK_MODE)")
	return cmd
}
