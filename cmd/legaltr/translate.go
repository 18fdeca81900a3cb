package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/app"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/export"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
	"github.com/joseph-ayodele/legal-translator/internal/render"
	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

// translateCMD runs extract, translate and build on a local file without the
// database or blob store.
func translateCMD() *cobra.Command {
	var out, src, tgt, review string
	var pages, compare bool
	var cmd = &cobra.Command{
		Use:   "translate <file.pdf>",
		Short: "Translate a local PDF and write the translated PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			logger := cliLogger(cfg, cmd.ErrOrStderr())
			ctx := cmd.Context()
			in := args[0]

			if cfg.Translate.APIKey == "" {
				return fmt.Errorf("SARVAM_API_KEY is required")
			}
			if pages && review != "" {
				return fmt.Errorf("--review needs chunk translation; drop --pages")
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(in), constants.TranslatedName(in))
			}

			res, err := app.NewExtractor(cfg.OCR, logger).Extract(ctx, in)
			if err != nil {
				return err
			}
			if res.IsEmpty() {
				return common.NewExtractionError(extract.CodeNoText, "document has no extractable text", nil)
			}

			tcache, closeCache, err := app.NewCache(ctx, cfg.Cache, logger)
			if err != nil {
				return err
			}
			defer closeCache()
			client := app.NewTranslator(cfg.Translate, tcache, nil, logger)
			chunker := app.NewChunker(cfg.Translate)
			progress := translator.ProgressFunc(func(cur, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "translated %d/%d\n", cur, total)
			})

			doc := render.Document{
				Title:       strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)),
				SourceLang:  src,
				TargetLang:  tgt,
				GeneratedAt: time.Now(),
			}
			var translated []translator.TranslatedChunk
			if pages {
				tp, err := client.TranslateDocument(ctx, res, chunker, src, tgt, progress)
				if err != nil {
					return err
				}
				doc.Pages = tp
			} else {
				chunks, err := chunker.Chunk(res)
				if err != nil {
					return err
				}
				translated, err = client.Translate(ctx, chunks, src, tgt, progress)
				if err != nil {
					return err
				}
				doc.Text = translator.Join(translated, "\n")
			}

			builder := app.NewReconstructor(cfg.Render, logger)
			var pdf []byte
			if compare {
				pdf, err = builder.BuildComparison(ctx, render.Comparison{
					Title:       doc.Title,
					SourceLang:  src,
					TargetLang:  tgt,
					Original:    res.RawText(),
					Translated:  doc.Body(),
					GeneratedAt: doc.GeneratedAt,
				})
			} else {
				pdf, err = builder.Build(ctx, doc)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if review != "" {
				xlsx, err := export.NewService(logger).ReviewXLSX(ctx, export.ReviewMeta{
					JobID:       uuid.Nil,
					FileName:    filepath.Base(in),
					SourceLang:  src,
					TargetLang:  tgt,
					Method:      string(res.Method),
					Pages:       len(res.Pages),
					GeneratedAt: doc.GeneratedAt,
				}, translated)
				if err != nil {
					return err
				}
				if err := os.WriteFile(review, xlsx, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", review, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), review)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF (default <name>_translated.pdf next to the input)")
	cmd.Flags().StringVar(&src, "src", constants.DefaultSourceLang, "source language")
	cmd.Flags().StringVar(&tgt, "tgt", constants.DefaultTargetLang, "target language")
	cmd.Flags().BoolVar(&pages, "pages", false, "translate page markup so headings and paragraphs survive")
	cmd.Flags().BoolVar(&compare, "compare", false, "write a side-by-side original/translation document")
	cmd.Flags().StringVar(&review, "review", "", "also write a bilingual XLSX review workbook here")
	return cmd
}
