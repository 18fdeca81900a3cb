// Package export writes bilingual review workbooks for translated jobs.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

const (
	chunksSheet  = "Chunks"
	summarySheet = "Summary"

	// excelize rejects cell text over 32767 characters
	maxCellRunes = 32000
)

// ReviewMeta describes the job a workbook belongs to.
type ReviewMeta struct {
	JobID        uuid.UUID
	FileName     string
	SourceLang   string
	TargetLang   string
	Method       string
	Pages        int
	GeneratedAt  time.Time
	OutputFileID *uuid.UUID
}

// Service produces XLSX bytes; it holds no state besides the logger.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReviewXLSX returns a workbook with one row per translated chunk and a summary sheet.
func (s *Service) ReviewXLSX(ctx context.Context, meta ReviewMeta, chunks []translator.TranslatedChunk) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if index, _ := f.GetSheetIndex(chunksSheet); index == -1 {
		if _, err := f.NewSheet(chunksSheet); err != nil {
			return nil, err
		}
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	// drop the default sheet so Chunks comes first
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(chunksSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"#",
		"Source (" + meta.SourceLang + ")",
		"Translation (" + meta.TargetLang + ")",
		"Source Characters",
		"Attempts",
		"Cached",
		"Duration (ms)",
		"Reviewer Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(chunksSheet, cell, h)
	}

	row := 2
	for _, c := range chunks {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(chunksSheet, cell, v)
		}
		write(1, c.Index+1)
		write(2, truncate(c.Source, maxCellRunes))
		write(3, truncate(c.Translated, maxCellRunes))
		write(4, len([]rune(c.Source)))
		write(5, c.Attempts)
		write(6, yesNo(c.Cached))
		write(7, c.Duration.Milliseconds())
		write(8, "")
		row++
	}

	_ = f.SetColWidth(chunksSheet, "A", "A", 6)
	_ = f.SetColWidth(chunksSheet, "B", "C", 70)
	_ = f.SetColWidth(chunksSheet, "D", "G", 14)
	_ = f.SetColWidth(chunksSheet, "H", "H", 40)
	if style, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(3, max(row-1, 1))
		_ = f.SetCellStyle(chunksSheet, "B1", last, style)
	}

	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	output := ""
	if meta.OutputFileID != nil {
		output = meta.OutputFileID.String()
	}
	summary := [][2]any{
		{"Job ID", meta.JobID.String()},
		{"File", meta.FileName},
		{"Source Language", meta.SourceLang},
		{"Target Language", meta.TargetLang},
		{"Extraction Method", meta.Method},
		{"Pages", meta.Pages},
		{"Chunks", len(chunks)},
		{"Output File ID", output},
		{"Generated At", generated.UTC().Format(time.RFC3339)},
	}
	for i, kv := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", meta.JobID.String(),
		"rows", len(chunks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
