// Package export renders a priced quote as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
)

const (
	QuoteSheet   = "Quote"
	MatchesSheet = "Matches"
)

// Service produces quote workbooks from pipeline snapshots.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// QuoteXLSX returns the workbook (as bytes) for a run snapshot. A snapshot
// without pricing still produces the header block and the matches sheet.
func (s *Service) QuoteXLSX(ctx context.Context, snap pipeline.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it so the quote is the first tab.
	if err := f.SetSheetName(f.GetSheetName(0), QuoteSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MatchesSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	idx, _ := f.GetSheetIndex(QuoteSheet)
	f.SetActiveSheet(idx)

	lines, err := writeQuote(f, snap)
	if err != nil {
		return nil, err
	}
	if err := writeMatches(f, snap); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", snap.RunID,
		"lines", lines,
		"matches", len(snap.Matches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile renders the workbook into dir and returns the file path.
func (s *Service) WriteFile(ctx context.Context, dir string, snap pipeline.Snapshot) (string, error) {
	data, err := s.QuoteXLSX(ctx, snap)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(snap))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// FileName is the workbook name for a run: quote-<run id>.xlsx.
func FileName(snap pipeline.Snapshot) string {
	id := snap.RunID
	if id == "" {
		id = "unsaved"
	}
	return "quote-" + id + ".xlsx"
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) row(row int, values ...any) {
	for i, v := range values {
		w.set(i+1, row, v)
	}
}

func writeQuote(f *excelize.File, snap pipeline.Snapshot) (int, error) {
	w := &sheetWriter{f: f, sheet: QuoteSheet}

	var client, deadline, contact string
	if snap.Extract != nil {
		client = snap.Extract.ClientName
		deadline = snap.Extract.SubmissionDeadline
		contact = snap.Extract.ContactEmail
	}
	w.row(1, "Client", client)
	w.row(2, "Submission Deadline", deadline)
	w.row(3, "Contact", contact)
	w.row(4, "Integrity Index", snap.Integrity.Index)
	w.row(5, "Status", string(snap.Integrity.Band))

	const tableRow = 7
	w.row(tableRow, "Description", "Quantity", "Unit Price", "Total", "Note")

	row := tableRow + 1
	var total float64
	if snap.Pricing != nil {
		for _, li := range snap.Pricing.LineItems {
			w.row(row, li.Description, li.Quantity, li.UnitPrice, li.Total, li.Note)
			row++
		}
		total = snap.Pricing.TotalCost
		if snap.Pricing.Degraded {
			w.row(row, "Pricing pending internal review")
			row++
		}
	}
	w.set(3, row, "Total")
	w.set(4, row, total)
	if w.err != nil {
		return 0, fmt.Errorf("write quote sheet: %w", w.err)
	}

	_ = f.SetColWidth(QuoteSheet, "A", "A", 48) // description / labels
	_ = f.SetColWidth(QuoteSheet, "B", "B", 28)
	_ = f.SetColWidth(QuoteSheet, "C", "D", 14) // amounts
	_ = f.SetColWidth(QuoteSheet, "E", "E", 40) // note
	return row - tableRow - 1, nil
}

func writeMatches(f *excelize.File, snap pipeline.Snapshot) error {
	w := &sheetWriter{f: f, sheet: MatchesSheet}
	w.row(1, "Requirement", "Quantity", "Product ID", "Product", "Spec Match", "Confidence", "Reasoning")
	for i, m := range snap.Matches {
		r := i + 2
		if m.IsService() {
			w.row(r, m.Requirement, m.EstimatedQuantity, "", "Service / constraint")
			continue
		}
		w.row(r, m.Requirement, m.EstimatedQuantity, m.ProductID, m.ProductName, m.SpecMatchScore, m.Confidence, truncate(m.Reasoning, 140))
	}
	if w.err != nil {
		return fmt.Errorf("write matches sheet: %w", w.err)
	}
	_ = f.SetColWidth(MatchesSheet, "A", "A", 48)
	_ = f.SetColWidth(MatchesSheet, "D", "D", 28)
	_ = f.SetColWidth(MatchesSheet, "G", "G", 60)
	return nil
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
