package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"

	"pontoscli/internal/dataprocessing"
)

// CSVWriter renders the team summary as CSV, mainly for spreadsheet
// re-import by consumers that do not want a full workbook.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV summary writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteSummary encodes one row per entity with totals and bucket sums.
func (w *CSVWriter) WriteSummary(folder *dataprocessing.FolderAggregate, options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if options.BOMPrefix {
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	writer := csv.NewWriter(&buf)

	header := []string{"Nome", "Pontos", "Registros"}
	for week := 1; week <= 5; week++ {
		header = append(header, dataprocessing.WeekLabel(week))
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header row: %w", err)
	}

	for _, name := range folder.EntityNames() {
		entity := folder.Entities[name]
		row := []string{
			entity.Name,
			fmt.Sprintf("%.1f", entity.TotalPoints),
			fmt.Sprintf("%d", entity.TotalRecords),
		}
		for week := 1; week <= 5; week++ {
			var points float64
			if b, ok := entity.WeeklyBuckets[dataprocessing.WeekLabel(week)]; ok {
				points = b.Points
			}
			row = append(row, fmt.Sprintf("%.1f", points))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV data row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
