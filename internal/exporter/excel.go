// Package exporter re-encodes aggregated point records into
// downloadable archives.
package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"pontoscli/internal/dataprocessing"
)

// recordHeader is the column layout of every entity sheet.
var recordHeader = []string{"Data", "Pontos", "Refinaria", "Observações", "Mês", "Semana"}

// ExcelWriter builds xlsx archives from a folder aggregate.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates an Excel archive writer.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_writer"))}
}

// WriteArchive encodes the full per-entity record lists into one xlsx
// workbook: a summary sheet plus one sheet per entity, and returns the
// serialized bytes for download.
func (w *ExcelWriter) WriteArchive(ctx context.Context, folder *dataprocessing.FolderAggregate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, folder); err != nil {
		return nil, err
	}

	for _, name := range folder.EntityNames() {
		if err := w.writeEntitySheet(f, folder.Entities[name]); err != nil {
			return nil, fmt.Errorf("write sheet for %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	w.logger.InfoContext(ctx, "archive written",
		slog.Int("entities", len(folder.Entities)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, folder *dataprocessing.FolderAggregate) error {
	const sheet = "Resumo"
	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]string{"Nome", "Pontos", "Registros"}); err != nil {
		return err
	}
	for i, name := range folder.EntityNames() {
		entity := folder.Entities[name]
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{entity.Name, entity.TotalPoints, entity.TotalRecords}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	totalRow := []interface{}{"Total", folder.Stats.TotalPoints, folder.Stats.TotalRecords}
	cell := fmt.Sprintf("A%d", len(folder.Entities)+3)
	return f.SetSheetRow(sheet, cell, &totalRow)
}

func (w *ExcelWriter) writeEntitySheet(f *excelize.File, entity *dataprocessing.EntityAggregate) error {
	if _, err := f.NewSheet(entity.Name); err != nil {
		return err
	}

	if err := f.SetSheetRow(entity.Name, "A1", &recordHeader); err != nil {
		return err
	}

	for i, rec := range entity.Records {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			rec.Date.Format("02/01/2006"),
			rec.Points,
			rec.Site,
			rec.Observations,
			rec.CycleMonth,
			rec.CycleWeek,
		}
		if err := f.SetSheetRow(entity.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
