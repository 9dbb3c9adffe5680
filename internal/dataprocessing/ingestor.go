package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"pontoscli/internal/config"
	"pontoscli/internal/files"
)

// Ingestor runs the full ingestion pipeline: it walks the source
// catalog, decodes each spreadsheet and merges per-file aggregates into
// one fresh FolderAggregate. Files and rows are processed sequentially
// in catalog order, so merge order is deterministic.
type Ingestor struct {
	store   files.Store
	catalog config.Catalog
	goals   config.GoalsConfig
	parser  *Parser
	logger  *slog.Logger
}

// NewIngestor creates an ingestor over the given store and catalog.
func NewIngestor(store files.Store, catalog config.Catalog, goals config.GoalsConfig, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:   store,
		catalog: catalog,
		goals:   goals,
		parser:  NewParser(),
		logger:  logger.With(slog.String("component", "ingestor")),
	}
}

// Run ingests the complete catalog and returns a fresh folder
// aggregate. Missing and undecodable files are logged and skipped; any
// readable subset yields a best-effort aggregate. Run fails only when
// the context is cancelled.
func (i *Ingestor) Run(ctx context.Context) (*FolderAggregate, error) {
	folder := NewFolderAggregate()

	for _, folderEntry := range i.catalog {
		for _, fileName := range folderEntry.Files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			path := filepath.Join(folderEntry.Name, fileName)
			partial, err := i.IngestFile(ctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				// Missing and corrupt files are expected in
				// historical folders; availability beats
				// completeness here.
				i.logger.WarnContext(ctx, "skipping source file",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}

			folder.Stats.TotalFiles++
			MergeEntity(folder, partial)
		}
	}

	for _, entity := range folder.Entities {
		folder.Stats.TotalEntities++
		folder.Stats.TotalRecords += entity.TotalRecords
		folder.Stats.TotalPoints += entity.TotalPoints
	}
	folder.Stats.TotalValue = folder.Stats.TotalPoints * i.goals.UnitValue
	folder.LastProcessed = time.Now()

	i.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("files", folder.Stats.TotalFiles),
		slog.Int("entities", folder.Stats.TotalEntities),
		slog.Int("records", folder.Stats.TotalRecords),
		slog.Float64("points", folder.Stats.TotalPoints))

	return folder, nil
}

// IngestFile decodes one spreadsheet into a per-entity partial
// aggregate. The entity name is the filename's leading token, up to the
// first space (everything before the month token).
func (i *Ingestor) IngestFile(ctx context.Context, path string) (*EntityAggregate, error) {
	exists, err := i.store.Exists(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("existence check failed: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("file not found")
	}

	raw, err := i.store.ReadBytes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	rows, err := decodeFirstSheet(raw)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	entityName := EntityFromFilename(path)
	aggregate := NewEntityAggregate(entityName)

	for idx, row := range rows {
		record, err := i.parser.ParseRow(row, entityName)
		if err != nil {
			if errors.Is(err, ErrRowSkipped) {
				continue
			}
			// A bad row never aborts the file.
			i.logger.DebugContext(ctx, "skipping row",
				slog.String("path", path),
				slog.Int("row", idx+2),
				slog.String("error", err.Error()))
			continue
		}
		aggregate.Add(*record)
	}

	i.logger.DebugContext(ctx, "file ingested",
		slog.String("path", path),
		slog.String("entity", entityName),
		slog.Int("records", aggregate.TotalRecords))

	return aggregate, nil
}

// EntityFromFilename derives the canonical entity name from a source
// file path: the base name's substring before the first space.
func EntityFromFilename(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, ' '); i >= 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// decodeFirstSheet decodes the first sheet of an xlsx workbook into raw
// rows keyed by the header row's field names.
func decodeFirstSheet(raw []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for j, h := range rows[0] {
		headers[j] = strings.TrimSpace(h)
	}

	out := make([]RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(RawRow, len(headers))
		for j, cell := range cells {
			if j < len(headers) && headers[j] != "" {
				row[headers[j]] = cell
			}
		}
		out = append(out, row)
	}
	return out, nil
}
