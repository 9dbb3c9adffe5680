package dataprocessing

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pontoscli/internal/config"
)

// memStore serves workbook bytes from memory.
type memStore struct {
	files map[string][]byte
	reads int
}

func (m *memStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *memStore) ReadBytes(_ context.Context, path string) ([]byte, error) {
	raw, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	m.reads++
	return raw, nil
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func testCatalog() config.Catalog {
	return config.Catalog{
		{Name: "Abril 2024", Files: []string{"Ana Abril.xlsx", "Bruno Abril.xlsx"}},
		{Name: "Maio 2024", Files: []string{"Ana Maio.xlsx"}},
	}
}

func testStore(t *testing.T) *memStore {
	t.Helper()
	return &memStore{files: map[string][]byte{
		"Abril 2024/Ana Abril.xlsx": buildWorkbook(t, [][]interface{}{
			{"Data", "Pontos", "Refinaria"},
			{"20/04/2024", "10", "Unidade Norte"},
			// Day 26+ belongs to the next cycle, so this record lands
			// in "Maio" despite living in the Abril file.
			{"27/04/2024", "5", "Unidade Norte"},
		}),
		"Maio 2024/Ana Maio.xlsx": buildWorkbook(t, [][]interface{}{
			{"Data", "Pontos"},
			{"02/05/2024", "8"},
		}),
	}}
}

func TestIngestor_Run(t *testing.T) {
	store := testStore(t)
	ing := NewIngestor(store, testCatalog(), config.DefaultGoals(), nil)

	folder, err := ing.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, folder.Entities, "Ana")
	ana := folder.Entities["Ana"]
	assert.Equal(t, 23.0, ana.TotalPoints)
	assert.Equal(t, 3, ana.TotalRecords)
	assert.Equal(t, 10.0, ana.MonthlyBuckets["Abril"].Points)
	assert.Equal(t, 13.0, ana.MonthlyBuckets["Maio"].Points)

	// "Bruno Abril.xlsx" is in the catalog but not on disk; the run
	// still succeeds and only counts the readable files.
	assert.NotContains(t, folder.Entities, "Bruno")
	assert.Equal(t, 2, folder.Stats.TotalFiles)
	assert.Equal(t, 1, folder.Stats.TotalEntities)
	assert.Equal(t, 3, folder.Stats.TotalRecords)
	assert.Equal(t, 23.0, folder.Stats.TotalPoints)
	assert.Equal(t, 23.0*config.DefaultGoals().UnitValue, folder.Stats.TotalValue)
	assert.False(t, folder.LastProcessed.IsZero())
}

func TestIngestor_Run_CorruptFileSkipped(t *testing.T) {
	store := testStore(t)
	store.files["Abril 2024/Bruno Abril.xlsx"] = []byte("not a workbook")

	ing := NewIngestor(store, testCatalog(), config.DefaultGoals(), nil)

	folder, err := ing.Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, folder.Entities, "Bruno")
	assert.Equal(t, 23.0, folder.Stats.TotalPoints)
}

func TestIngestor_Run_EmptyFileStillRegistersEntity(t *testing.T) {
	store := testStore(t)
	store.files["Abril 2024/Bruno Abril.xlsx"] = buildWorkbook(t, [][]interface{}{
		{"Data", "Pontos"},
	})

	ing := NewIngestor(store, testCatalog(), config.DefaultGoals(), nil)

	folder, err := ing.Run(context.Background())
	require.NoError(t, err)

	// An entity with a readable but empty file still shows up, with
	// zeroed totals, so every team member gets a chart column.
	require.Contains(t, folder.Entities, "Bruno")
	assert.Equal(t, 0.0, folder.Entities["Bruno"].TotalPoints)
	assert.Equal(t, 2, folder.Stats.TotalEntities)
}

func TestIngestor_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := NewIngestor(testStore(t), testCatalog(), config.DefaultGoals(), nil)

	_, err := ing.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestor_IngestFile_SkipsBadRows(t *testing.T) {
	store := &memStore{files: map[string][]byte{
		"Abril 2024/Carla Abril.xlsx": buildWorkbook(t, [][]interface{}{
			{"Data", "Pontos"},
			{"20/04/2024", "10"},
			{"", ""},                // blank row
			{"20/04/2024", "0"},     // zero points
			{"not a date", "5"},     // bad date
			{"21/04/2024", "quatro"}, // bad points
			{"22/04/2024", "3"},
		}),
	}}

	ing := NewIngestor(store, nil, config.DefaultGoals(), nil)

	agg, err := ing.IngestFile(context.Background(), "Abril 2024/Carla Abril.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "Carla", agg.Name)
	assert.Equal(t, 2, agg.TotalRecords)
	assert.Equal(t, 13.0, agg.TotalPoints)
}

func TestIngestor_IngestFile_MissingFile(t *testing.T) {
	ing := NewIngestor(&memStore{files: map[string][]byte{}}, nil, config.DefaultGoals(), nil)

	_, err := ing.IngestFile(context.Background(), "Abril 2024/Ana Abril.xlsx")
	assert.Error(t, err)
}

func TestEntityFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Abril 2024/Ana Abril.xlsx", "Ana"},
		{"Ana Abril.xlsx", "Ana"},
		{"Maio 2024/Diego Maio.xlsx", "Diego"},
		{"relatorio.xlsx", "relatorio"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EntityFromFilename(tt.path), tt.path)
	}
}
