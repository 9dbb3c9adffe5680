package dataprocessing

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(t *testing.T, entity, rawDate string, points float64) PointRecord {
	t.Helper()
	row := RawRow{"Data": rawDate, "Pontos": strconv.FormatFloat(points, 'f', -1, 64)}
	rec, err := NewParser().ParseRow(row, entity)
	require.NoError(t, err)
	return *rec
}

func TestMergeEntity_NewEntityAdoptedVerbatim(t *testing.T) {
	folder := NewFolderAggregate()

	partial := NewEntityAggregate("Ana")
	partial.Add(makeRecord(t, "Ana", "20/04/2024", 10))

	MergeEntity(folder, partial)

	require.Contains(t, folder.Entities, "Ana")
	assert.Same(t, partial, folder.Entities["Ana"])
}

func TestMergeEntity_AccumulatesAcrossFiles(t *testing.T) {
	folder := NewFolderAggregate()

	abril := NewEntityAggregate("Ana")
	abril.Add(makeRecord(t, "Ana", "20/04/2024", 10))
	abril.Add(makeRecord(t, "Ana", "27/04/2024", 5))

	maio := NewEntityAggregate("Ana")
	maio.Add(makeRecord(t, "Ana", "02/05/2024", 8))

	MergeEntity(folder, abril)
	MergeEntity(folder, maio)

	ana := folder.Entities["Ana"]
	assert.Equal(t, 23.0, ana.TotalPoints)
	assert.Equal(t, 3, ana.TotalRecords)
	require.Len(t, ana.Records, 3)

	// Records keep arrival order, not date order.
	assert.Equal(t, 10.0, ana.Records[0].Points)
	assert.Equal(t, 5.0, ana.Records[1].Points)
	assert.Equal(t, 8.0, ana.Records[2].Points)

	// 2024-04-20 belongs to the cycle starting March 26 ("Abril");
	// both later records belong to "Maio".
	assert.Equal(t, 10.0, ana.MonthlyBuckets["Abril"].Points)
	assert.Equal(t, 13.0, ana.MonthlyBuckets["Maio"].Points)
	assert.Equal(t, 2, ana.MonthlyBuckets["Maio"].Records)
}

func TestMergeEntity_DoubleMergeDoubles(t *testing.T) {
	// Merging the same partial twice doubles everything: the merger
	// performs no implicit deduplication.
	folder := NewFolderAggregate()

	build := func() *EntityAggregate {
		partial := NewEntityAggregate("Bruno")
		partial.Add(makeRecord(t, "Bruno", "10/04/2024", 7))
		return partial
	}

	MergeEntity(folder, build())
	MergeEntity(folder, build())

	bruno := folder.Entities["Bruno"]
	assert.Equal(t, 14.0, bruno.TotalPoints)
	assert.Equal(t, 2, bruno.TotalRecords)
	assert.Equal(t, 14.0, bruno.MonthlyBuckets["Abril"].Points)
	assert.Equal(t, 2, bruno.MonthlyBuckets["Abril"].Records)
}

func TestEntityAggregate_BucketSumsEqualTotals(t *testing.T) {
	entity := NewEntityAggregate("Carla")
	entity.Add(makeRecord(t, "Carla", "26/03/2024", 3))
	entity.Add(makeRecord(t, "Carla", "05/04/2024", 4))
	entity.Add(makeRecord(t, "Carla", "20/04/2024", 6))
	entity.Add(makeRecord(t, "Carla", "28/04/2024", 2))

	var weekly, monthly float64
	for _, b := range entity.WeeklyBuckets {
		weekly += b.Points
	}
	for _, b := range entity.MonthlyBuckets {
		monthly += b.Points
	}

	assert.Equal(t, entity.TotalPoints, weekly)
	assert.Equal(t, entity.TotalPoints, monthly)
	assert.Equal(t, 15.0, entity.TotalPoints)
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "Week 1", WeekLabel(1))
	assert.Equal(t, "Week 5", WeekLabel(5))
	// Out-of-range weeks clamp rather than panic.
	assert.Equal(t, "Week 1", WeekLabel(0))
	assert.Equal(t, "Week 5", WeekLabel(9))
}
