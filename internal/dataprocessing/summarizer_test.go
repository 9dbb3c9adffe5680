package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pontoscli/internal/config"
)

func buildFolder(t *testing.T) *FolderAggregate {
	t.Helper()
	folder := NewFolderAggregate()

	ana := NewEntityAggregate("Ana")
	ana.Add(makeRecord(t, "Ana", "20/04/2024", 10)) // Abril, week 4
	ana.Add(makeRecord(t, "Ana", "27/04/2024", 5))  // Maio, week 1
	MergeEntity(folder, ana)

	bruno := NewEntityAggregate("Bruno")
	bruno.Add(makeRecord(t, "Bruno", "02/05/2024", 8)) // Maio, week 1
	MergeEntity(folder, bruno)

	for _, entity := range folder.Entities {
		folder.Stats.TotalEntities++
		folder.Stats.TotalRecords += entity.TotalRecords
		folder.Stats.TotalPoints += entity.TotalPoints
	}
	return folder
}

func TestSummarizer_WeeklySeries(t *testing.T) {
	s := NewSummarizer(config.DefaultGoals(), nil)
	rows := s.WeeklySeries(buildFolder(t))

	require.Len(t, rows, 5)
	assert.Equal(t, "Week 1", rows[0].Label)

	// Week 4 holds Ana's Abril record; Bruno has nothing there.
	assert.Equal(t, 10.0, rows[3].Values["Ana"])
	assert.Equal(t, 0.0, rows[3].Values["Bruno"])

	// Week 1 holds both Maio records.
	assert.Equal(t, 5.0, rows[0].Values["Ana"])
	assert.Equal(t, 8.0, rows[0].Values["Bruno"])
}

func TestSummarizer_MonthlySeries_CalendarOrder(t *testing.T) {
	s := NewSummarizer(config.DefaultGoals(), nil)
	rows := s.MonthlySeries(buildFolder(t))

	require.Len(t, rows, 2)
	// Calendar order, not alphabetical ("Abril" < "Maio" happens to
	// agree alphabetically, so assert on a case where it would not).
	assert.Equal(t, "Abril", rows[0].Label)
	assert.Equal(t, "Maio", rows[1].Label)
	assert.Equal(t, 10.0, rows[0].Values["Ana"])
	assert.Equal(t, 5.0, rows[1].Values["Ana"])
	assert.Equal(t, 8.0, rows[1].Values["Bruno"])
}

func TestSummarizer_MonthlySeries_NotAlphabetical(t *testing.T) {
	folder := NewFolderAggregate()
	diego := NewEntityAggregate("Diego")
	diego.Add(makeRecord(t, "Diego", "10/02/2024", 1)) // Fevereiro
	diego.Add(makeRecord(t, "Diego", "10/08/2024", 2)) // Agosto
	MergeEntity(folder, diego)

	rows := NewSummarizer(config.DefaultGoals(), nil).MonthlySeries(folder)

	require.Len(t, rows, 2)
	// Alphabetically "Agosto" sorts before "Fevereiro"; calendar
	// order must win.
	assert.Equal(t, "Fevereiro", rows[0].Label)
	assert.Equal(t, "Agosto", rows[1].Label)
}

func TestSummarizer_TeamDistribution(t *testing.T) {
	s := NewSummarizer(config.DefaultGoals(), nil)
	slices := s.TeamDistribution(buildFolder(t))

	require.Len(t, slices, 2)
	assert.Equal(t, TeamSlice{Name: "Ana", Points: 15, Color: config.ColorFor("Ana")}, slices[0])
	assert.Equal(t, TeamSlice{Name: "Bruno", Points: 8, Color: config.ColorFor("Bruno")}, slices[1])
}

func TestSummarizer_TeamDistribution_UnmappedColorFallsBack(t *testing.T) {
	folder := NewFolderAggregate()
	guest := NewEntityAggregate("Zuleide")
	guest.Add(makeRecord(t, "Zuleide", "10/04/2024", 1))
	MergeEntity(folder, guest)

	slices := NewSummarizer(config.DefaultGoals(), nil).TeamDistribution(folder)

	require.Len(t, slices, 1)
	assert.Equal(t, config.NeutralColor, slices[0].Color)
}

func TestSummarizer_BuildSummary_AverageExcludesContractor(t *testing.T) {
	goals := config.DefaultGoals()
	goals.ExcludedFromAverage = "Xavier"

	folder := NewFolderAggregate()
	for name, total := range map[string]float64{"Ana": 100, "Bruno": 200, "Xavier": 900} {
		entity := NewEntityAggregate(name)
		entity.TotalPoints = total
		entity.TotalRecords = 1
		MergeEntity(folder, entity)
		folder.Stats.TotalPoints += total
		folder.Stats.TotalEntities++
	}

	summary := NewSummarizer(goals, nil).BuildSummary(folder)

	// (100+200)/2, not (100+200+900)/3.
	assert.Equal(t, 150.0, summary.TeamAverage)
	// The contractor still counts for best performer.
	assert.Equal(t, "Xavier", summary.BestPerformer)
	assert.Equal(t, 900.0, summary.BestPerformerPoints)
}

func TestSummarizer_BuildSummary_GoalProgress(t *testing.T) {
	goals := config.DefaultGoals()
	goals.TeamMonthlyGoal = 800

	folder := buildFolder(t) // 23 points total

	summary := NewSummarizer(goals, nil).BuildSummary(folder)

	// 23/800*100 = 2.875 -> 2.9 at one decimal.
	assert.Equal(t, 2.9, summary.GoalProgress)
	assert.Equal(t, 0.8, summary.GoalThousands)
	assert.Equal(t, 23.0, summary.TotalPoints)
}

func TestSummarizer_BuildSummary_TieKeepsFirstEncountered(t *testing.T) {
	folder := NewFolderAggregate()
	for _, name := range []string{"Bruno", "Ana"} {
		entity := NewEntityAggregate(name)
		entity.TotalPoints = 50
		MergeEntity(folder, entity)
	}

	summary := NewSummarizer(config.DefaultGoals(), nil).BuildSummary(folder)

	// Iteration is in stable (lexical) entity order; a tie keeps the
	// first encountered, so "Ana" wins over "Bruno".
	assert.Equal(t, "Ana", summary.BestPerformer)
}
