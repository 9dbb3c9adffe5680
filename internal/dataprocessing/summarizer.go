package dataprocessing

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"pontoscli/internal/config"
	"pontoscli/internal/cycle"
)

// Summarizer derives chart-ready series and summary statistics from a
// folder aggregate. Everything here is recomputed freshly on each call
// from the cached aggregate; nothing is cached separately.
type Summarizer struct {
	goals  config.GoalsConfig
	logger *slog.Logger
}

// NewSummarizer creates a summarizer with the given goal constants.
func NewSummarizer(goals config.GoalsConfig, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		goals:  goals,
		logger: logger.With(slog.String("component", "summarizer")),
	}
}

// SeriesRow is one chart row: a label plus one value per entity column.
type SeriesRow struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
}

// TeamSlice is one entry of the team distribution chart.
type TeamSlice struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Color  string  `json:"color"`
}

// Summary holds the statistics-card values.
type Summary struct {
	BestPerformer       string    `json:"best_performer"`
	BestPerformerPoints float64   `json:"best_performer_points"`
	TeamAverage         float64   `json:"team_average"`
	TotalPoints         float64   `json:"total_points"`
	TotalValue          float64   `json:"total_value"`
	GoalProgress        float64   `json:"goal_progress"`
	GoalThousands       float64   `json:"goal_thousands"`
	TotalRecords        int       `json:"total_records"`
	TotalEntities       int       `json:"total_entities"`
	LastProcessed       time.Time `json:"last_processed"`
}

// WeeklySeries returns one row per cycle week 1-5 with one column per
// entity; entities without a bucket for a week contribute 0.
func (s *Summarizer) WeeklySeries(folder *FolderAggregate) []SeriesRow {
	names := folder.EntityNames()
	rows := make([]SeriesRow, 0, cycle.WeeksPerCycle)

	for week := 1; week <= cycle.WeeksPerCycle; week++ {
		label := WeekLabel(week)
		row := SeriesRow{Label: label, Values: make(map[string]float64, len(names))}
		for _, name := range names {
			row.Values[name] = bucketPoints(folder.Entities[name].WeeklyBuckets, label)
		}
		rows = append(rows, row)
	}
	return rows
}

// MonthlySeries returns one row per distinct cycle-month label observed
// across all entities, sorted in calendar-month order.
func (s *Summarizer) MonthlySeries(folder *FolderAggregate) []SeriesRow {
	names := folder.EntityNames()

	seen := make(map[string]bool)
	var labels []string
	for _, name := range names {
		for label := range folder.Entities[name].MonthlyBuckets {
			if !seen[label] {
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		return cycle.MonthOrder(labels[i]) < cycle.MonthOrder(labels[j])
	})

	rows := make([]SeriesRow, 0, len(labels))
	for _, label := range labels {
		row := SeriesRow{Label: label, Values: make(map[string]float64, len(names))}
		for _, name := range names {
			row.Values[name] = bucketPoints(folder.Entities[name].MonthlyBuckets, label)
		}
		rows = append(rows, row)
	}
	return rows
}

// TeamDistribution returns one slice per entity with its total points
// and fixed display color.
func (s *Summarizer) TeamDistribution(folder *FolderAggregate) []TeamSlice {
	names := folder.EntityNames()
	slices := make([]TeamSlice, 0, len(names))
	for _, name := range names {
		slices = append(slices, TeamSlice{
			Name:   name,
			Points: folder.Entities[name].TotalPoints,
			Color:  config.ColorFor(name),
		})
	}
	return slices
}

// BuildSummary derives the statistics cards: best performer (strictly
// greatest total, first encountered wins ties), team average excluding
// the configured contractor, and progress against the team goal.
func (s *Summarizer) BuildSummary(folder *FolderAggregate) Summary {
	summary := Summary{
		TotalPoints:   folder.Stats.TotalPoints,
		TotalValue:    folder.Stats.TotalValue,
		TotalRecords:  folder.Stats.TotalRecords,
		TotalEntities: folder.Stats.TotalEntities,
		LastProcessed: folder.LastProcessed,
		GoalThousands: round1(s.goals.TeamMonthlyGoal / 1000),
	}

	var averageSum float64
	var averageCount int

	for _, name := range folder.EntityNames() {
		entity := folder.Entities[name]

		if entity.TotalPoints > summary.BestPerformerPoints {
			summary.BestPerformer = entity.Name
			summary.BestPerformerPoints = entity.TotalPoints
		}

		if entity.Name != s.goals.ExcludedFromAverage {
			averageSum += entity.TotalPoints
			averageCount++
		}
	}

	if averageCount > 0 {
		summary.TeamAverage = averageSum / float64(averageCount)
	}
	if s.goals.TeamMonthlyGoal > 0 {
		summary.GoalProgress = round1(folder.Stats.TotalPoints / s.goals.TeamMonthlyGoal * 100)
	}

	return summary
}

func bucketPoints(buckets map[string]*Bucket, label string) float64 {
	if b, ok := buckets[label]; ok {
		return b.Points
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
