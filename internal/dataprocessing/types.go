package dataprocessing

import (
	"sort"
	"time"
)

// PointRecord is one observed unit of work extracted from a source
// spreadsheet row. Records are immutable once constructed and owned by
// the EntityAggregate that contains them.
type PointRecord struct {
	Date         time.Time `json:"date"`
	EntityName   string    `json:"entity_name"`
	Site         string    `json:"site,omitempty"`
	Points       float64   `json:"points"`
	Observations string    `json:"observations,omitempty"`
	CycleMonth   string    `json:"cycle_month"`
	CycleWeek    int       `json:"cycle_week"`
}

// Bucket accumulates points and record counts under a week or month label.
type Bucket struct {
	Points  float64 `json:"points"`
	Records int     `json:"records"`
}

// EntityAggregate holds everything tracked for one entity. Records keep
// insertion order (file-processing order); buckets partition the same
// records by cycle week and cycle month.
type EntityAggregate struct {
	Name           string             `json:"name"`
	TotalPoints    float64            `json:"total_points"`
	TotalRecords   int                `json:"total_records"`
	Records        []PointRecord      `json:"records"`
	MonthlyBuckets map[string]*Bucket `json:"monthly_buckets"`
	WeeklyBuckets  map[string]*Bucket `json:"weekly_buckets"`
}

// NewEntityAggregate returns an empty aggregate for the named entity.
func NewEntityAggregate(name string) *EntityAggregate {
	return &EntityAggregate{
		Name:           name,
		MonthlyBuckets: make(map[string]*Bucket),
		WeeklyBuckets:  make(map[string]*Bucket),
	}
}

// Add appends a record and updates totals and both bucket maps.
// The invariant TotalPoints == sum of record points is maintained here
// and in MergeEntity only.
func (a *EntityAggregate) Add(rec PointRecord) {
	a.Records = append(a.Records, rec)
	a.TotalRecords++
	a.TotalPoints += rec.Points

	bucketAdd(a.MonthlyBuckets, rec.CycleMonth, rec.Points, 1)
	bucketAdd(a.WeeklyBuckets, WeekLabel(rec.CycleWeek), rec.Points, 1)
}

func bucketAdd(m map[string]*Bucket, label string, points float64, records int) {
	b, ok := m[label]
	if !ok {
		b = &Bucket{}
		m[label] = b
	}
	b.Points += points
	b.Records += records
}

// FolderStatistics summarizes one full ingestion run.
type FolderStatistics struct {
	TotalFiles    int     `json:"total_files"`
	TotalEntities int     `json:"total_entities"`
	TotalRecords  int     `json:"total_records"`
	TotalPoints   float64 `json:"total_points"`
	TotalValue    float64 `json:"total_value"`
}

// FolderAggregate is the top-level result of ingesting the whole source
// catalog. It exclusively owns its entity aggregates; a pipeline run
// always builds a fresh one before it is swapped into the cache.
type FolderAggregate struct {
	Entities      map[string]*EntityAggregate `json:"entities"`
	Stats         FolderStatistics            `json:"statistics"`
	LastProcessed time.Time                   `json:"last_processed"`
}

// NewFolderAggregate returns an empty folder aggregate.
func NewFolderAggregate() *FolderAggregate {
	return &FolderAggregate{Entities: make(map[string]*EntityAggregate)}
}

// EntityNames returns the entity names in lexical order, giving
// consumers a deterministic iteration order over the map.
func (f *FolderAggregate) EntityNames() []string {
	names := make([]string, 0, len(f.Entities))
	for name := range f.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
