package dataprocessing

// WeekLabel formats a cycle-week number as its bucket label.
func WeekLabel(week int) string {
	return weekLabels[clampWeek(week)-1]
}

var weekLabels = [...]string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}

func clampWeek(week int) int {
	if week < 1 {
		return 1
	}
	if week > len(weekLabels) {
		return len(weekLabels)
	}
	return week
}

// MergeEntity combines a file-level partial aggregate into the running
// folder aggregate. A new entity adopts the partial verbatim; an
// existing one accumulates: totals add, records append in arrival
// order, buckets add point-wise with zero-initialized entries for
// labels seen for the first time.
//
// Merging is intentionally not idempotent: merging the same partial
// twice doubles the totals. Deduplication is the catalog's job (each
// file appears once), not the merger's.
func MergeEntity(folder *FolderAggregate, partial *EntityAggregate) {
	if partial == nil {
		return
	}

	existing, ok := folder.Entities[partial.Name]
	if !ok {
		folder.Entities[partial.Name] = partial
		return
	}

	existing.TotalPoints += partial.TotalPoints
	existing.TotalRecords += partial.TotalRecords
	existing.Records = append(existing.Records, partial.Records...)

	for label, b := range partial.MonthlyBuckets {
		bucketAdd(existing.MonthlyBuckets, label, b.Points, b.Records)
	}
	for label, b := range partial.WeeklyBuckets {
		bucketAdd(existing.WeeklyBuckets, label, b.Points, b.Records)
	}
}
