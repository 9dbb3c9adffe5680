// Package cycle implements the billing-cycle calendar used to classify
// point records. A cycle runs from day 26 of one calendar month through
// day 25 of the next and is split into five fixed 7-day weeks.
package cycle

import "time"

const (
	// StartDay is the day of month on which every cycle begins.
	StartDay = 26

	// WeeksPerCycle is the number of fixed 7-day weeks in a cycle.
	// Week 5 may extend past the day-25 boundary (5*7=35 days).
	WeeksPerCycle = 5
)

// monthNames holds the Portuguese month names used as cycle labels,
// indexed by time.Month.
var monthNames = map[time.Month]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

// monthIndex maps a cycle label back to its calendar position, used to
// sort monthly series in calendar order rather than alphabetically.
var monthIndex = func() map[string]int {
	idx := make(map[string]int, len(monthNames))
	for m, name := range monthNames {
		idx[name] = int(m)
	}
	return idx
}()

// Cycle describes one billing period.
type Cycle struct {
	Start      time.Time
	End        time.Time
	MonthLabel string
}

// MonthName returns the Portuguese name for a calendar month.
func MonthName(m time.Month) string {
	return monthNames[m]
}

// MonthOrder returns the calendar position (1-12) of a cycle label.
// Unknown labels sort last.
func MonthOrder(label string) int {
	if idx, ok := monthIndex[label]; ok {
		return idx
	}
	return 13
}

// Start returns the start date (always day 26) of the cycle containing
// the reference date. Dates on or after the 26th belong to the cycle
// starting in their own month; earlier dates belong to the cycle that
// started in the previous month, with the year rolling back at January.
func Start(ref time.Time) time.Time {
	year, month := ref.Year(), ref.Month()
	if ref.Day() < StartDay {
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}
	return time.Date(year, month, StartDay, 0, 0, 0, 0, ref.Location())
}

// Of returns the full cycle containing the given date: its start (day 26),
// its end (day 25 of the following month) and its nominal month label.
func Of(date time.Time) Cycle {
	start := Start(date)
	end := start.AddDate(0, 1, -1)
	return Cycle{
		Start:      start,
		End:        end,
		MonthLabel: MonthLabelOf(date),
	}
}

// WeekOf returns the 1-based week of the cycle containing the date.
// Weeks are fixed 7-day spans from the cycle start; the result is
// clamped to [1, WeeksPerCycle].
func WeekOf(date time.Time) int {
	start := Start(date)
	days := int(date.Sub(start).Hours() / 24)
	week := days/7 + 1
	if week < 1 {
		week = 1
	}
	if week > WeeksPerCycle {
		week = WeeksPerCycle
	}
	return week
}

// MonthLabelOf returns the nominal month label of the cycle containing
// the date: dates on or after the 26th carry the NEXT calendar month's
// name, earlier dates carry the current month's name.
func MonthLabelOf(date time.Time) string {
	month := date.Month()
	if date.Day() >= StartDay {
		month++
		if month > time.December {
			month = time.January
		}
	}
	return monthNames[month]
}

// DateRange returns the inclusive date interval of the cycle starting in
// the given month: day 26 of month/year through day 25 of the following
// month. December wraps into the next year.
func DateRange(month time.Month, year int) (start, end time.Time) {
	start = time.Date(year, month, StartDay, 0, 0, 0, 0, time.UTC)
	endMonth, endYear := month+1, year
	if endMonth > time.December {
		endMonth = time.January
		endYear++
	}
	end = time.Date(endYear, endMonth, StartDay-1, 0, 0, 0, 0, time.UTC)
	return start, end
}
