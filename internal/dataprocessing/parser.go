package dataprocessing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pontoscli/internal/cycle"
)

// ErrRowSkipped marks a row that carries no parseable record: blank and
// separator rows, rows without a date, rows without positive points.
// Skipping is an expected, silent condition, not a failure.
var ErrRowSkipped = errors.New("row skipped")

// ParseError marks a row that looked like data but could not be parsed
// (typically an unreadable date). It is logged by the ingestor and the
// row is skipped; it never aborts the file.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// serialEpoch is the spreadsheet serial-date epoch. December 30, 1899
// (rather than the documented December 31) absorbs the format's
// fictitious 1900 leap day for all serials past February 1900.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// genericLayouts are tried for date values that are neither
// slash-delimited nor numeric serials.
var genericLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/06 15:04",
}

// Parser converts raw spreadsheet rows into canonical point records.
type Parser struct{}

// NewParser creates a row parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseRow converts one raw row into a PointRecord owned by the named
// entity. It returns ErrRowSkipped for rows that carry no record and a
// *ParseError for rows whose date cannot be interpreted.
func (p *Parser) ParseRow(row RawRow, entityName string) (*PointRecord, error) {
	rawDate, ok := row.Lookup(DateAliases)
	if !ok {
		return nil, ErrRowSkipped
	}

	rawPoints, ok := row.Lookup(PointsAliases)
	if !ok {
		return nil, ErrRowSkipped
	}
	points, err := strconv.ParseFloat(strings.ReplaceAll(rawPoints, ",", "."), 64)
	if err != nil || points <= 0 {
		// "No activity" is not represented as a record; zero and
		// negative points never produce one.
		return nil, ErrRowSkipped
	}

	date, err := parseDate(rawDate)
	if err != nil {
		return nil, &ParseError{Field: "date", Value: rawDate, Err: err}
	}

	site, _ := row.Lookup(SiteAliases)
	obs, _ := row.Lookup(ObservationAliases)

	return &PointRecord{
		Date:         date,
		EntityName:   entityName,
		Site:         site,
		Points:       points,
		Observations: obs,
		CycleMonth:   cycle.MonthLabelOf(date),
		CycleWeek:    cycle.WeekOf(date),
	}, nil
}

// parseDate interprets a cell value polymorphically: slash-delimited
// day/month/year first, then generic layouts, then a spreadsheet serial
// day count.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if strings.Contains(value, "/") {
		if d, err := parseSlashDate(value); err == nil {
			return d, nil
		}
	}

	for _, layout := range genericLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return fromSerial(serial)
	}

	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// parseSlashDate interprets d/m/y with optional trailing time. Two-digit
// years below 50 land in the 2000s, 50 and above in the 1900s.
func parseSlashDate(value string) (time.Time, error) {
	if i := strings.IndexByte(value, ' '); i >= 0 {
		value = value[:i]
	}
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("expected d/m/y, got %q", value)
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, err
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, err
	}

	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("out-of-range date %q", value)
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflows (e.g. 31/02), which would silently
	// shift the record into the wrong cycle.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid calendar date %q", value)
	}
	return d, nil
}

// fromSerial converts a spreadsheet serial day count into a date.
func fromSerial(serial float64) (time.Time, error) {
	if serial <= 0 || serial > 300000 {
		return time.Time{}, fmt.Errorf("serial %v out of range", serial)
	}
	days := int(serial)
	frac := serial - float64(days)
	d := serialEpoch.AddDate(0, 0, days)
	if frac > 0 {
		d = d.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return d, nil
}
