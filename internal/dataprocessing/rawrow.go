package dataprocessing

import "strings"

// RawRow is one decoded spreadsheet row: a read-only, field-name-keyed
// lookup. Source files are produced by different people over time with
// inconsistent column naming and casing, so all access goes through
// Lookup with an ordered alias list rather than direct keys.
type RawRow map[string]string

// Lookup tries each alias in order and returns the first present,
// non-empty value, trimmed. The bool reports whether any alias matched.
func (r RawRow) Lookup(aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// Field alias lists, tried in order. Data-driven on purpose: a new
// source format means appending an alias here, not touching the parser.
var (
	DateAliases = []string{
		"Data", "data", "DATA", "Dia", "dia", "Date", "date",
	}
	PointsAliases = []string{
		"Pontos", "pontos", "PONTOS", "Pontuação", "Pontuacao",
		"Points", "points", "Pts", "pts",
	}
	SiteAliases = []string{
		"Refinaria", "refinaria", "REFINARIA", "Local", "local",
		"Site", "site", "Unidade", "unidade",
	}
	ObservationAliases = []string{
		"Observações", "Observacoes", "observações", "observacoes",
		"Observação", "Obs", "obs", "OBS", "Notas", "notas",
	}
)
