package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// PeriodFolder is one month folder of the source catalog with the
// spreadsheet files expected inside it. Missing files are normal;
// historical folders are often incomplete.
type PeriodFolder struct {
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// Catalog is the static mapping of period folders to source files.
// Order matters: ingestion processes folders and files in catalog
// order, which makes merge order deterministic.
type Catalog []PeriodFolder

// Paths returns every catalog entry as a path relative to the data
// directory, in processing order.
func (c Catalog) Paths() []string {
	var paths []string
	for _, folder := range c {
		for _, file := range folder.Files {
			paths = append(paths, filepath.Join(folder.Name, file))
		}
	}
	return paths
}

// Len returns the total number of files in the catalog.
func (c Catalog) Len() int {
	n := 0
	for _, folder := range c {
		n += len(folder.Files)
	}
	return n
}

// LoadCatalog reads a catalog from a YAML file, or returns the built-in
// default when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no folders", path)
	}
	return catalog, nil
}

// DefaultCatalog returns the built-in source catalog. Each filename's
// leading token (up to the first space) is the canonical entity name.
func DefaultCatalog() Catalog {
	entities := []string{"Ana", "Bruno", "Carla", "Diego", "Marcelo"}
	months := []string{"Abril", "Maio", "Junho", "Julho", "Agosto"}

	catalog := make(Catalog, 0, len(months))
	for _, month := range months {
		folder := PeriodFolder{Name: month + " 2024"}
		for _, entity := range entities {
			folder.Files = append(folder.Files, fmt.Sprintf("%s %s.xlsx", entity, month))
		}
		catalog = append(catalog, folder)
	}
	return catalog
}
