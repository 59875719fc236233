package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matthieukhl/shopstats/internal/analytics"
)

// FileName returns the export file name of a relation or query
func FileName(prefix, name string) string {
	return prefix + name + ".csv"
}

// ExportFile writes rs to <dir>/<prefix><name>.csv and returns the path
func ExportFile(dir, prefix, name string, rs analytics.ResultSet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(prefix, name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(f, rs); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// ExportAll writes one file per named result set, in name order
func ExportAll(dir, prefix string, sets map[string]analytics.ResultSet) ([]string, error) {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := ExportFile(dir, prefix, name, sets[name])
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
