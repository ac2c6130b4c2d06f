// Package table loads the raw finding table from a spreadsheet, a CSV export
// or the SQLite import, and caches it once per process.
package table

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"findingboard/internal/domain"
)

var (
	ErrSourceNotFound = errors.New("data source not found")
	ErrMissingColumn  = errors.New("missing required column")
	ErrUnsupported    = errors.New("unsupported data file")
)

// Source supplies the raw table.
type Source interface {
	Load(ctx context.Context) ([]domain.Record, error)
	Describe() string
}

// FileSource reads the first existing file among Paths. Paths are tried in
// order; .xlsx files are read from Sheet (or the first sheet), .csv files as
// comma-separated text with a header row.
type FileSource struct {
	Paths []string
	Sheet string
}

func (s FileSource) Describe() string {
	return "file " + strings.Join(s.Paths, " | ")
}

func (s FileSource) Load(ctx context.Context) ([]domain.Record, error) {
	path, err := s.resolve()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, s.Sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		records, err := readCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: %s (want .xlsx or .csv)", ErrUnsupported, path)
	}
}

// Resolve returns the path Load would read.
func (s FileSource) Resolve() (string, error) {
	return s.resolve()
}

func (s FileSource) resolve() (string, error) {
	var tried []string
	for _, p := range s.Paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tried = append(tried, p)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w. Tried: %s", ErrSourceNotFound, strings.Join(tried, ", "))
}
