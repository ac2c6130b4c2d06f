package table

import (
	"fmt"
	"strings"

	"findingboard/internal/domain"
)

// rowMapper maps positional cells to Record fields using the header row.
type rowMapper struct {
	index map[string]int
}

func newRowMapper(header []string) (rowMapper, error) {
	m := rowMapper{index: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		if _, dup := m.index[name]; !dup {
			m.index[name] = i
		}
	}
	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := m.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return rowMapper{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return m, nil
}

// record converts one data row. Empty cells and cells beyond the row's
// length are null. ok is false for rows with no content at all.
func (m rowMapper) record(row []string) (r domain.Record, ok bool) {
	for _, col := range domain.Columns {
		i, known := m.index[col]
		if !known || i >= len(row) || row[i] == "" {
			continue
		}
		r.SetField(col, domain.T(row[i]))
		ok = true
	}
	return r, ok
}

func mapRows(rows [][]string) ([]domain.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table has no header row", ErrMissingColumn)
	}
	m, err := newRowMapper(rows[0])
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if r, ok := m.record(row); ok {
			records = append(records, r)
		}
	}
	return records, nil
}
