package table

import (
	"encoding/csv"
	"io"

	"findingboard/internal/domain"
)

func readCSV(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return mapRows(rows)
}
