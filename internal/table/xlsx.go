package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"findingboard/internal/domain"
)

func readXLSX(path, sheet string) ([]domain.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	records, err := mapRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q of %s: %w", sheet, path, err)
	}
	return records, nil
}
