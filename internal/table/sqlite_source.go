package table

import (
	"context"
	"database/sql"
	"fmt"

	"findingboard/internal/domain"
	"findingboard/internal/storage/sqlite"
)

// SQLiteSource reads the table written by `findingboard import`.
type SQLiteSource struct {
	DB   *sql.DB
	Path string
}

func (s SQLiteSource) Describe() string {
	return "sqlite " + s.Path
}

func (s SQLiteSource) Load(ctx context.Context) ([]domain.Record, error) {
	count, err := sqlite.CountFindings(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s has no imported findings (run `findingboard import`)", ErrSourceNotFound, s.Path)
	}
	return sqlite.LoadFindings(ctx, s.DB)
}
