package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"findingboard/internal/domain"
)

// ImportRecord describes one `findingboard import` run.
type ImportRecord struct {
	ID         int64
	Source     string
	RowCount   int
	ImportedAt time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS findings (
		row_order            INTEGER PRIMARY KEY,
		user                 TEXT,
		campaign_type        TEXT,
		user_segment         TEXT,
		issue                TEXT,
		finding              TEXT,
		phase                TEXT,
		action_1             TEXT,
		action_explanation   TEXT,
		action_confidence    TEXT,
		issue_explanation    TEXT,
		confidence_score     TEXT,
		reference            TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_findings_action ON findings(action_1);

	CREATE TABLE IF NOT EXISTS imports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		source      TEXT NOT NULL,
		row_count   INTEGER NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ReplaceFindings swaps the stored table for records in one transaction and
// logs the import. Row order is preserved.
func ReplaceFindings(ctx context.Context, db *sql.DB, source string, records []domain.Record) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings`); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (row_order, user, campaign_type, user_segment, issue, finding, phase,
		                       action_1, action_explanation, action_confidence, issue_explanation,
		                       confidence_score, reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			i, nullable(r.User), nullable(r.Type), nullable(r.UserSegment), nullable(r.Issue),
			nullable(r.Finding), nullable(r.Phase), nullable(r.Action), nullable(r.ActionExplanation),
			nullable(r.ActionConfidence.Text), nullable(r.IssueExplanation),
			nullable(r.ConfidenceScore.Text), nullable(r.Reference),
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, row_count) VALUES (?, ?)`, source, inserted,
	); err != nil {
		return inserted, err
	}
	return inserted, tx.Commit()
}

func LoadFindings(ctx context.Context, db *sql.DB) ([]domain.Record, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT user, campaign_type, user_segment, issue, finding, phase, action_1, action_explanation,
		        action_confidence, issue_explanation, confidence_score, reference
		 FROM findings ORDER BY row_order`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var cells [12]sql.NullString
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		records = append(records, domain.Record{
			User:              text(cells[0]),
			Type:              text(cells[1]),
			UserSegment:       text(cells[2]),
			Issue:             text(cells[3]),
			Finding:           text(cells[4]),
			Phase:             text(cells[5]),
			Action:            text(cells[6]),
			ActionExplanation: text(cells[7]),
			ActionConfidence:  domain.Score{Text: text(cells[8])},
			IssueExplanation:  text(cells[9]),
			ConfidenceScore:   domain.Score{Text: text(cells[10])},
			Reference:         text(cells[11]),
		})
	}
	return records, rows.Err()
}

func CountFindings(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM findings`).Scan(&count)
	return count, err
}

// LatestImport returns the most recent import, or sql.ErrNoRows.
func LatestImport(ctx context.Context, db *sql.DB) (ImportRecord, error) {
	var r ImportRecord
	err := db.QueryRowContext(ctx,
		`SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.Source, &r.RowCount, &r.ImportedAt)
	return r, err
}

func nullable(t domain.Text) sql.NullString {
	return sql.NullString{String: t.Value, Valid: t.Valid}
}

func text(s sql.NullString) domain.Text {
	return domain.Text{Value: s.String, Valid: s.Valid}
}
