// Package stats summarizes written parquet files with DuckDB SQL.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marcboeker/go-duckdb"
)

// Summary describes the contents of one parquet file.
type Summary struct {
	Path        string
	Rows        int64
	DistinctIDs int64
	Events      []EventCount
}

// EventCount is the number of rows for one event type.
type EventCount struct {
	Event string
	Count int64
}

// Open creates an in-memory DuckDB database. The caller owns closing it.
func Open(ctx context.Context) (*sql.DB, error) {
	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}
	return db, nil
}

// Summarize runs aggregate queries against the parquet file at path.
func Summarize(ctx context.Context, db *sql.DB, path string) (*Summary, error) {
	summary := &Summary{Path: path}

	row := db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT count(*), count(DISTINCT distinct_id)
		FROM '%s'
	`, path))
	if err := row.Scan(&summary.Rows, &summary.DistinctIDs); err != nil {
		return nil, fmt.Errorf("failed to execute count query: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT event, count(*)
		FROM '%s'
		GROUP BY event
		ORDER BY count(*) DESC, event
	`, path))
	if err != nil {
		return nil, fmt.Errorf("failed to execute event count query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ec EventCount
		if err := rows.Scan(&ec.Event, &ec.Count); err != nil {
			return nil, fmt.Errorf("scanning event count: %w", err)
		}
		summary.Events = append(summary.Events, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summary, nil
}
