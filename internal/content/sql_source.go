package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads FAQ rows from a Postgres table with columns
// id, title, question, answer, tags (text[]).
type SQLSource struct {
	db    *sql.DB
	table string
}

// NewSQLSource creates a table-backed source. An empty table defaults to faq_entries.
func NewSQLSource(db *sql.DB, table string) *SQLSource {
	if table == "" {
		table = "faq_entries"
	}
	return &SQLSource{db: db, table: table}
}

func (s *SQLSource) Name() string { return "postgres:" + s.table }

func (s *SQLSource) Fetch(ctx context.Context) ([]Entry, error) {
	if s.db == nil {
		return nil, errors.New("database not configured")
	}
	if !tableNamePattern.MatchString(s.table) {
		return nil, fmt.Errorf("invalid table name %q", s.table)
	}

	query := fmt.Sprintf(`SELECT id, title, question, answer, tags FROM %s ORDER BY position, id`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			title sql.NullString
			quest sql.NullString
		)
		if err := rows.Scan(&entry.ID, &title, &quest, &entry.Answer, pq.Array(&entry.Tags)); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		entry.Title = title.String
		entry.Question = quest.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return entries, nil
}
