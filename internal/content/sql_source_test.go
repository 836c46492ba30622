package content

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLSourceFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "question", "answer", "tags"}).
		AddRow("headline", "Headline", "How much?", "€5.76B", "{funding,vc}").
		AddRow("contact", nil, nil, "Email us", "{}")
	mock.ExpectQuery("SELECT id, title, question, answer, tags FROM faq_entries ORDER BY position, id").
		WillReturnRows(rows)

	entries, err := NewSQLSource(db, "").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"funding", "vc"}, entries[0].Tags)
	assert.Equal(t, "", entries[1].Title)
	assert.Empty(t, entries[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("relation does not exist"))

	_, err = NewSQLSource(db, "faq_entries").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestSQLSourceRejectsBadTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLSource(db, "faq; DROP TABLE x").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}
