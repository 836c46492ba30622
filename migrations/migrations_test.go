package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryUpMigrationHasADown(t *testing.T) {
	names, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, up := range names {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestSchemaMatchesSinkAndSource(t *testing.T) {
	logSchema, err := fs.ReadFile(FS, "000001_interaction_log.up.sql")
	require.NoError(t, err)
	for _, col := range []string{"user_id", "message", "answer", "matched_entries", "created_at"} {
		assert.Contains(t, string(logSchema), col)
	}

	faqSchema, err := fs.ReadFile(FS, "000002_faq_entries.up.sql")
	require.NoError(t, err)
	for _, col := range []string{"title", "question", "answer", "tags", "position"} {
		assert.Contains(t, string(faqSchema), col)
	}
}
