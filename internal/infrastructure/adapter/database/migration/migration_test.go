package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources(t *testing.T) {
	names, err := Sources()
	require.NoError(t, err)

	assert.Contains(t, names, "000001_create_ledger.up.sql")
	assert.Contains(t, names, "000001_create_ledger.down.sql")

	// every up migration needs its down
	ups, downs := 0, 0
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitialSchema(t *testing.T) {
	raw, err := migrationFiles.ReadFile("sql/000001_create_ledger.up.sql")
	require.NoError(t, err)
	schema := string(raw)

	assert.Contains(t, schema, "CHECK (balance >= 0)")
	assert.Contains(t, schema, "CHECK (amount > 0)")
	assert.Contains(t, schema, "ON DELETE CASCADE")
	assert.Contains(t, schema, "WHERE reference IS NOT NULL")
	assert.Contains(t, schema, "(account_number, created_at DESC)")
}
