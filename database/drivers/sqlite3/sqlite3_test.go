package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/database"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	_, err := Connect("")
	assert.ErrorIs(t, err, database.ErrNoDatabaseProvided)

	db, err := Connect(filepath.Join(t.TempDir(), "data", "registry.db"))
	require.NoError(t, err)
	assert.NoError(t, db.Ping())
	assert.NoError(t, db.Close())
}
