package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "seerlink.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())

	version, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var count int
	err = db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM request_history").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seerlink.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
}
