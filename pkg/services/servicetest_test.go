package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rfberaldo/sqlz"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlz.DB {
	t.Helper()

	db, err := ConnectDatabase("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, MigrateDatabase(db))

	t.Cleanup(func() {
		_ = db.Pool().Close()
	})

	return db
}

func seedAlbum(t *testing.T, db *sqlz.DB, title, artist, releaseDate string) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	sql := `
INSERT INTO albums (
   title
   , artist
   , release_date
) VALUES (?, ?, ?)
`

	_, err := db.Exec(ctx, sql, title, artist, releaseDate)
	require.NoError(t, err)

	var id int64

	err = db.QueryRow(ctx, &id, `SELECT id FROM albums ORDER BY id DESC LIMIT 1`)
	require.NoError(t, err)

	return id
}

func countRows(t *testing.T, db *sqlz.DB, sql string, params ...any) int {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	var result int

	err := db.QueryRow(ctx, &result, sql, params...)
	require.NoError(t, err)

	return result
}
