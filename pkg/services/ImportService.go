package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/rfberaldo/sqlz"
)

/*
importChunkSize is how many albums are upserted per statement when the
importer commits a month of releases.
*/
const importChunkSize = 250

type ImportServicer interface {
	StageAlbums(albums []models.Album) (int, error)
	UpsertAlbums(albums []models.Album) (int, error)
}

type ImportServiceConfig struct {
	DB *sqlz.DB
}

type ImportService struct {
	db *sqlz.DB
}

func NewImportService(config ImportServiceConfig) ImportService {
	return ImportService{
		db: config.DB,
	}
}

/*
StageAlbums upserts imported albums into the staging table for manual
inspection. Staged rows never touch the live catalog.
*/
func (s ImportService) StageAlbums(albums []models.Album) (int, error) {
	return s.upsertChunked("albums_import_staging", albums)
}

/*
UpsertAlbums upserts imported albums into the live catalog, keyed on the
MusicBrainz release ID so re-importing a month is idempotent.
*/
func (s ImportService) UpsertAlbums(albums []models.Album) (int, error) {
	return s.upsertChunked("albums", albums)
}

func (s ImportService) upsertChunked(table string, albums []models.Album) (int, error) {
	var (
		err     error
		written int
	)

	for start := 0; start < len(albums); start += importChunkSize {
		end := start + importChunkSize

		if end > len(albums) {
			end = len(albums)
		}

		if err = s.upsertChunk(table, albums[start:end]); err != nil {
			return written, fmt.Errorf("error upserting albums into %s: %w", table, err)
		}

		written += end - start
		slog.Info("upserted album chunk", "table", table, "written", written, "total", len(albums))
	}

	return written, nil
}

func (s ImportService) upsertChunk(table string, chunk []models.Album) error {
	var (
		err error
	)

	placeholders := make([]string, 0, len(chunk))
	params := make([]any, 0, len(chunk)*7)

	for _, album := range chunk {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		params = append(params,
			album.MBReleaseID,
			album.MBReleaseGroupID,
			album.Title,
			album.Artist,
			album.ReleaseDate,
			album.Label,
			album.CoverURL,
		)
	}

	sql := fmt.Sprintf(`
INSERT INTO %s (
   mb_release_id
   , mb_release_group_id
   , title
   , artist
   , release_date
   , label
   , cover_url
) VALUES %s
ON CONFLICT (mb_release_id) DO UPDATE SET
   mb_release_group_id = excluded.mb_release_group_id
   , title = excluded.title
   , artist = excluded.artist
   , release_date = excluded.release_date
   , label = excluded.label
   , cover_url = excluded.cover_url
`, table, strings.Join(placeholders, ", "))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return err
	}

	return nil
}
