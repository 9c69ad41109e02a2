/*
mbimport pulls a month of album releases from MusicBrainz and upserts them
into the catalog.

Workflow:

 1. Fetch once without touching the database, dumping normalized JSON:
    mbimport -year 2025 -month 12 -dryrun

 2. Stage using the saved JSON (no network calls), inspect the staging table:
    mbimport -fromjson mb_out/mb_2025_12.json -stage

 3. Commit to the albums table using the saved JSON:
    mbimport -fromjson mb_out/mb_2025_12.json -write

The default mode is dry-run unless -stage or -write is given, and -dryrun
overrides both.
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/mattsnow/albumshare/cmd/mbimport/internal/configuration"
	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/mattsnow/albumshare/pkg/musicbrainz"
	"github.com/mattsnow/albumshare/pkg/services"
	"github.com/rfberaldo/sqlz"
)

type importDump struct {
	Source map[string]any `json:"source"`
	Count  int            `json:"count_normalized_unique"`
	Rows   []models.Album `json:"rows"`
}

func main() {
	var (
		err    error
		db     *sqlz.DB
		albums []models.Album
		source map[string]any
	)

	config := configuration.LoadConfig()
	setupLogger(&config)

	mode, err := resolveMode(&config)

	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	slog.Info("starting import", "mode", mode)

	if config.FromJSON != "" {
		if albums, source, err = loadDump(config.FromJSON); err != nil {
			slog.Error("error loading JSON dump", "error", err, "path", config.FromJSON)
			os.Exit(1)
		}
	} else {
		if config.Year <= 0 || config.Month < 1 || config.Month > 12 {
			slog.Error("a valid -year and -month are required unless -fromjson is used")
			os.Exit(1)
		}

		client := musicbrainz.NewClient(musicbrainz.ClientConfig{
			Throttle: time.Duration(config.SleepMs) * time.Millisecond,
		})

		releases, err := client.FetchMonthReleases(context.Background(), config.Year, config.Month)

		if err != nil {
			slog.Error("error fetching releases from MusicBrainz", "error", err)
			os.Exit(1)
		}

		albums = normalizeReleases(releases, config.MaxWorkers)
		source = map[string]any{"year": config.Year, "month": config.Month}
	}

	albums = dedupeAlbums(albums)
	slog.Info("normalized unique rows", "count", len(albums))

	outPath := dumpPath(&config)

	if err = saveDump(outPath, importDump{Source: source, Count: len(albums), Rows: albums}); err != nil {
		slog.Error("error saving JSON dump", "error", err, "path", outPath)
		os.Exit(1)
	}

	slog.Info("saved normalized dump", "path", outPath)

	if mode == "dry-run" {
		for index, album := range albums {
			if index >= 5 {
				break
			}

			slog.Info("sample row", "artist", album.Artist, "album", album.Title, "releaseDate", album.ReleaseDate)
		}

		slog.Info("dry run complete. re-run with -stage or -write to persist", "fromjson", outPath)
		return
	}

	if db, err = services.ConnectDatabase(config.DSN); err != nil {
		slog.Error("error connecting to database", "error", err)
		os.Exit(1)
	}

	if err = services.MigrateDatabase(db); err != nil {
		slog.Error("error migrating database", "error", err)
		os.Exit(1)
	}

	importService := services.NewImportService(services.ImportServiceConfig{
		DB: db,
	})

	written := 0

	if config.Stage {
		written, err = importService.StageAlbums(albums)
	} else {
		written, err = importService.UpsertAlbums(albums)
	}

	if err != nil {
		slog.Error("error upserting albums", "error", err, "written", written)
		os.Exit(1)
	}

	slog.Info("import complete", "mode", mode, "written", written)
}

/*
resolveMode picks the import mode from the flags. -dryrun always wins over
-stage and -write, so a forgotten -write in a recycled command line cannot
touch the database.
*/
func resolveMode(config *configuration.Config) (string, error) {
	if config.Stage && config.Write {
		return "", fmt.Errorf("choose only one of -stage or -write (or neither for a dry run)")
	}

	if config.DryRun {
		return "dry-run", nil
	}

	if config.Stage {
		return "stage", nil
	}

	if config.Write {
		return "write", nil
	}

	return "dry-run", nil
}

func normalizeReleases(releases []musicbrainz.Release, maxWorkers int) []models.Album {
	albums := make([]models.Album, len(releases))
	keep := make([]bool, len(releases))

	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	pool := pond.NewPool(maxWorkers)

	for index, release := range releases {
		pool.Submit(func() {
			albums[index], keep[index] = musicbrainz.NormalizeRelease(release)
		})
	}

	pool.StopAndWait()

	result := []models.Album{}

	for index := range albums {
		if keep[index] {
			result = append(result, albums[index])
		}
	}

	return result
}

func dedupeAlbums(albums []models.Album) []models.Album {
	result := []models.Album{}
	seen := map[string]bool{}
	skipped := 0

	for _, album := range albums {
		if album.MBReleaseID == "" {
			skipped++
			continue
		}

		if seen[album.MBReleaseID] {
			continue
		}

		seen[album.MBReleaseID] = true
		result = append(result, album)
	}

	if skipped > 0 {
		slog.Warn("skipped rows with no MusicBrainz release ID", "count", skipped)
	}

	return result
}

func dumpPath(config *configuration.Config) string {
	if config.Out != "" {
		return config.Out
	}

	if config.Year > 0 && config.Month > 0 {
		return filepath.Join(config.OutDir, fmt.Sprintf("mb_%d_%02d.json", config.Year, config.Month))
	}

	return filepath.Join(config.OutDir, "mb_loaded_normalized.json")
}

func loadDump(path string) ([]models.Album, map[string]any, error) {
	b, err := os.ReadFile(path)

	if err != nil {
		return nil, nil, err
	}

	dump := importDump{}

	if err = json.Unmarshal(b, &dump); err != nil {
		return nil, nil, err
	}

	return dump.Rows, map[string]any{"from_json": path}, nil
}

func saveDump(path string, dump importDump) error {
	var (
		err error
		b   []byte
	)

	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if b, err = json.MarshalIndent(dump, "", "  "); err != nil {
		return err
	}

	return os.WriteFile(path, b, 0644)
}

func setupLogger(config *configuration.Config) {
	level := slog.LevelInfo

	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug

	case "warn":
		level = slog.LevelWarn

	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
