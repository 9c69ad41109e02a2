package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/rfberaldo/sqlz"
)

/*
maxSearchResults caps the listing query. There is no pagination; the page
shows at most this many albums.
*/
const maxSearchResults = 200

type SearchCriteria struct {
	Query string
	Year  int
	Month int
}

type AlbumServicer interface {
	Search(criteria SearchCriteria) ([]models.Album, error)
	GetReleaseBuckets() ([]models.ReleaseBucket, error)
}

type AlbumServiceConfig struct {
	DB *sqlz.DB
}

type AlbumService struct {
	db *sqlz.DB
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	return AlbumService{
		db: config.DB,
	}
}

func (s AlbumService) Search(criteria SearchCriteria) ([]models.Album, error) {
	var (
		err error
	)

	result := []models.Album{}

	sql := `
SELECT
   a.id
   , COALESCE(a.title, '') AS title
   , COALESCE(a.artist, '') AS artist
   , COALESCE(a.release_date, '') AS release_date
   , COALESCE(a.label, '') AS label
   , COALESCE(a.cover_url, '') AS cover_url
   , COALESCE(a.mb_release_id, '') AS mb_release_id
   , COALESCE(a.mb_release_group_id, '') AS mb_release_group_id
FROM albums AS a
WHERE 1=1
`

	params := []any{}

	if q := strings.TrimSpace(criteria.Query); q != "" {
		pattern := "%" + escapeSearchPattern(q) + "%"

		sql += `   AND (a.title LIKE ? ESCAPE '\' OR a.artist LIKE ? ESCAPE '\')
`
		params = append(params, pattern, pattern)
	}

	if from, to, ok := releaseDateRange(criteria.Year, criteria.Month); ok {
		sql += `   AND a.release_date >= ? AND a.release_date < ?
`
		params = append(params, from, to)
	}

	sql += `ORDER BY a.release_date DESC
LIMIT ?`

	params = append(params, maxSearchResults)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, params...); err != nil {
		return result, fmt.Errorf("error searching albums: %w", err)
	}

	return result, nil
}

func (s AlbumService) GetReleaseBuckets() ([]models.ReleaseBucket, error) {
	var (
		err error
	)

	result := []models.ReleaseBucket{}

	sql := `
SELECT
   year
   , month
   , COALESCE(month_name, '') AS month_name
FROM release_buckets
ORDER BY year DESC, month ASC
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql); err != nil {
		return result, fmt.Errorf("error querying for release buckets: %w", err)
	}

	return result, nil
}

/*
escapeSearchPattern backslash-escapes the LIKE metacharacters so user input
matches literally. A search for "%" matches albums containing a percent sign,
not everything.
*/
func escapeSearchPattern(q string) string {
	q = strings.ReplaceAll(q, `%`, `\%`)
	q = strings.ReplaceAll(q, `_`, `\_`)
	return q
}

/*
releaseDateRange turns a year/month selection into a half-open interval,
computed in UTC. The bounds carry the same precision as the filter (year-month
or bare year) so partial MusicBrainz dates like "2024-05" sort inside the
interval along with full dates. A month without a year is not reachable from
the filter controls; it is treated as no date filter.
*/
func releaseDateRange(year, month int) (string, string, bool) {
	if year <= 0 {
		return "", "", false
	}

	if month >= 1 && month <= 12 {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return from.Format("2006-01"), from.AddDate(0, 1, 0).Format("2006-01"), true
	}

	return fmt.Sprintf("%04d", year), fmt.Sprintf("%04d", year+1), true
}
