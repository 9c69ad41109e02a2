package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type LikeServicer interface {
	GetLikeSummary(albumIDs []int64, userID string) (map[int64]int, map[int64]bool, error)
	Like(userID string, albumID int64) error
	Unlike(userID string, albumID int64) error
}

type LikeServiceConfig struct {
	DB *sqlz.DB
}

type LikeService struct {
	db *sqlz.DB
}

func NewLikeService(config LikeServiceConfig) LikeService {
	return LikeService{
		db: config.DB,
	}
}

/*
GetLikeSummary returns per-album like counts and, when userID is set, which
of those albums that user has liked. Both results are scoped to albumIDs;
likes on albums outside the displayed set are never counted.
*/
func (s LikeService) GetLikeSummary(albumIDs []int64, userID string) (map[int64]int, map[int64]bool, error) {
	var (
		err error
	)

	counts := map[int64]int{}
	liked := map[int64]bool{}

	if len(albumIDs) == 0 {
		return counts, liked, nil
	}

	countRows := []struct {
		AlbumID int64 `db:"album_id"`
		Total   int   `db:"total"`
	}{}

	sql := `
SELECT
   album_id
   , COUNT(*) AS total
FROM likes
WHERE 1=1
   AND album_id IN (?)
GROUP BY album_id
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &countRows, sql, albumIDs); err != nil {
		return counts, liked, fmt.Errorf("error querying for like counts: %w", err)
	}

	for _, row := range countRows {
		counts[row.AlbumID] = row.Total
	}

	if userID == "" {
		return counts, liked, nil
	}

	likedIDs := []int64{}

	sql = `
SELECT
   album_id
FROM likes
WHERE 1=1
   AND user_id = ?
   AND album_id IN (?)
`

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &likedIDs, sql, userID, albumIDs); err != nil {
		return counts, liked, fmt.Errorf("error querying for liked albums for user %s: %w", userID, err)
	}

	for _, id := range likedIDs {
		liked[id] = true
	}

	return counts, liked, nil
}

/*
Like records that a user likes an album. Liking an already-liked album is a
no-op; the unique constraint on (user_id, album_id) rejects the duplicate row
and that rejection is swallowed here.
*/
func (s LikeService) Like(userID string, albumID int64) error {
	var (
		err error
	)

	if userID == "" {
		return models.ErrNotAuthenticated
	}

	sql := `
INSERT INTO likes (
   user_id
   , album_id
) VALUES (?, ?)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, userID, albumID); err != nil {
		if isUniqueViolation(err) {
			return nil
		}

		return fmt.Errorf("error adding like for user %s, album %d: %w", userID, albumID, err)
	}

	return nil
}

func (s LikeService) Unlike(userID string, albumID int64) error {
	var (
		err error
	)

	if userID == "" {
		return models.ErrNotAuthenticated
	}

	sql := `
DELETE FROM likes
WHERE 1=1
   AND user_id = ?
   AND album_id = ?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, userID, albumID); err != nil {
		return fmt.Errorf("error removing like for user %s, album %d: %w", userID, albumID, err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
