package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type ProfileServicer interface {
	Upsert(profile *models.Profile) error
	GetByID(id string) (*models.Profile, error)
}

type ProfileServiceConfig struct {
	DB *sqlz.DB
}

type ProfileService struct {
	db *sqlz.DB
}

func NewProfileService(config ProfileServiceConfig) ProfileService {
	return ProfileService{
		db: config.DB,
	}
}

/*
Upsert writes the profile row for a signed-in user. It is keyed on the
identity provider's subject so running it on every sign-in is safe.
*/
func (s ProfileService) Upsert(profile *models.Profile) error {
	var (
		err error
	)

	sql := `
INSERT INTO profiles (
   id
   , email
) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET
   email = excluded.email
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, profile.ID, profile.Email); err != nil {
		return fmt.Errorf("error upserting profile %s: %w", profile.ID, err)
	}

	return nil
}

func (s ProfileService) GetByID(id string) (*models.Profile, error) {
	var (
		err error
	)

	result := &models.Profile{}

	sql := `
SELECT
   p.id
   , p.email
FROM profiles AS p
WHERE 1=1
   AND p.id = ?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		return result, fmt.Errorf("error querying for profile %s: %w", id, err)
	}

	return result, nil
}
