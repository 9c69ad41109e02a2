package models

type Album struct {
	ID               int64  `json:"id"`
	Title            string `json:"album"`
	Artist           string `json:"artist"`
	ReleaseDate      string `db:"release_date" json:"release_date"`
	Label            string `json:"label"`
	CoverURL         string `db:"cover_url" json:"cover_url"`
	MBReleaseID      string `db:"mb_release_id" json:"mb_release_id"`
	MBReleaseGroupID string `db:"mb_release_group_id" json:"mb_release_group_id"`
}
