package models

type Like struct {
	UserID  string `db:"user_id"`
	AlbumID int64  `db:"album_id"`
}
