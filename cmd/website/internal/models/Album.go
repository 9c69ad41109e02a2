package models

/*
AlbumCard is the presentation shape of one album on the listing page. The
cover URL has already been checked against the allow-list; templates can
use it as-is.
*/
type AlbumCard struct {
	ID          int64
	Title       string
	Artist      string
	ReleaseDate string
	CoverURL    string
	LikeCount   int
	IsLiked     bool
}

type MonthOption struct {
	Value int
	Label string
}
