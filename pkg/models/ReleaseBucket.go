package models

/*
ReleaseBucket is one distinct (year, month) combination present among album
release dates. Buckets come from a read-only database view and only exist
to populate the date filter controls.
*/
type ReleaseBucket struct {
	Year      int
	Month     int
	MonthName string `db:"month_name"`
}
