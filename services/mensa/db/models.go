package db

import "database/sql"

type Dish struct {
	ID            int64
	CanonicalHash string
	Name          sql.NullString
	Description   sql.NullString
}

type Tag struct {
	ID   int64
	Code string
	Name sql.NullString
}

type Snapshot struct {
	ID           int64
	Date         string
	Attempt      int64
	CreatedAt    int64
	EmptiesCount int64
	ComputedAt   sql.NullInt64
}

type SnapshotEntry struct {
	SnapshotID int64
	DishID     int64
	Category   sql.NullString
	PriceEur   sql.NullFloat64
	WentEmpty  bool
}
