package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getDishIdByHash = `
SELECT id FROM dish WHERE canonical_hash = ?
`

func (q *Queries) GetDishIdByHash(ctx context.Context, canonicalHash string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getDishIdByHash, canonicalHash)
	var id int64
	err := row.Scan(&id)
	return id, err
}

type CreateDishParams struct {
	CanonicalHash string
	Name          sql.NullString
	Description   sql.NullString
}

const createDish = `
INSERT INTO dish (canonical_hash, name, description) VALUES (?, ?, ?)
`

func (q *Queries) CreateDish(ctx context.Context, arg CreateDishParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createDish, arg.CanonicalHash, arg.Name, arg.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type UpdateDishParams struct {
	Name        sql.NullString
	Description sql.NullString
	ID          int64
}

const updateDish = `
UPDATE dish SET name = ?, description = ? WHERE id = ?
`

func (q *Queries) UpdateDish(ctx context.Context, arg UpdateDishParams) error {
	_, err := q.db.ExecContext(ctx, updateDish, arg.Name, arg.Description, arg.ID)
	return err
}

const getDish = `
SELECT id, canonical_hash, name, description FROM dish WHERE id = ?
`

func (q *Queries) GetDish(ctx context.Context, id int64) (Dish, error) {
	row := q.db.QueryRowContext(ctx, getDish, id)
	var d Dish
	err := row.Scan(&d.ID, &d.CanonicalHash, &d.Name, &d.Description)
	return d, err
}

type CreateTagParams struct {
	Code string
	Name sql.NullString
}

const createTag = `
INSERT OR IGNORE INTO tag (code, name) VALUES (?, ?)
`

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) error {
	_, err := q.db.ExecContext(ctx, createTag, arg.Code, arg.Name)
	return err
}

const getTagByCode = `
SELECT id, code, name FROM tag WHERE code = ?
`

func (q *Queries) GetTagByCode(ctx context.Context, code string) (Tag, error) {
	row := q.db.QueryRowContext(ctx, getTagByCode, code)
	var t Tag
	err := row.Scan(&t.ID, &t.Code, &t.Name)
	return t, err
}

const updateTagName = `
UPDATE tag SET name = ? WHERE code = ? AND name IS NULL
`

type UpdateTagNameParams struct {
	Name sql.NullString
	Code string
}

func (q *Queries) UpdateTagName(ctx context.Context, arg UpdateTagNameParams) error {
	_, err := q.db.ExecContext(ctx, updateTagName, arg.Name, arg.Code)
	return err
}

type LinkDishTagParams struct {
	DishID int64
	TagID  int64
}

const linkDishTag = `
INSERT OR IGNORE INTO dish_tag (dish_id, tag_id) VALUES (?, ?)
`

func (q *Queries) LinkDishTag(ctx context.Context, arg LinkDishTagParams) error {
	_, err := q.db.ExecContext(ctx, linkDishTag, arg.DishID, arg.TagID)
	return err
}

const getDishTagCodes = `
SELECT tag.code FROM dish_tag
JOIN tag ON tag.id = dish_tag.tag_id
WHERE dish_tag.dish_id = ?
ORDER BY tag.code
`

func (q *Queries) GetDishTagCodes(ctx context.Context, dishID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getDishTagCodes, dishID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

type CreateSnapshotParams struct {
	Date    string
	Attempt int64
}

const createSnapshot = `
INSERT OR IGNORE INTO snapshot (date, attempt) VALUES (?, ?)
`

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshot, arg.Date, arg.Attempt)
	return err
}

type GetSnapshotParams struct {
	Date    string
	Attempt int64
}

const getSnapshot = `
SELECT id, date, attempt, created_at, empties_count, computed_at
FROM snapshot WHERE date = ? AND attempt = ?
`

func (q *Queries) GetSnapshot(ctx context.Context, arg GetSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, arg.Date, arg.Attempt)
	var s Snapshot
	err := row.Scan(&s.ID, &s.Date, &s.Attempt, &s.CreatedAt, &s.EmptiesCount, &s.ComputedAt)
	return s, err
}

type UpsertSnapshotEntryParams struct {
	SnapshotID int64
	DishID     int64
	Category   sql.NullString
	PriceEur   sql.NullFloat64
}

const upsertSnapshotEntry = `
INSERT INTO snapshot_entry (snapshot_id, dish_id, category, price_eur)
VALUES (?, ?, ?, ?)
ON CONFLICT (snapshot_id, dish_id)
DO UPDATE SET category = excluded.category, price_eur = excluded.price_eur
`

func (q *Queries) UpsertSnapshotEntry(ctx context.Context, arg UpsertSnapshotEntryParams) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshotEntry,
		arg.SnapshotID, arg.DishID, arg.Category, arg.PriceEur)
	return err
}

type GetSnapshotEntriesRow struct {
	DishID        int64
	CanonicalHash string
	Name          sql.NullString
	Description   sql.NullString
	Category      sql.NullString
	PriceEur      sql.NullFloat64
	WentEmpty     bool
}

const getSnapshotEntries = `
SELECT e.dish_id, d.canonical_hash, d.name, d.description, e.category, e.price_eur, e.went_empty
FROM snapshot_entry e
JOIN dish d ON d.id = e.dish_id
WHERE e.snapshot_id = ?
`

func (q *Queries) GetSnapshotEntries(ctx context.Context, snapshotID int64) ([]GetSnapshotEntriesRow, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshotEntries, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GetSnapshotEntriesRow
	for rows.Next() {
		var r GetSnapshotEntriesRow
		err := rows.Scan(&r.DishID, &r.CanonicalHash, &r.Name, &r.Description,
			&r.Category, &r.PriceEur, &r.WentEmpty)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type GetMissingDishesParams struct {
	FirstSnapshotID  int64
	SecondSnapshotID int64
}

type GetMissingDishesRow struct {
	DishID        int64
	Name          sql.NullString
	CanonicalHash string
}

const getMissingDishes = `
SELECT d.id, d.name, d.canonical_hash
FROM snapshot_entry s1
JOIN dish d ON d.id = s1.dish_id
WHERE s1.snapshot_id = ?
  AND NOT EXISTS (
    SELECT 1 FROM snapshot_entry s2
    WHERE s2.snapshot_id = ? AND s2.dish_id = s1.dish_id
  )
`

// GetMissingDishes returns the dishes recorded in the first snapshot
// that have no entry in the second one.
func (q *Queries) GetMissingDishes(ctx context.Context, arg GetMissingDishesParams) ([]GetMissingDishesRow, error) {
	rows, err := q.db.QueryContext(ctx, getMissingDishes, arg.FirstSnapshotID, arg.SecondSnapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GetMissingDishesRow
	for rows.Next() {
		var r GetMissingDishesRow
		if err := rows.Scan(&r.DishID, &r.Name, &r.CanonicalHash); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const resetWentEmpty = `
UPDATE snapshot_entry SET went_empty = 0 WHERE snapshot_id = ?
`

func (q *Queries) ResetWentEmpty(ctx context.Context, snapshotID int64) error {
	_, err := q.db.ExecContext(ctx, resetWentEmpty, snapshotID)
	return err
}

type MarkWentEmptyParams struct {
	SnapshotID int64
	DishID     int64
}

const markWentEmpty = `
UPDATE snapshot_entry SET went_empty = 1 WHERE snapshot_id = ? AND dish_id = ?
`

func (q *Queries) MarkWentEmpty(ctx context.Context, arg MarkWentEmptyParams) error {
	_, err := q.db.ExecContext(ctx, markWentEmpty, arg.SnapshotID, arg.DishID)
	return err
}

type SetSnapshotComputedParams struct {
	EmptiesCount int64
	ComputedAt   int64
	ID           int64
}

const setSnapshotComputed = `
UPDATE snapshot SET empties_count = ?, computed_at = ? WHERE id = ?
`

func (q *Queries) SetSnapshotComputed(ctx context.Context, arg SetSnapshotComputedParams) error {
	_, err := q.db.ExecContext(ctx, setSnapshotComputed, arg.EmptiesCount, arg.ComputedAt, arg.ID)
	return err
}
