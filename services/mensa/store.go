package mensa

import (
	"context"
	"database/sql"
	"errors"

	"mensafetch/services/mensa/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type StoreSnapshotRequest struct {
	DateToken  string
	Attempt    int64
	Dictionary map[string]string
	Records    []DishRecord
}

// StoreSnapshot upserts dishes and tags and writes the per-snapshot
// entries for (date, attempt). The whole batch runs in one
// transaction: a failure mid-batch leaves the store as it was.
// Re-ingesting the same (date, attempt) reuses the snapshot row and
// overwrites its entries.
func (s Service) StoreSnapshot(ctx context.Context, req StoreSnapshotRequest) (int64, error) {
	ctx, span := tracer.Start(ctx, "StoreSnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.String("date", req.DateToken),
		attribute.Int64("attempt", req.Attempt),
		attribute.Int("records", len(req.Records)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	// the page-global dictionary carries the human readable labels.
	// existing rows keep their label, except that a label fills in
	// for a code first seen bare
	for code, label := range req.Dictionary {
		err := txqry.CreateTag(ctx, db.CreateTagParams{
			Code: code,
			Name: sql.NullString{String: label, Valid: true},
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
		err = txqry.UpdateTagName(ctx, db.UpdateTagNameParams{
			Name: sql.NullString{String: label, Valid: true},
			Code: code,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}

	err = txqry.CreateSnapshot(ctx, db.CreateSnapshotParams{
		Date:    req.DateToken,
		Attempt: req.Attempt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	snapshot, err := txqry.GetSnapshot(ctx, db.GetSnapshotParams{
		Date:    req.DateToken,
		Attempt: req.Attempt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	for _, record := range req.Records {
		dishId, err := ensureDish(ctx, txqry, record)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}

		tagIds, err := ensureTags(ctx, txqry, record.Zusatzstoffe)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
		for _, tagId := range tagIds {
			err := txqry.LinkDishTag(ctx, db.LinkDishTagParams{
				DishID: dishId,
				TagID:  tagId,
			})
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return 0, err
			}
		}

		err = txqry.UpsertSnapshotEntry(ctx, db.UpsertSnapshotEntryParams{
			SnapshotID: snapshot.ID,
			DishID:     dishId,
			Category:   nullString(record.Category),
			PriceEur:   nullFloat(record.PriceEur),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return snapshot.ID, nil
}

// ensureDish resolves a record to its dish row by content hash,
// refreshing name/description to the latest observed values.
func ensureDish(ctx context.Context, qry *db.Queries, record DishRecord) (int64, error) {
	hash := record.CanonicalHash()

	id, err := qry.GetDishIdByHash(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return qry.CreateDish(ctx, db.CreateDishParams{
			CanonicalHash: hash,
			Name:          nullString(record.Name),
			Description:   nullString(record.Description),
		})
	}
	if err != nil {
		return 0, err
	}

	err = qry.UpdateDish(ctx, db.UpdateDishParams{
		Name:        nullString(record.Name),
		Description: nullString(record.Description),
		ID:          id,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ensureTags inserts placeholder rows for codes that were never seen
// with a label. A code that already exists keeps its label.
func ensureTags(ctx context.Context, qry *db.Queries, codes []string) (map[string]int64, error) {
	ids := map[string]int64{}
	for _, code := range codes {
		if code == "" {
			continue
		}
		err := qry.CreateTag(ctx, db.CreateTagParams{Code: code})
		if err != nil {
			return nil, err
		}
		tag, err := qry.GetTagByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		ids[code] = tag.ID
	}
	return ids, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
