package mensa

import (
	"context"
	"database/sql"
	"errors"

	"mensafetch/lib/timezone"
	"mensafetch/services/mensa/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type EmptyDish struct {
	DishID        int64   `json:"dish_id"`
	Name          *string `json:"name"`
	CanonicalHash string  `json:"canonical_hash"`
}

// ComputeEmpties diffs the two attempts of one day: dishes present in
// attempt 1 but absent from attempt 2 are marked went-empty on their
// attempt-1 entries, while the count and computation time land on the
// attempt-2 snapshot, the one whose absence revealed them. A missing
// attempt on either side means there is nothing to compare yet and
// yields an empty result. Safe to re-run; the previous marks are
// recomputed from scratch.
func (s Service) ComputeEmpties(ctx context.Context, dateToken string) ([]EmptyDish, error) {
	ctx, span := tracer.Start(ctx, "ComputeEmpties")
	defer span.End()
	span.SetAttributes(attribute.String("date", dateToken))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	first, err := txqry.GetSnapshot(ctx, db.GetSnapshotParams{Date: dateToken, Attempt: 1})
	if errors.Is(err, sql.ErrNoRows) {
		return []EmptyDish{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	second, err := txqry.GetSnapshot(ctx, db.GetSnapshotParams{Date: dateToken, Attempt: 2})
	if errors.Is(err, sql.ErrNoRows) {
		return []EmptyDish{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	missing, err := txqry.GetMissingDishes(ctx, db.GetMissingDishesParams{
		FirstSnapshotID:  first.ID,
		SecondSnapshotID: second.ID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	err = txqry.ResetWentEmpty(ctx, first.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	empties := []EmptyDish{}
	for _, row := range missing {
		err := txqry.MarkWentEmpty(ctx, db.MarkWentEmptyParams{
			SnapshotID: first.ID,
			DishID:     row.DishID,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var name *string
		if row.Name.Valid {
			name = &row.Name.String
		}
		empties = append(empties, EmptyDish{
			DishID:        row.DishID,
			Name:          name,
			CanonicalHash: row.CanonicalHash,
		})
	}

	err = txqry.SetSnapshotComputed(ctx, db.SetSnapshotComputedParams{
		EmptiesCount: int64(len(empties)),
		ComputedAt:   timezone.Now().Unix(),
		ID:           second.ID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("empties", len(empties)))
	return empties, nil
}
