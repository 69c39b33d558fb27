package mensa

import (
	"context"
	"database/sql"

	"mensafetch/services/mensa/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mensafetch.services.mensa")

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

type IngestRequest struct {
	Document  string
	DateToken string
	Attempt   int64
}

// Ingest parses a raw menu page and stores the result as the snapshot
// for (date, attempt). It returns the extracted records alongside the
// snapshot id.
func (s Service) Ingest(ctx context.Context, req IngestRequest) (int64, []DishRecord, error) {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("date", req.DateToken),
		attribute.Int64("attempt", req.Attempt),
	)

	records, dictionary, err := ParseDocument(req.Document, req.DateToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}

	snapshotId, err := s.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken:  req.DateToken,
		Attempt:    req.Attempt,
		Dictionary: dictionary,
		Records:    records,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	return snapshotId, records, nil
}
