package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mensafetch/lib/timezone"
	mensadb "mensafetch/services/mensa/db"
)

// Api serves the stored snapshots read-only. All writes go through the
// cron driven cli.
type Api struct {
	qry *mensadb.Queries
}

func NewApi(qry *mensadb.Queries) Api {
	return Api{qry: qry}
}

type menuDish struct {
	DishId      int64    `json:"dish_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	PriceEur    *float64 `json:"price_eur"`
	Tags        []string `json:"tags"`
	WentEmpty   bool     `json:"went_empty"`
}

type menuResponse struct {
	Date       string     `json:"date"`
	Attempt    int64      `json:"attempt"`
	SnapshotId int64      `json:"snapshot_id"`
	CreatedAt  int64      `json:"created_at"`
	Dishes     []menuDish `json:"dishes"`
}

func (a Api) Menu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	if date == "" {
		date = timezone.DateToken(timezone.Now())
	}
	attempt := int64(1)
	if raw := r.URL.Query().Get("attempt"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || (parsed != 1 && parsed != 2) {
			http.Error(w, "attempt must be 1 or 2", http.StatusBadRequest)
			return
		}
		attempt = parsed
	}

	snapshot, err := a.qry.GetSnapshot(ctx, mensadb.GetSnapshotParams{
		Date:    date,
		Attempt: attempt,
	})
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "no snapshot for this date and attempt", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, "failed to load snapshot", err)
		return
	}

	entries, err := a.qry.GetSnapshotEntries(ctx, snapshot.ID)
	if err != nil {
		internalError(w, "failed to load snapshot entries", err)
		return
	}

	dishes := []menuDish{}
	for _, e := range entries {
		tags, err := a.qry.GetDishTagCodes(ctx, e.DishID)
		if err != nil {
			internalError(w, "failed to load dish tags", err)
			return
		}
		if tags == nil {
			tags = []string{}
		}
		dishes = append(dishes, menuDish{
			DishId:      e.DishID,
			Name:        fromNullString(e.Name),
			Description: fromNullString(e.Description),
			Category:    fromNullString(e.Category),
			PriceEur:    fromNullFloat(e.PriceEur),
			Tags:        tags,
			WentEmpty:   e.WentEmpty,
		})
	}

	writeJson(w, menuResponse{
		Date:       date,
		Attempt:    attempt,
		SnapshotId: snapshot.ID,
		CreatedAt:  snapshot.CreatedAt,
		Dishes:     dishes,
	})
}

type emptyDish struct {
	DishId        int64   `json:"dish_id"`
	Name          *string `json:"name"`
	CanonicalHash string  `json:"canonical_hash"`
}

type emptiesResponse struct {
	Date         string      `json:"date"`
	EmptiesCount int64       `json:"empties_count"`
	ComputedAt   *int64      `json:"computed_at"`
	Dishes       []emptyDish `json:"dishes"`
}

func (a Api) Empties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	if date == "" {
		date = timezone.DateToken(timezone.Now())
	}

	second, err := a.qry.GetSnapshot(ctx, mensadb.GetSnapshotParams{
		Date:    date,
		Attempt: 2,
	})
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "no second attempt for this date", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, "failed to load snapshot", err)
		return
	}

	response := emptiesResponse{
		Date:         date,
		EmptiesCount: second.EmptiesCount,
		Dishes:       []emptyDish{},
	}
	if second.ComputedAt.Valid {
		response.ComputedAt = &second.ComputedAt.Int64
	}

	first, err := a.qry.GetSnapshot(ctx, mensadb.GetSnapshotParams{
		Date:    date,
		Attempt: 1,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		internalError(w, "failed to load snapshot", err)
		return
	}
	if err == nil {
		entries, err := a.qry.GetSnapshotEntries(ctx, first.ID)
		if err != nil {
			internalError(w, "failed to load snapshot entries", err)
			return
		}
		for _, e := range entries {
			if !e.WentEmpty {
				continue
			}
			response.Dishes = append(response.Dishes, emptyDish{
				DishId:        e.DishID,
				Name:          fromNullString(e.Name),
				CanonicalHash: e.CanonicalHash,
			})
		}
	}

	writeJson(w, response)
}

func internalError(w http.ResponseWriter, message string, err error) {
	slog.Error(message, "err", err)
	http.Error(w, message, http.StatusInternalServerError)
}

func writeJson(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
