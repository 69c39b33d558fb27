package mensa

import (
	"context"
	"testing"
	"time"

	"mensafetch/lib/testutil"
	"mensafetch/services/mensa/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupService(t *testing.T) (Service, func()) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/mensa",
		DbSchema: db.Schema,
	})
	return NewService(setup.DB), cleanup
}

func record(name string, tags ...string) DishRecord {
	if tags == nil {
		tags = []string{}
	}
	return DishRecord{
		Name:         &name,
		Zusatzstoffe: []string{},
		Tags:         tags,
	}
}

func countRows(t *testing.T, s Service, table string) int {
	t.Helper()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestStoreSnapshotDedup(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025123",
		Attempt:   1,
		Records:   []DishRecord{record("Soup"), record("Stew")},
	})
	require.NoError(t, err)

	// the same dishes on another day resolve to the same rows,
	// even across separate calls
	_, err = service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025124",
		Attempt:   1,
		Records:   []DishRecord{record("Soup"), record("Stew"), record("Salad")},
	})
	require.NoError(t, err)

	require.Equal(t, 3, countRows(t, service, "dish"))
}

func TestStoreSnapshotReingestIsIdempotent(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	price := 3.5
	category := "Hauptgericht"
	rec := record("Soup")
	rec.PriceEur = &price

	first, err := service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025123",
		Attempt:   1,
		Records:   []DishRecord{rec},
	})
	require.NoError(t, err)

	rec.Category = &category
	second, err := service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025123",
		Attempt:   1,
		Records:   []DishRecord{rec},
	})
	require.NoError(t, err)

	// the snapshot row is reused and the entry overwritten
	require.Equal(t, first, second)
	require.Equal(t, 1, countRows(t, service, "snapshot"))
	require.Equal(t, 1, countRows(t, service, "snapshot_entry"))

	entries, err := service.qry.GetSnapshotEntries(ctx, first)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Hauptgericht", entries[0].Category.String)
	require.Equal(t, 3.5, entries[0].PriceEur.Float64)
}

func TestTagLabels(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	rec := record("Soup")
	rec.Zusatzstoffe = []string{"1", "WEI"}

	_, err := service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken:  "2025123",
		Attempt:    1,
		Dictionary: map[string]string{"1": "gluten"},
		Records:    []DishRecord{rec},
	})
	require.NoError(t, err)

	tag, err := service.qry.GetTagByCode(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "gluten", tag.Name.String)

	// WEI was only ever seen as a bare code, its label stays null
	tag, err = service.qry.GetTagByCode(ctx, "WEI")
	require.NoError(t, err)
	require.False(t, tag.Name.Valid)

	// a later ingest without a label does not clobber an existing one
	_, err = service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025124",
		Attempt:   1,
		Records:   []DishRecord{rec},
	})
	require.NoError(t, err)
	tag, err = service.qry.GetTagByCode(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "gluten", tag.Name.String)

	// a dictionary label fills in for a code first seen bare
	_, err = service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken:  "2025125",
		Attempt:    1,
		Dictionary: map[string]string{"WEI": "Weizen"},
		Records:    []DishRecord{rec},
	})
	require.NoError(t, err)
	tag, err = service.qry.GetTagByCode(ctx, "WEI")
	require.NoError(t, err)
	require.Equal(t, "Weizen", tag.Name.String)
}

func TestComputeEmpties(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// nothing stored at all
	empties, err := service.ComputeEmpties(ctx, "2025123")
	require.NoError(t, err)
	require.Empty(t, empties)

	sn1, err := service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025123",
		Attempt:   1,
		Records:   []DishRecord{record("A"), record("B"), record("C")},
	})
	require.NoError(t, err)

	// attempt 2 missing: nothing to compare against yet
	empties, err = service.ComputeEmpties(ctx, "2025123")
	require.NoError(t, err)
	require.Empty(t, empties)

	_, err = service.StoreSnapshot(ctx, StoreSnapshotRequest{
		DateToken: "2025123",
		Attempt:   2,
		Records:   []DishRecord{record("A"), record("C")},
	})
	require.NoError(t, err)

	empties, err = service.ComputeEmpties(ctx, "2025123")
	require.NoError(t, err)
	require.Len(t, empties, 1)
	require.Equal(t, "B", *empties[0].Name)

	entries, err := service.qry.GetSnapshotEntries(ctx, sn1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		if e.Name.String == "B" {
			require.True(t, e.WentEmpty)
		} else {
			require.False(t, e.WentEmpty)
		}
	}

	// count and computation time land on the attempt-2 snapshot
	second, err := service.qry.GetSnapshot(ctx, db.GetSnapshotParams{Date: "2025123", Attempt: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), second.EmptiesCount)
	require.True(t, second.ComputedAt.Valid)

	first, err := service.qry.GetSnapshot(ctx, db.GetSnapshotParams{Date: "2025123", Attempt: 1})
	require.NoError(t, err)
	require.Equal(t, int64(0), first.EmptiesCount)
	require.False(t, first.ComputedAt.Valid)

	// re-running recomputes the same result
	empties, err = service.ComputeEmpties(ctx, "2025123")
	require.NoError(t, err)
	require.Len(t, empties, 1)
	require.Equal(t, "B", *empties[0].Name)
}

func TestIngestEndToEnd(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	snapshotId, records, err := service.Ingest(ctx, IngestRequest{
		Document:  sampleDoc,
		DateToken: "2025123",
		Attempt:   1,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	entries, err := service.qry.GetSnapshotEntries(ctx, snapshotId)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Soup", entries[0].Name.String)
	require.Equal(t, "Tomato soup", entries[0].Description.String)
	require.Equal(t, 3.5, entries[0].PriceEur.Float64)

	codes, err := service.qry.GetDishTagCodes(ctx, entries[0].DishID)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, codes)
}
