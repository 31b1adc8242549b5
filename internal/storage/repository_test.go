package storage

import (
	"context"
	"path/filepath"
	"testing"

	"dons/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "dons.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strp(s string) *string { return &s }

func TestImportBatchRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	raws := []core.RawDonation{
		{
			Amount:           core.FlexNumber{Value: 25, Valid: true},
			Timestamp:        2000,
			Name:             strp("Alice"),
			Email:            strp("alice@example.org"),
			Verified:         true,
			CampusName:       strp("Paris"),
			CampusConfidence: core.FlexNumber{Value: 0.9, Valid: true},
		},
		{
			Amount:    core.FlexNumber{Value: 10, Valid: true},
			Timestamp: 1000,
		},
	}

	inserted, err := repo.ImportBatch(ctx, raws)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}

	got, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// ReadAll orders by timestamp, so the 10 at t=1000 comes first.
	if got[0].Amount.Value != 10 || got[0].Timestamp != 1000 {
		t.Fatalf("first record = %+v", got[0])
	}
	if got[0].Name != nil || got[0].Email != nil || got[0].CampusName != nil {
		t.Fatal("anonymous record must keep nil identity fields")
	}
	if got[0].CampusConfidence.Valid {
		t.Fatal("missing confidence must read back invalid")
	}
	if got[1].Name == nil || *got[1].Name != "Alice" || !got[1].Verified {
		t.Fatalf("second record = %+v", got[1])
	}
	if !got[1].CampusConfidence.Valid || got[1].CampusConfidence.Value != 0.9 {
		t.Fatalf("confidence = %+v", got[1].CampusConfidence)
	}
}

func TestImportBatchSkipsUnusableAmounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	raws := []core.RawDonation{
		{Amount: core.FlexNumber{Value: 5, Valid: true}, Timestamp: 1000},
		{Amount: core.FlexNumber{}, Timestamp: 2000},
		{Amount: core.FlexNumber{Value: -3, Valid: true}, Timestamp: 3000},
	}

	inserted, err := repo.ImportBatch(ctx, raws)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got %d", inserted)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 archived row, got %d", n)
	}
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ImportBatch(ctx, []core.RawDonation{
		{Amount: core.FlexNumber{Value: 5, Valid: true}, Timestamp: 1000},
	}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty archive, got %d rows", len(got))
	}
}
