package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dons/internal/core"
)

func TestReadAllMissing(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "absent.json"))
	_, err := r.ReadAll(context.Background())
	if !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestReadAllMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := New(path).ReadAll(context.Background())
	if !errors.Is(err, core.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.json")
	body := `[
		{"amount": "12.5", "timestamp": 1000, "name": "Alice", "verified": true},
		{"amount": 3, "timestamp": 2000}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	raws, err := New(path).ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 records, got %d", len(raws))
	}
	if raws[0].Amount.Value != 12.5 || !raws[0].Verified || raws[0].Name == nil || *raws[0].Name != "Alice" {
		t.Fatalf("first record = %+v", raws[0])
	}
	if raws[1].Name != nil {
		t.Fatal("missing name must stay nil")
	}
}

func TestReadAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("whatever.json").ReadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
