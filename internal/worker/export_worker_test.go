package worker

import (
	"context"
	"errors"
	"testing"

	"dons/internal/amqp"
	"dons/internal/core"
	"dons/internal/export/memory"
	"dons/internal/ingest"
)

type stubReader struct {
	raws []core.RawDonation
	err  error
}

func (s stubReader) ReadAll(context.Context) ([]core.RawDonation, error) {
	return s.raws, s.err
}

func strp(s string) *string { return &s }

func TestHandleRefreshMessage(t *testing.T) {
	reader := stubReader{raws: []core.RawDonation{
		{Amount: core.FlexNumber{Value: 10, Valid: true}, Timestamp: 1000, Name: strp("Alice")},
		{Amount: core.FlexNumber{Value: 30, Valid: true}, Timestamp: 2000, Name: strp("Alice")},
		{Amount: core.FlexNumber{Value: 5, Valid: true}, Timestamp: 3000, Name: strp("Bob")},
	}}
	store := memory.New()
	w := NewExportWorker(reader, store, ingest.Options{}, 2)

	msg := amqp.NewDatasetRefreshMessage("file", 3, 45)
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	snaps := store.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	snap := snaps[0]
	if snap.Source != "file" {
		t.Fatalf("source = %q", snap.Source)
	}
	if snap.KPIs.TotalDonations != 3 || snap.KPIs.TotalAmount != 45 {
		t.Fatalf("kpis = %+v", snap.KPIs)
	}
	if len(snap.TopDonors) != 2 || snap.TopDonors[0].Name != "Alice" || snap.TopDonors[0].TotalAmount != 40 {
		t.Fatalf("top donors = %+v", snap.TopDonors)
	}
}

func TestHandleRefreshMessageEmptyDataset(t *testing.T) {
	store := memory.New()
	w := NewExportWorker(stubReader{}, store, ingest.Options{}, 0)

	msg := amqp.NewDatasetRefreshMessage("sqlite", 0, 0)
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("empty dataset must still export: %v", err)
	}

	snaps := store.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].KPIs.HasData {
		t.Fatal("empty dataset must report HasData false")
	}
}

func TestHandleRefreshMessageReadError(t *testing.T) {
	wantErr := errors.New("boom")
	w := NewExportWorker(stubReader{err: wantErr}, memory.New(), ingest.Options{}, 0)

	msg := amqp.NewDatasetRefreshMessage("file", 0, 0)
	if err := w.HandleRefreshMessage(context.Background(), msg); !errors.Is(err, wantErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}
