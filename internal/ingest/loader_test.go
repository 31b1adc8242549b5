package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dons/internal/core"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), Options{})
	if !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := []string{
		`{"amount": 10}`, // object, not array
		`[{"amount": 10}`,
		`not json`,
	}
	for _, body := range cases {
		path := filepath.Join(t.TempDir(), "donations.json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		_, err := Load(path, Options{})
		if !errors.Is(err, core.ErrMalformedInput) {
			t.Fatalf("%q: expected ErrMalformedInput, got %v", body, err)
		}
	}
}

func TestCleanDropsAndAccumulates(t *testing.T) {
	// Mirrors the reference scenario: string amount, numeric amount, and an
	// empty amount that folds to 0 and is dropped.
	table, err := Decode([]byte(`[
		{"amount": "10", "timestamp": 0},
		{"amount": 5, "timestamp": 3600000},
		{"amount": "", "timestamp": 7200000}
	]`), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 records after cleaning, got %d", len(table))
	}
	if total := table.TotalAmount(); total != 15 {
		t.Fatalf("total = %v, want 15", total)
	}
	if table[0].CumulativeAmount != 10 || table[1].CumulativeAmount != 15 {
		t.Fatalf("cumulative = [%v %v], want [10 15]",
			table[0].CumulativeAmount, table[1].CumulativeAmount)
	}
	if table[0].SequenceNumber != 1 || table[1].SequenceNumber != 2 {
		t.Fatal("sequence numbers must be dense 1..N")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestCleanDropsNegativeAmounts(t *testing.T) {
	table := Clean([]core.RawDonation{
		{Amount: core.FlexNumber{Value: -5, Valid: true}, Timestamp: 0},
		{Amount: core.FlexNumber{Value: 3, Valid: true}, Timestamp: 1000},
	}, Options{})
	if len(table) != 1 || table[0].Amount != 3 {
		t.Fatalf("negative amounts must be dropped, got %+v", table)
	}
}

func TestCleanSortsStably(t *testing.T) {
	alice, bob := "Alice", "Bob"
	table := Clean([]core.RawDonation{
		{Amount: core.FlexNumber{Value: 2, Valid: true}, Timestamp: 5000, Name: &bob},
		{Amount: core.FlexNumber{Value: 1, Valid: true}, Timestamp: 1000},
		{Amount: core.FlexNumber{Value: 3, Valid: true}, Timestamp: 5000, Name: &alice},
	}, Options{})
	if len(table) != 3 {
		t.Fatalf("expected 3 records, got %d", len(table))
	}
	// Bob came before Alice in the input and shares the timestamp.
	if table[1].Name == nil || *table[1].Name != "Bob" {
		t.Fatalf("tie order not preserved: %+v", table)
	}
	if table[2].Name == nil || *table[2].Name != "Alice" {
		t.Fatalf("tie order not preserved: %+v", table)
	}
}

func TestCleanDerivesCalendarFields(t *testing.T) {
	// 2021-06-15 14:30:00 UTC
	ts := time.Date(2021, 6, 15, 14, 30, 0, 0, time.UTC)
	table := Clean([]core.RawDonation{
		{Amount: core.FlexNumber{Value: 1, Valid: true}, Timestamp: ts.UnixMilli()},
	}, Options{})
	d := table[0]
	if d.Date != "2021-06-15" || d.Hour != 14 || d.DayName != "Tuesday" {
		t.Fatalf("calendar fields = %q %d %q", d.Date, d.Hour, d.DayName)
	}

	// The same instant lands in a different hour in another location.
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	table = Clean([]core.RawDonation{
		{Amount: core.FlexNumber{Value: 1, Valid: true}, Timestamp: ts.UnixMilli()},
	}, Options{Location: paris})
	if table[0].Hour != 16 {
		t.Fatalf("hour in Paris = %d, want 16", table[0].Hour)
	}
}

func TestSummarize(t *testing.T) {
	if _, err := Summarize(core.Table{}); !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}

	email := "a@example.org"
	campus := "Lyon"
	table := Clean([]core.RawDonation{
		{Amount: core.FlexNumber{Value: 10, Valid: true}, Timestamp: 0, Verified: true, Email: &email, CampusName: &campus},
		{Amount: core.FlexNumber{Value: 5, Valid: true}, Timestamp: 3600000, CampusName: &campus},
	}, Options{})
	s, err := Summarize(table)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.TotalDonations != 2 || s.TotalAmount != 15 {
		t.Fatalf("summary totals = %+v", s)
	}
	if s.VerifiedCount != 1 || s.UnverifiedCount != 1 || s.WithEmail != 1 {
		t.Fatalf("summary counts = %+v", s)
	}
	if len(s.Campuses) != 1 || s.Campuses[0] != "Lyon" {
		t.Fatalf("campuses = %v", s.Campuses)
	}
	if !s.Start.Equal(time.UnixMilli(0).UTC()) || !s.End.Equal(time.UnixMilli(3600000).UTC()) {
		t.Fatalf("range = %v..%v", s.Start, s.End)
	}
}
