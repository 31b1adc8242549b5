// Package ingest turns raw donation records into the canonical table.
//
// Loading is a single pass: decode the JSON array, coerce amounts, derive
// calendar fields, drop non-positive amounts, sort by timestamp and assign
// sequence numbers and cumulative sums. A load failure is terminal for the
// invocation; per-record coercion failures are not.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"dons/internal/core"
)

// Options controls cleaning behavior.
type Options struct {
	// Location used to derive date, hour and day name. Defaults to UTC, which
	// matches sources that record naive millisecond epochs.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Load reads a JSON array of donation objects from path and returns the
// cleaned canonical table. A missing file yields core.ErrSourceNotFound and a
// structurally invalid file yields core.ErrMalformedInput; both are wrapped so
// callers can match with errors.Is.
func Load(path string, opts Options) (core.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (add your donations.json file and retry)", core.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data, opts)
}

// Decode parses raw JSON bytes into the cleaned canonical table.
func Decode(data []byte, opts Options) (core.Table, error) {
	var raws []core.RawDonation
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of objects: %v", core.ErrMalformedInput, err)
	}
	return Clean(raws, opts), nil
}

// Clean normalizes raw records into the canonical table. Records whose amount
// folds to zero or below are dropped; ties on timestamp keep their original
// relative order.
func Clean(raws []core.RawDonation, opts Options) core.Table {
	loc := opts.location()

	table := make(core.Table, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		amount := raw.Amount.AmountOrZero()
		if amount <= 0 {
			dropped++
			continue
		}
		ts := time.UnixMilli(raw.Timestamp).In(loc)
		table = append(table, core.Donation{
			Amount:           amount,
			Timestamp:        ts,
			Date:             ts.Format("2006-01-02"),
			Hour:             ts.Hour(),
			DayName:          ts.Weekday().String(),
			Name:             raw.Name,
			Email:            raw.Email,
			Verified:         raw.Verified,
			CampusName:       raw.CampusName,
			CampusConfidence: raw.CampusConfidence.AmountOrZero(),
		})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Timestamp.Before(table[j].Timestamp)
	})

	var running float64
	for i := range table {
		running += table[i].Amount
		table[i].SequenceNumber = i + 1
		table[i].CumulativeAmount = running
	}

	if dropped > 0 {
		slog.Debug("Dropped donations with non-positive amounts",
			"dropped", dropped, "kept", len(table))
	}
	return table
}

// Summarize describes the dataset as a whole. An empty table yields
// core.ErrEmptyDataset since its time range is undefined.
func Summarize(table core.Table) (core.Summary, error) {
	start, end, ok := table.Span()
	if !ok {
		return core.Summary{}, core.ErrEmptyDataset
	}

	s := core.Summary{
		TotalDonations: len(table),
		TotalAmount:    table.TotalAmount(),
		Start:          start,
		End:            end,
	}
	seen := map[string]struct{}{}
	for _, d := range table {
		if d.Verified {
			s.VerifiedCount++
		} else {
			s.UnverifiedCount++
		}
		if d.HasEmail() {
			s.WithEmail++
		}
		if d.CampusName != nil {
			if _, dup := seen[*d.CampusName]; !dup {
				seen[*d.CampusName] = struct{}{}
				s.Campuses = append(s.Campuses, *d.CampusName)
			}
		}
	}
	sort.Strings(s.Campuses)
	return s, nil
}
