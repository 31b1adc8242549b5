package core

import (
	"errors"
	"time"
)

var (
	// ErrSourceNotFound signals that the donation source does not exist.
	ErrSourceNotFound = errors.New("donation source not found")
	// ErrMalformedInput signals that the source is not a JSON array of objects.
	ErrMalformedInput = errors.New("malformed donation input")
	// ErrEmptyDataset signals a valid but empty dataset.
	ErrEmptyDataset = errors.New("empty dataset")
)

type (
	// RawDonation is a donation record as received from the source, before any
	// cleaning. Amounts may arrive as numbers, numeric strings, empty strings
	// or be missing entirely; identity and campus fields are optional and
	// depend on the data source version.
	RawDonation struct {
		Amount           FlexNumber `json:"amount"`
		Timestamp        int64      `json:"timestamp"` // milliseconds since Unix epoch
		Name             *string    `json:"name"`
		Email            *string    `json:"email"`
		Verified         bool       `json:"verified"`
		CampusName       *string    `json:"campus_name"`
		CampusConfidence FlexNumber `json:"campus_confidence"`
	}

	// Donation is the canonical, fully typed record every aggregation reads.
	// Calendar fields are derived once at clean time and stay consistent with
	// Timestamp. A nil Name or Email means the donation is anonymous, which is
	// not the same as an empty string present in the source.
	Donation struct {
		Amount           float64
		Timestamp        time.Time
		Date             string // calendar date, YYYY-MM-DD
		Hour             int    // 0-23 in the clean-time location
		DayName          string // weekday name
		Name             *string
		Email            *string
		Verified         bool
		CampusName       *string
		CampusConfidence float64
		SequenceNumber   int     // dense 1..N in timestamp order
		CumulativeAmount float64 // running sum over the sorted table
	}

	// Table is the cleaned, timestamp-sorted sequence of donations. It is
	// built once per load and must be treated as read-only afterward; every
	// aggregation returns a new derived structure.
	Table []Donation
)

// HasName reports whether the donation carries a donor name.
func (d Donation) HasName() bool { return d.Name != nil }

// HasEmail reports whether the donation carries a donor email.
func (d Donation) HasEmail() bool { return d.Email != nil }

// TotalAmount returns the sum of all amounts. The table invariant makes this
// the last cumulative value, but summing keeps the function total on any slice.
func (t Table) TotalAmount() float64 {
	var sum float64
	for _, d := range t {
		sum += d.Amount
	}
	return sum
}

// Span returns the first and last timestamps of the table.
// ok is false for an empty table.
func (t Table) Span() (start, end time.Time, ok bool) {
	if len(t) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t[0].Timestamp, t[len(t)-1].Timestamp, true
}

// Validate checks the table invariants: ascending timestamps, dense 1..N
// sequence numbers, strictly positive amounts and consistent cumulative sums.
func (t Table) Validate() error {
	var running float64
	for i, d := range t {
		if d.Amount <= 0 {
			return errors.New("table contains non-positive amount")
		}
		if d.SequenceNumber != i+1 {
			return errors.New("sequence numbers are not dense 1..N")
		}
		if i > 0 && d.Timestamp.Before(t[i-1].Timestamp) {
			return errors.New("table is not sorted by timestamp")
		}
		running += d.Amount
		if diff := d.CumulativeAmount - running; diff > 1e-9 || diff < -1e-9 {
			return errors.New("cumulative amount does not match running sum")
		}
	}
	return nil
}
