package core

import (
	"testing"
	"time"
)

func mkDonation(seq int, ts int64, amount, cumulative float64) Donation {
	return Donation{
		Amount:           amount,
		Timestamp:        time.UnixMilli(ts).UTC(),
		SequenceNumber:   seq,
		CumulativeAmount: cumulative,
	}
}

func TestTableValidate(t *testing.T) {
	ok := Table{
		mkDonation(1, 0, 10, 10),
		mkDonation(2, 1000, 5, 15),
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}

	cases := map[string]Table{
		"non-positive amount": {mkDonation(1, 0, 0, 0)},
		"gap in sequence":     {mkDonation(1, 0, 10, 10), mkDonation(3, 1000, 5, 15)},
		"unsorted":            {mkDonation(1, 1000, 10, 10), mkDonation(2, 0, 5, 15)},
		"bad cumulative":      {mkDonation(1, 0, 10, 10), mkDonation(2, 1000, 5, 20)},
	}
	for name, table := range cases {
		if err := table.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestTableSpan(t *testing.T) {
	if _, _, ok := (Table{}).Span(); ok {
		t.Fatal("empty table should have no span")
	}
	table := Table{
		mkDonation(1, 0, 10, 10),
		mkDonation(2, 3600000, 5, 15),
	}
	start, end, ok := table.Span()
	if !ok {
		t.Fatal("expected a span")
	}
	if !start.Equal(time.UnixMilli(0)) || !end.Equal(time.UnixMilli(3600000)) {
		t.Fatalf("unexpected span: %v..%v", start, end)
	}
}

func TestTableTotalAmount(t *testing.T) {
	table := Table{
		mkDonation(1, 0, 10, 10),
		mkDonation(2, 1000, 5, 15),
	}
	if got := table.TotalAmount(); got != 15 {
		t.Fatalf("TotalAmount = %v, want 15", got)
	}
	if got := (Table{}).TotalAmount(); got != 0 {
		t.Fatalf("empty TotalAmount = %v, want 0", got)
	}
}
