package kpi

import (
	"math"
	"testing"
	"time"

	"dons/internal/core"
)

func TestDistributionDefaultBins(t *testing.T) {
	table := buildTable(t, anon(3, 0), anon(7, 1000), anon(60, 2000))
	bins := Distribution(table, nil)
	if len(bins) != len(DefaultEdges) {
		t.Fatalf("expected %d bins, got %d", len(DefaultEdges), len(bins))
	}

	want := map[string]int{"0-5": 1, "5-10": 1, "50-100": 1}
	for _, b := range bins {
		if b.Count != want[b.Label] {
			t.Fatalf("bin %s count = %d, want %d", b.Label, b.Count, want[b.Label])
		}
	}
}

func TestDistributionBoundaries(t *testing.T) {
	// Values exactly on an edge belong to the upper bin; the first edge is
	// inclusive, and the last bin is open-ended.
	table := buildTable(t, anon(5, 0), anon(500, 1000), anon(10000, 2000))
	bins := Distribution(table, nil)
	byLabel := map[string]core.AmountBin{}
	for _, b := range bins {
		byLabel[b.Label] = b
	}
	if byLabel["5-10"].Count != 1 {
		t.Fatalf("5 should land in 5-10: %+v", byLabel["5-10"])
	}
	if byLabel["0-5"].Count != 0 {
		t.Fatalf("0-5 should be empty: %+v", byLabel["0-5"])
	}
	last := byLabel["500+"]
	if last.Count != 2 || !math.IsInf(last.High, 1) {
		t.Fatalf("500+ = %+v", last)
	}
}

func TestDistributionCustomEdgesAndEmpty(t *testing.T) {
	bins := Distribution(core.Table{}, []float64{0, 1, 2})
	if len(bins) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(bins))
	}
	for _, b := range bins {
		if b.Count != 0 || b.TotalAmount != 0 {
			t.Fatalf("empty table bin %s not zero: %+v", b.Label, b)
		}
	}
	if bins[0].Label != "0-1" || bins[2].Label != "2+" {
		t.Fatalf("labels = %q %q", bins[0].Label, bins[2].Label)
	}
}

func TestTimeline(t *testing.T) {
	hour := int64(3600 * 1000)
	// Donations in buckets 0 and 3; buckets 1 and 2 must appear with zeros.
	table := buildTable(t,
		anon(10, 10*60*1000), // 00:10
		anon(5, 3*hour),      // 03:00
	)
	points := Timeline(table, time.Hour)
	if len(points) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(points))
	}
	if points[0].Amount != 10 || points[0].Count != 1 {
		t.Fatalf("bucket 0 = %+v", points[0])
	}
	for _, i := range []int{1, 2} {
		if points[i].Amount != 0 || points[i].Count != 0 {
			t.Fatalf("gap bucket %d not zero: %+v", i, points[i])
		}
		if points[i].CumulativeAmount != 10 || points[i].CumulativeCount != 1 {
			t.Fatalf("gap bucket %d cumulative = %+v", i, points[i])
		}
	}
	last := points[3]
	if last.Amount != 5 || last.CumulativeAmount != 15 || last.CumulativeCount != 2 {
		t.Fatalf("last bucket = %+v", last)
	}

	// Buckets are contiguous and start on the truncated boundary.
	for i, p := range points {
		want := time.UnixMilli(0).UTC().Add(time.Duration(i) * time.Hour)
		if !p.BucketStart.Equal(want) {
			t.Fatalf("bucket %d start = %v, want %v", i, p.BucketStart, want)
		}
	}
}

func TestTimelineCumulativeMatchesPrefixSums(t *testing.T) {
	table := buildTable(t,
		anon(1, 0),
		anon(2, 30*60*1000),
		anon(3, 2*3600*1000),
		anon(4, 5*3600*1000),
	)
	points := Timeline(table, time.Hour)
	var sumA float64
	var sumC int
	for i, p := range points {
		sumA += p.Amount
		sumC += p.Count
		if p.CumulativeAmount != sumA || p.CumulativeCount != sumC {
			t.Fatalf("bucket %d cumulative mismatch: %+v", i, p)
		}
	}
	if points[len(points)-1].CumulativeAmount != table.TotalAmount() {
		t.Fatal("final cumulative must equal the table total")
	}
}

func TestTimelineEmptyAndSingle(t *testing.T) {
	if points := Timeline(core.Table{}, time.Hour); len(points) != 0 {
		t.Fatalf("empty table timeline = %v", points)
	}
	points := Timeline(buildTable(t, anon(7, 90*60*1000)), time.Hour)
	if len(points) != 1 {
		t.Fatalf("single record should produce 1 bucket, got %d", len(points))
	}
	if points[0].Amount != 7 || !points[0].BucketStart.Equal(time.UnixMilli(0).UTC().Add(time.Hour)) {
		t.Fatalf("bucket = %+v", points[0])
	}
}

func TestTimelineDefaultBucket(t *testing.T) {
	points := Timeline(buildTable(t, anon(1, 0)), 0)
	if len(points) != 1 {
		t.Fatalf("default bucket should apply, got %v", points)
	}
}
