package kpi

import (
	"math"
	"time"

	"dons/internal/core"
)

// DefaultBucket is the timeline bucket width used by the dashboard.
const DefaultBucket = time.Hour

// DefaultEdges are the histogram bin edges used when the caller passes none.
// The final interval is open-ended.
var DefaultEdges = []float64{0, 5, 10, 20, 50, 100, 500}

// Distribution assigns each donation to a half-open interval [edge, next) over
// the ascending edges, with one trailing open-ended bin labeled "edge+". Every
// bin appears in the result even when empty. A value exactly on a boundary
// belongs to the upper bin, except the very first edge which is inclusive.
func Distribution(table core.Table, edges []float64) []core.AmountBin {
	if len(edges) == 0 {
		edges = DefaultEdges
	}

	bins := make([]core.AmountBin, len(edges))
	for i, low := range edges {
		high := math.Inf(1)
		label := core.FormatEdge(low) + "+"
		if i < len(edges)-1 {
			high = edges[i+1]
			label = core.FormatEdge(low) + "-" + core.FormatEdge(high)
		}
		bins[i] = core.AmountBin{Label: label, Low: low, High: high}
	}

	for _, d := range table {
		i := locateBin(edges, d.Amount)
		if i < 0 {
			continue // below the first edge
		}
		bins[i].Count++
		bins[i].TotalAmount += d.Amount
	}
	return bins
}

// locateBin returns the index of the half-open interval containing v, or -1
// when v is below the first edge. The first edge is inclusive.
func locateBin(edges []float64, v float64) int {
	if v < edges[0] {
		return -1
	}
	for i := len(edges) - 1; i >= 0; i-- {
		if v >= edges[i] {
			return i
		}
	}
	return 0
}

// Timeline buckets donations into fixed-width windows starting from the first
// timestamp truncated to the bucket boundary. Gap buckets between populated
// ones are emitted with zero sum and count so the cumulative columns form a
// continuous prefix sum over the bucketed series. An empty table yields an
// empty series.
func Timeline(table core.Table, bucket time.Duration) []core.TimelinePoint {
	if bucket <= 0 {
		bucket = DefaultBucket
	}
	start, end, ok := table.Span()
	if !ok {
		return nil
	}

	origin := start.Truncate(bucket)
	n := int(end.Sub(origin)/bucket) + 1

	points := make([]core.TimelinePoint, n)
	for i := range points {
		points[i].BucketStart = origin.Add(time.Duration(i) * bucket)
	}
	for _, d := range table {
		i := int(d.Timestamp.Sub(origin) / bucket)
		points[i].Amount += d.Amount
		points[i].Count++
	}

	var cumAmount float64
	var cumCount int
	for i := range points {
		cumAmount += points[i].Amount
		cumCount += points[i].Count
		points[i].CumulativeAmount = cumAmount
		points[i].CumulativeCount = cumCount
	}
	return points
}
