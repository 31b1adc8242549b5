// Package kpi derives dashboard aggregates from the canonical donation table.
//
// Every function here is pure: it reads the immutable table and returns a new
// structure, so calls are safe to run concurrently on a shared table. An empty
// table yields an empty or zero-valued result, never an error.
package kpi

import (
	"math"
	"sort"

	"dons/internal/core"
)

// DefaultTopDonors is the ranked-table size used by the dashboard.
const DefaultTopDonors = 10

// Main computes the scalar indicators for the metric cards. HasData is false
// for an empty table; mean and median are then left at zero instead of NaN so
// the result stays encodable.
func Main(table core.Table) core.KPISet {
	set := core.KPISet{TotalDonations: len(table)}
	if len(table) == 0 {
		return set
	}
	set.HasData = true
	set.TotalAmount = table.TotalAmount()
	set.MeanAmount = set.TotalAmount / float64(len(table))

	amounts := make([]float64, len(table))
	emails := map[string]struct{}{}
	for i, d := range table {
		amounts[i] = d.Amount
		if d.HasEmail() {
			set.WithEmail++
			emails[*d.Email] = struct{}{}
		}
	}
	set.UniqueDonors = len(emails)
	set.MedianAmount = median(amounts)
	return set
}

// RatePerHour returns the amount collected per hour over the observed time
// range. Empty tables and single-instant tables yield 0; division by zero
// never propagates.
func RatePerHour(table core.Table) float64 {
	start, end, ok := table.Span()
	if !ok {
		return 0
	}
	hours := end.Sub(start).Hours()
	if hours == 0 {
		return 0
	}
	return table.TotalAmount() / hours
}

// Hourly groups donations by hour of day (0-23) and returns sum, count and
// mean per present hour, in ascending hour order. Hours without donations are
// absent; chart layers needing all 24 buckets fill the gaps themselves.
func Hourly(table core.Table) []core.HourlyStat {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, d := range table {
		sums[d.Hour] += d.Amount
		counts[d.Hour]++
	}

	stats := make([]core.HourlyStat, 0, len(sums))
	for hour, sum := range sums {
		stats = append(stats, core.HourlyStat{
			Hour:        hour,
			TotalAmount: sum,
			Count:       counts[hour],
			MeanAmount:  sum / float64(counts[hour]),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Hour < stats[j].Hour })
	return stats
}

// TopDonors ranks named donors by their summed amount, descending, keeping at
// most n entries. Anonymous donations are excluded entirely; ties keep the
// order in which the donor first appears in the table. No named donations
// yields an empty result, not an error.
func TopDonors(table core.Table, n int) []core.DonorRank {
	if n <= 0 {
		n = DefaultTopDonors
	}

	index := map[string]int{}
	var ranks []core.DonorRank
	for _, d := range table {
		if !d.HasName() {
			continue
		}
		i, ok := index[*d.Name]
		if !ok {
			i = len(ranks)
			index[*d.Name] = i
			ranks = append(ranks, core.DonorRank{Name: *d.Name})
		}
		ranks[i].TotalAmount += d.Amount
		ranks[i].Count++
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].TotalAmount > ranks[j].TotalAmount
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// Campuses aggregates donations per campus, sorted by summed amount
// descending, with each campus's share of the grand total. Donations without
// a campus are skipped.
func Campuses(table core.Table) []core.CampusStat {
	index := map[string]int{}
	var stats []core.CampusStat
	amounts := map[string][]float64{}
	confidence := map[string]float64{}

	for _, d := range table {
		if d.CampusName == nil {
			continue
		}
		name := *d.CampusName
		i, ok := index[name]
		if !ok {
			i = len(stats)
			index[name] = i
			stats = append(stats, core.CampusStat{Name: name})
		}
		stats[i].TotalAmount += d.Amount
		stats[i].Count++
		amounts[name] = append(amounts[name], d.Amount)
		confidence[name] += d.CampusConfidence
	}

	var grandTotal float64
	for i := range stats {
		grandTotal += stats[i].TotalAmount
	}
	for i := range stats {
		name := stats[i].Name
		stats[i].MeanAmount = stats[i].TotalAmount / float64(stats[i].Count)
		stats[i].MedianAmount = median(amounts[name])
		stats[i].MeanConfidence = confidence[name] / float64(stats[i].Count)
		if grandTotal > 0 {
			stats[i].Percentage = stats[i].TotalAmount / grandTotal * 100
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalAmount > stats[j].TotalAmount
	})
	return stats
}

// median returns the statistical median: the middle value for odd n, the
// average of the two middle values for even n. The input slice is not
// modified. Returns NaN for an empty slice; callers guard against that.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
