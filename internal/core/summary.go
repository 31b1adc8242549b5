package core

import "time"

// Summary is a compact description of the whole dataset, shown in the
// dashboard footer and exported alongside the KPI snapshot.
type Summary struct {
	TotalDonations  int       `json:"total_donations"`
	TotalAmount     float64   `json:"total_amount"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	VerifiedCount   int       `json:"verified_count"`
	UnverifiedCount int       `json:"unverified_count"`
	WithEmail       int       `json:"with_email"`
	Campuses        []string  `json:"campuses,omitempty"`
}

// KPISet holds the scalar indicators for the metric cards. HasData is false
// for an empty table, in which case mean and median are not computable and
// are left at zero rather than NaN.
type KPISet struct {
	TotalAmount    float64 `json:"total_amount"`
	TotalDonations int     `json:"total_donations"`
	MeanAmount     float64 `json:"mean_amount"`
	MedianAmount   float64 `json:"median_amount"`
	UniqueDonors   int     `json:"unique_donors"`
	WithEmail      int     `json:"donations_with_email"`
	HasData        bool    `json:"has_data"`
}

// HourlyStat aggregates donations sharing the same hour of day. Hours with no
// donations are absent from the result.
type HourlyStat struct {
	Hour        int     `json:"hour"`
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"donation_count"`
	MeanAmount  float64 `json:"mean_amount"`
}

// AmountBin is one half-open histogram interval [Low, High); the final,
// open-ended bin has High set to +Inf and a "Low+" label.
type AmountBin struct {
	Label       string  `json:"label"`
	Low         float64 `json:"low"`
	High        float64 `json:"high"`
	Count       int     `json:"donation_count"`
	TotalAmount float64 `json:"total_amount"`
}

// DonorRank is one entry of the ranked donor table.
type DonorRank struct {
	Name        string  `json:"name"`
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"donation_count"`
}

// TimelinePoint is one fixed-width bucket of the donation time series.
// Cumulative columns are prefix sums over the bucketed series, so empty
// buckets carry the running totals forward.
type TimelinePoint struct {
	BucketStart      time.Time `json:"bucket_start"`
	Amount           float64   `json:"amount"`
	Count            int       `json:"donation_count"`
	CumulativeAmount float64   `json:"cumulative_amount"`
	CumulativeCount  int       `json:"cumulative_count"`
}

// CampusStat aggregates donations per campus, with the campus share of the
// grand total as a percentage.
type CampusStat struct {
	Name           string  `json:"campus_name"`
	TotalAmount    float64 `json:"total_amount"`
	Count          int     `json:"donation_count"`
	MeanAmount     float64 `json:"mean_amount"`
	MedianAmount   float64 `json:"median_amount"`
	MeanConfidence float64 `json:"avg_confidence"`
	Percentage     float64 `json:"percentage"`
}
