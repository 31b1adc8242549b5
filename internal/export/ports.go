// Package export defines the outbound port for publishing dashboard snapshots.
package export

import (
	"context"
	"time"

	"dons/internal/core"
)

// Snapshot is what gets written to the export destination after a dataset
// refresh: the headline figures plus the ranked donor table.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Source      string           `json:"source"`
	Summary     core.Summary     `json:"summary"`
	KPIs        core.KPISet      `json:"kpis"`
	TopDonors   []core.DonorRank `json:"top_donors"`
}

// SnapshotWriter appends a snapshot to the export destination and returns a
// destination-specific reference for the written entry.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, s Snapshot) (ref string, err error)
}
