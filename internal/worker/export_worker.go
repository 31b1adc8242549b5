// Package worker exports dashboard snapshots after dataset refreshes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dons/internal/amqp"
	"dons/internal/export"
	"dons/internal/ingest"
	"dons/internal/kpi"
	"dons/internal/source"
)

// ExportWorker reacts to dataset refresh messages: it re-reads the donation
// source, rebuilds the aggregates and appends a snapshot to the export
// destination.
type ExportWorker struct {
	reader    source.DonationReader
	writer    export.SnapshotWriter
	opts      ingest.Options
	topDonors int
}

func NewExportWorker(reader source.DonationReader, writer export.SnapshotWriter, opts ingest.Options, topDonors int) *ExportWorker {
	if topDonors <= 0 {
		topDonors = kpi.DefaultTopDonors
	}
	return &ExportWorker{
		reader:    reader,
		writer:    writer,
		opts:      opts,
		topDonors: topDonors,
	}
}

// HandleRefreshMessage processes a single dataset refresh message from AMQP.
func (w *ExportWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.DatasetRefreshMessage) error {
	slog.InfoContext(ctx, "Processing dataset refresh",
		"source", msg.Source,
		"announced_count", msg.RecordCount)

	raws, err := w.reader.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read donation source: %w", err)
	}

	table := ingest.Clean(raws, w.opts)

	summary, err := ingest.Summarize(table)
	if err != nil {
		// An empty dataset is not retryable; record the empty snapshot and ack.
		slog.WarnContext(ctx, "Refreshed dataset is empty", "source", msg.Source)
	}

	snap := export.Snapshot{
		GeneratedAt: time.Now(),
		Source:      msg.Source,
		Summary:     summary,
		KPIs:        kpi.Main(table),
		TopDonors:   kpi.TopDonors(table, w.topDonors),
	}

	ref, err := w.writer.WriteSnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"ref", ref,
		"record_count", snap.KPIs.TotalDonations,
		"total_amount", snap.KPIs.TotalAmount)

	return nil
}
