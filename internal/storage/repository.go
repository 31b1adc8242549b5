package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dons/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository archives raw donations in a local sqlite database so a
// dataset can be re-served without the original export file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadAll implements source.DonationReader. An empty table is not an error
// here; the cleaner decides what an empty dataset means.
func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]core.RawDonation, error) {
	rows, err := r.queries.ListDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	raws := make([]core.RawDonation, len(rows))
	for i, row := range rows {
		raws[i] = core.RawDonation{
			Amount:    core.FlexNumber{Value: row.Amount, Valid: true},
			Timestamp: row.TimestampMS,
			Verified:  row.Verified,
		}
		if row.Name.Valid {
			name := row.Name.String
			raws[i].Name = &name
		}
		if row.Email.Valid {
			email := row.Email.String
			raws[i].Email = &email
		}
		if row.CampusName.Valid {
			campus := row.CampusName.String
			raws[i].CampusName = &campus
		}
		if row.CampusConfidence.Valid {
			raws[i].CampusConfidence = core.FlexNumber{Value: row.CampusConfidence.Float64, Valid: true}
		}
	}
	return raws, nil
}

// ImportBatch implements source.DonationImporter. The whole batch is written
// in one transaction so a failed import leaves the archive untouched. Records
// with an unusable amount are skipped rather than stored as zeros; the
// returned count is the number of rows actually inserted.
func (r *SQLiteRepository) ImportBatch(ctx context.Context, raws []core.RawDonation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, raw := range raws {
		if raw.Amount.AmountOrZero() <= 0 {
			continue
		}
		params := CreateDonationParams{
			Amount:      raw.Amount.Value,
			TimestampMS: raw.Timestamp,
			Verified:    raw.Verified,
		}
		if raw.Name != nil {
			params.Name = sql.NullString{String: *raw.Name, Valid: true}
		}
		if raw.Email != nil {
			params.Email = sql.NullString{String: *raw.Email, Valid: true}
		}
		if raw.CampusName != nil {
			params.CampusName = sql.NullString{String: *raw.CampusName, Valid: true}
		}
		if raw.CampusConfidence.Valid {
			params.CampusConfidence = sql.NullFloat64{Float64: raw.CampusConfidence.Value, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, createDonation,
			params.Amount, params.TimestampMS, params.Name, params.Email,
			params.Verified, params.CampusName, params.CampusConfidence); err != nil {
			return 0, fmt.Errorf("insert donation: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import transaction: %w", err)
	}

	slog.InfoContext(ctx, "Donation batch imported",
		"received", len(raws),
		"inserted", inserted,
		"skipped", len(raws)-inserted)

	return inserted, nil
}

// Clear removes every archived donation.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if err := r.queries.DeleteAllDonations(ctx); err != nil {
		return fmt.Errorf("clear donations: %w", err)
	}
	slog.InfoContext(ctx, "Donation archive cleared")
	return nil
}

// Count returns the number of archived donations.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountDonations(ctx)
	if err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return n, nil
}
