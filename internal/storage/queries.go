package storage

import (
	"context"
	"database/sql"
)

// Queries wraps the SQL statements used by the repository.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// DonationRow mirrors one row of the donations table.
type DonationRow struct {
	ID               int64
	Amount           float64
	TimestampMS      int64
	Name             sql.NullString
	Email            sql.NullString
	Verified         bool
	CampusName       sql.NullString
	CampusConfidence sql.NullFloat64
}

type CreateDonationParams struct {
	Amount           float64
	TimestampMS      int64
	Name             sql.NullString
	Email            sql.NullString
	Verified         bool
	CampusName       sql.NullString
	CampusConfidence sql.NullFloat64
}

const createDonation = `
INSERT INTO donations (amount, ts_ms, name, email, verified, campus_name, campus_confidence)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateDonation(ctx context.Context, arg CreateDonationParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createDonation,
		arg.Amount, arg.TimestampMS, arg.Name, arg.Email, arg.Verified,
		arg.CampusName, arg.CampusConfidence)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listDonations = `
SELECT id, amount, ts_ms, name, email, verified, campus_name, campus_confidence
FROM donations
ORDER BY ts_ms ASC, id ASC
`

func (q *Queries) ListDonations(ctx context.Context) ([]DonationRow, error) {
	rows, err := q.db.QueryContext(ctx, listDonations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DonationRow
	for rows.Next() {
		var r DonationRow
		if err := rows.Scan(&r.ID, &r.Amount, &r.TimestampMS, &r.Name, &r.Email,
			&r.Verified, &r.CampusName, &r.CampusConfidence); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const countDonations = `SELECT COUNT(*) FROM donations`

func (q *Queries) CountDonations(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDonations).Scan(&n)
	return n, err
}

const deleteAllDonations = `DELETE FROM donations`

func (q *Queries) DeleteAllDonations(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDonations)
	return err
}
