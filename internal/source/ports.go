// Package source defines the inbound port for donation data.
package source

import (
	"context"

	"dons/internal/core"
)

type (
	// DonationReader supplies the raw records that the cleaner turns into the
	// canonical table. Implementations report core.ErrSourceNotFound and
	// core.ErrMalformedInput so callers can match with errors.Is.
	DonationReader interface {
		ReadAll(ctx context.Context) ([]core.RawDonation, error)
	}

	// DonationImporter archives raw records so a dataset can be re-served
	// without the original file.
	DonationImporter interface {
		ImportBatch(ctx context.Context, raws []core.RawDonation) (int, error)
	}
)
