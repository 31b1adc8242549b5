// Package backend selects and constructs the donation data source from
// configuration.
package backend

import (
	"context"

	"dons/internal/source"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles the constructed source with its optional capabilities.
// Importer is nil for read-only backends such as the JSON file.
type Result struct {
	Reader   source.DonationReader
	Importer source.DonationImporter
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a donation source backend.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
