// Package file reads donation records from a JSON-array file on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dons/internal/core"
)

type Reader struct {
	path string
}

func New(path string) *Reader {
	return &Reader{path: path}
}

// ReadAll decodes the whole file in one pass. The file must hold a JSON array
// of objects; a missing file maps to core.ErrSourceNotFound and anything that
// is not an array of objects maps to core.ErrMalformedInput.
func (r *Reader) ReadAll(ctx context.Context) ([]core.RawDonation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (add your donations.json file and retry)", core.ErrSourceNotFound, r.path)
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var raws []core.RawDonation
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of objects: %v", core.ErrMalformedInput, err)
	}
	return raws, nil
}

// Path returns the file path backing this reader.
func (r *Reader) Path() string {
	return r.path
}
