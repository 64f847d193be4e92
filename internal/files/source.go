package files

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
)

// Source reads documents through an afs storage service.
// Local paths are resolved to absolute ones before use.
type Source struct {
	fs afs.Service
}

// NewSource creates a Source backed by the default afs service.
func NewSource() *Source {
	return &Source{fs: afs.New()}
}

// Exists reports whether location exists.
func (s *Source) Exists(ctx context.Context, location string) (bool, error) {
	abs, err := toURL(location)
	if err != nil {
		return false, err
	}
	return s.fs.Exists(ctx, abs)
}

// Read returns the contents of location.
func (s *Source) Read(ctx context.Context, location string) ([]byte, error) {
	abs, err := toURL(location)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.DownloadWithURL(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

func toURL(location string) (string, error) {
	if filepath.IsAbs(location) {
		return location, nil
	}
	return filepath.Abs(location)
}
