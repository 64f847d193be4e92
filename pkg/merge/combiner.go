package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cubahno/oascombine/internal/files"
	"github.com/cubahno/oascombine/pkg/config"
	"github.com/cubahno/oascombine/pkg/lint"
)

// Reader gives access to the stored documents.
type Reader interface {
	Exists(ctx context.Context, location string) (bool, error)
	Read(ctx context.Context, location string) ([]byte, error)
}

// Result describes one merge run.
// Processed counts the fragments folded in, Total the configured ones.
// Paths and Schemas count the top level entries of the combined document.
// Skipped lists fragments that did not exist.
// Checksum is the SHA256 of the written output.
type Result struct {
	Processed int
	Total     int
	Paths     int
	Schemas   int
	Skipped   []string
	Output    string
	Checksum  string
}

// Combiner folds the configured fragments into a copy of the base document
// and writes the combined document.
type Combiner struct {
	paths  config.Paths
	reader Reader
	lint   bool
}

// Option configures a Combiner.
type Option func(*Combiner)

// WithReader replaces the default afs backed reader.
func WithReader(reader Reader) Option {
	return func(c *Combiner) {
		c.reader = reader
	}
}

// WithLint reports duplicate object keys found in the inputs before they are decoded.
func WithLint(enabled bool) Option {
	return func(c *Combiner) {
		c.lint = enabled
	}
}

// NewCombiner creates a Combiner for the resolved paths.
func NewCombiner(paths config.Paths, opts ...Option) *Combiner {
	c := &Combiner{
		paths:  paths,
		reader: files.NewSource(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Combine runs one merge.
// A missing fragment is skipped with a warning.
// Any fragment that fails to parse aborts the run with a *FragmentError
// and the output file is left untouched.
func (c *Combiner) Combine(ctx context.Context) (*Result, error) {
	slog.Info("Combining OpenAPI documents", "base", c.paths.BaseDocument, "fragments", len(c.paths.FragmentFiles))

	base, err := c.loadBase(ctx)
	if err != nil {
		return nil, err
	}

	combined, err := base.Copy()
	if err != nil {
		return nil, err
	}

	if _, err := container(combined, KeyPaths); err != nil {
		return nil, fmt.Errorf("base document %s: %w", c.paths.BaseDocument, err)
	}

	res := &Result{
		Total:  len(c.paths.FragmentFiles),
		Output: c.paths.Output,
	}

	for _, filePath := range c.paths.FragmentFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		exists, err := c.reader.Exists(ctx, filePath)
		if err != nil {
			return nil, &FragmentError{Path: filePath, Err: err}
		}
		if !exists {
			slog.Warn("Fragment not found, skipping", "path", filePath)
			res.Skipped = append(res.Skipped, filePath)
			continue
		}

		fragment, err := c.load(ctx, filePath)
		if err != nil {
			return nil, &FragmentError{Path: filePath, Err: err}
		}

		if err := Fold(combined, fragment); err != nil {
			return nil, &FragmentError{Path: filePath, Err: err}
		}

		res.Processed++
		slog.Info("Processed fragment", "path", filePath)
	}

	data, err := combined.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering combined document: %w", err)
	}

	if err := files.SaveFile(c.paths.Output, data); err != nil {
		return nil, fmt.Errorf("writing %s: %w", c.paths.Output, err)
	}

	res.Paths = combined.PathCount()
	res.Schemas = combined.SchemaCount()
	res.Checksum = files.Checksum(data)

	slog.Info("Combined OpenAPI document written",
		"output", res.Output,
		"processed", fmt.Sprintf("%d/%d", res.Processed, res.Total),
		"paths", res.Paths,
		"schemas", res.Schemas)

	return res, nil
}

func (c *Combiner) loadBase(ctx context.Context) (Document, error) {
	filePath := c.paths.BaseDocument

	exists, err := c.reader.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("base document %s: %w", filePath, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBaseNotFound, filePath)
	}

	doc, err := c.load(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("base document %s: %w", filePath, err)
	}
	return doc, nil
}

func (c *Combiner) load(ctx context.Context, filePath string) (Document, error) {
	data, err := c.reader.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}

	if c.lint {
		c.reportDuplicates(filePath, data)
	}

	doc, err := Parse(data)
	if err != nil {
		if errors.Is(err, ErrNotObject) {
			return nil, err
		}
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return doc, nil
}

func (c *Combiner) reportDuplicates(filePath string, data []byte) {
	duplicates, err := lint.DuplicateKeys(data)
	if err != nil {
		slog.Debug("Duplicate key check skipped", "path", filePath, "error", err)
		return
	}

	for _, dup := range duplicates {
		slog.Warn("Duplicate key, last value wins",
			"path", filePath,
			"object", dup.Pointer,
			"key", dup.Key,
			"line", dup.Line,
			"firstLine", dup.FirstLine)
	}
}
