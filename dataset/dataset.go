// Package dataset loads PAR instances from disk.
//
// Formats:
//   - Points: one comma-separated row of numbers per point; blank lines are
//     skipped.
//   - Constraints: a symmetric n×n matrix of −1 (cannot-link), 0 (none) and
//     +1 (must-link), one comma-separated row per element. Only the strict
//     upper triangle is read. Rows may be given in full (n fields) or as
//     their upper part starting at the diagonal (n−i fields for row i).
//
// Files whose name ends in ".zst" or ".lz4" are decompressed transparently.
//
// Errors wrap par.ErrMalformedInput with the offending line, so callers can
// match them with errors.Is regardless of which layer rejected the input.
package dataset

import (
	"context"
	"errors"

	"github.com/katalvlaran/lvpar/par"
)

// ErrUnknownInstance is returned by Lookup for a name outside the catalogue.
var ErrUnknownInstance = errors.New("dataset: unknown instance")

// ProblemLoader produces a validated Problem.
type ProblemLoader interface {
	Load(ctx context.Context) (*par.Problem, error)
}
