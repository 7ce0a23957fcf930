package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvpar/par"
)

// newCSVReader returns a reader tolerant of spaces after commas and of rows
// with varying field counts; shape checks are done by the callers.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	return cr
}

// malformed wraps par.ErrMalformedInput with a location and a reason.
func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("dataset: line %d: %s: %w", line, fmt.Sprintf(format, args...), par.ErrMalformedInput)
}

// readErr converts a csv parse error into a malformed-input error.
func readErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return malformed(pe.Line, "%v", pe.Err)
	}

	return fmt.Errorf("dataset: read: %w", err)
}

// LoadPoints reads one point per non-blank row. Every row must have the same
// number of fields as the first one.
func LoadPoints(r io.Reader) ([]par.Point, error) {
	cr := newCSVReader(r)

	var (
		points []par.Point
		dim    int
		line   int
		i      int
		x      float64
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readErr(err)
		}
		line, _ = cr.FieldPos(0)
		if dim == 0 {
			dim = len(rec)
		}
		if len(rec) != dim {
			return nil, malformed(line, "%d fields, want %d", len(rec), dim)
		}
		p := make(par.Point, dim)
		for i = range rec {
			x, err = strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, malformed(line, "field %d: %q is not a number", i+1, rec[i])
			}
			p[i] = x
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("dataset: no points: %w", par.ErrMalformedInput)
	}

	return points, nil
}

// LoadConstraints reads the constraint matrix of an n-element instance and
// returns every non-zero entry above the diagonal.
func LoadConstraints(r io.Reader, n int) ([]par.Constraint, error) {
	cr := newCSVReader(r)

	var (
		out    []par.Constraint
		row    int
		line   int
		offset int
		j, v   int
	)
	for row = 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readErr(err)
		}
		line, _ = cr.FieldPos(0)
		if row >= n {
			return nil, malformed(line, "more than %d rows", n)
		}
		switch len(rec) {
		case n:
			offset = 0
		case n - row:
			offset = row
		default:
			return nil, malformed(line, "%d fields, want %d or %d", len(rec), n, n-row)
		}
		for j = offset; j < n; j++ {
			v, err = strconv.Atoi(strings.TrimSpace(rec[j-offset]))
			if err != nil || v < -1 || v > 1 {
				return nil, malformed(line, "field %d: %q is not -1, 0 or 1", j-offset+1, rec[j-offset])
			}
			if j <= row || v == 0 {
				continue
			}
			out = append(out, par.Constraint{I: row, J: j, Kind: par.Kind(v)})
		}
	}
	if row != n {
		return nil, fmt.Errorf("dataset: %d constraint rows, want %d: %w", row, n, par.ErrMalformedInput)
	}

	return out, nil
}
