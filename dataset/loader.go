package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/katalvlaran/lvpar/par"
)

// FileLoader reads an instance from a points file and a constraints file.
type FileLoader struct {
	PointsPath      string
	ConstraintsPath string
	K               int
}

var _ ProblemLoader = FileLoader{}

// Load reads both files and builds the Problem.
func (l FileLoader) Load(ctx context.Context) (*par.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var points []par.Point
	err := withInput(l.PointsPath, func(r io.Reader) error {
		var err error
		points, err = LoadPoints(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.PointsPath, err)
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	var cons []par.Constraint
	err = withInput(l.ConstraintsPath, func(r io.Reader) error {
		var err error
		cons, err = LoadConstraints(r, len(points))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.ConstraintsPath, err)
	}

	p, err := par.NewProblem(points, cons, l.K)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", filepath.Base(l.PointsPath), err)
	}

	return p, nil
}

// withInput opens path, decompressing by extension, and passes it to fn.
func withInput(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		return fn(zr)
	case ".lz4":
		return fn(lz4.NewReader(f))
	default:
		return fn(f)
	}
}
