package dataset

import (
	"fmt"
	"path/filepath"
	"slices"
)

// DefaultSeeds are the seeds of the reference experiments.
var DefaultSeeds = []uint64{4, 7, 2, 1, 3}

// Instance names one benchmark: a data set, a constraint density in percent
// and the number of clusters.
type Instance struct {
	Name    string
	Set     string
	Percent int
	K       int
}

// Catalog lists the reference benchmark instances.
var Catalog = []Instance{
	{Name: "zoo10", Set: "zoo", Percent: 10, K: 7},
	{Name: "zoo20", Set: "zoo", Percent: 20, K: 7},
	{Name: "glass10", Set: "glass", Percent: 10, K: 7},
	{Name: "glass20", Set: "glass", Percent: 20, K: 7},
	{Name: "bupa10", Set: "bupa", Percent: 10, K: 16},
	{Name: "bupa20", Set: "bupa", Percent: 20, K: 16},
}

// Lookup returns the catalogue entry called name.
func Lookup(name string) (Instance, error) {
	i := slices.IndexFunc(Catalog, func(in Instance) bool { return in.Name == name })
	if i < 0 {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}

	return Catalog[i], nil
}

// PointsFile is the points file name, "<set>_set.dat".
func (in Instance) PointsFile() string { return in.Set + "_set.dat" }

// ConstraintsFile is the constraints file name, "<set>_set_const_<percent>.const".
func (in Instance) ConstraintsFile() string {
	return fmt.Sprintf("%s_set_const_%d.const", in.Set, in.Percent)
}

// Loader returns a FileLoader for the instance files under dir.
func (in Instance) Loader(dir string) FileLoader {
	return FileLoader{
		PointsPath:      filepath.Join(dir, in.PointsFile()),
		ConstraintsPath: filepath.Join(dir, in.ConstraintsFile()),
		K:               in.K,
	}
}
