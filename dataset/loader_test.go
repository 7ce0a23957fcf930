package dataset_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvpar/par"
	"github.com/katalvlaran/lvpar/dataset"
)

const (
	sixPoints = "0,0\n0,1\n1,0\n10,10\n10,11\n11,10\n"
	sixCons   = "1,1,0,-1,0,0\n" +
		"1,1,0,0,0,0\n" +
		"0,0,1,0,0,0\n" +
		"-1,0,0,1,1,0\n" +
		"0,0,0,1,1,0\n" +
		"0,0,0,0,0,1\n"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func zstdBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func lz4Bytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestFileLoader_Plain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "six.dat"), []byte(sixPoints))
	writeFile(t, filepath.Join(dir, "six.const"), []byte(sixCons))

	p, err := dataset.FileLoader{
		PointsPath:      filepath.Join(dir, "six.dat"),
		ConstraintsPath: filepath.Join(dir, "six.const"),
		K:               2,
	}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, p.N())
	assert.Equal(t, 3, p.NumConstraints())
	kind, ok := p.ConstraintBetween(0, 3)
	assert.True(t, ok)
	assert.Equal(t, par.CannotLink, kind)
}

func TestFileLoader_Compressed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "six.dat.zst"), zstdBytes(t, sixPoints))
	writeFile(t, filepath.Join(dir, "six.const.lz4"), lz4Bytes(t, sixCons))

	p, err := dataset.FileLoader{
		PointsPath:      filepath.Join(dir, "six.dat.zst"),
		ConstraintsPath: filepath.Join(dir, "six.const.lz4"),
		K:               2,
	}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, p.N())
	assert.Equal(t, 3, p.NumConstraints())
}

func TestFileLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "six.dat"), []byte(sixPoints))
	writeFile(t, filepath.Join(dir, "none.const"), []byte("1,0,0,0,0,0\n0,1,0,0,0,0\n0,0,1,0,0,0\n0,0,0,1,0,0\n0,0,0,0,1,0\n0,0,0,0,0,1\n"))

	_, err := dataset.FileLoader{
		PointsPath:      filepath.Join(dir, "missing.dat"),
		ConstraintsPath: filepath.Join(dir, "none.const"),
		K:               2,
	}.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = dataset.FileLoader{
		PointsPath:      filepath.Join(dir, "six.dat"),
		ConstraintsPath: filepath.Join(dir, "none.const"),
		K:               2,
	}.Load(context.Background())
	require.ErrorIs(t, err, par.ErrDegenerateInstance)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dataset.FileLoader{}.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCatalog(t *testing.T) {
	require.Len(t, dataset.Catalog, 6)

	in, err := dataset.Lookup("bupa20")
	require.NoError(t, err)
	assert.Equal(t, 16, in.K)
	assert.Equal(t, "bupa_set.dat", in.PointsFile())
	assert.Equal(t, "bupa_set_const_20.const", in.ConstraintsFile())

	l := in.Loader("instances")
	assert.Equal(t, filepath.Join("instances", "bupa_set.dat"), l.PointsPath)
	assert.Equal(t, filepath.Join("instances", "bupa_set_const_20.const"), l.ConstraintsPath)
	assert.Equal(t, 16, l.K)

	_, err = dataset.Lookup("iris")
	require.ErrorIs(t, err, dataset.ErrUnknownInstance)

	assert.Equal(t, []uint64{4, 7, 2, 1, 3}, dataset.DefaultSeeds)
}
