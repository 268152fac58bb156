package remover_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/remover"
	"github.com/stretchr/testify/require"
)

func TestRemoveSkipsDeletedRangesAndShiftsOffsets(t *testing.T) {
	dir := t.TempDir()
	flatfile := filepath.Join(dir, "flat.dat")
	require.NoError(t, os.WriteFile(flatfile, []byte("alphabeta!gamma"), 0o644))

	raw := "alpha\t0\t5\nbeta\t5\t5\ngamma\t10\t5\n"
	store, err := index.Load(strings.NewReader(raw))
	require.NoError(t, err)

	outFlatfile := filepath.Join(dir, "out.dat")
	outIndex := filepath.Join(dir, "out.idx")

	err = remover.Remove(flatfile, store, [][]byte{[]byte("beta")}, index.First, outFlatfile, outIndex, remover.Options{Threads: 2})
	require.NoError(t, err)

	data, err := os.ReadFile(outFlatfile)
	require.NoError(t, err)
	require.Equal(t, "alpha!gamma", string(data))

	idxFile, err := os.Open(outIndex)
	require.NoError(t, err)
	defer idxFile.Close()
	reloaded, err := index.Load(idxFile)
	require.NoError(t, err)

	require.Empty(t, reloaded.Lookup([]byte("beta"), index.First))
	alpha := reloaded.Lookup([]byte("alpha"), index.First)
	require.Len(t, alpha, 1)
	require.EqualValues(t, 0, alpha[0].Offset)
	gamma := reloaded.Lookup([]byte("gamma"), index.First)
	require.Len(t, gamma, 1)
	require.EqualValues(t, 5, gamma[0].Offset)
}

func TestRemoveDuplicatesPolicyAll(t *testing.T) {
	dir := t.TempDir()
	flatfile := filepath.Join(dir, "flat.dat")
	require.NoError(t, os.WriteFile(flatfile, []byte("aaabbbccc"), 0o644))

	raw := "dup\t0\t3\ndup\t3\t3\nkeep\t6\t3\n"
	store, err := index.Load(strings.NewReader(raw))
	require.NoError(t, err)

	outFlatfile := filepath.Join(dir, "out.dat")
	outIndex := filepath.Join(dir, "out.idx")

	err = remover.Remove(flatfile, store, [][]byte{[]byte("dup")}, index.All, outFlatfile, outIndex, remover.Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(outFlatfile)
	require.NoError(t, err)
	require.Equal(t, "ccc", string(data))

	idxFile, err := os.Open(outIndex)
	require.NoError(t, err)
	defer idxFile.Close()
	reloaded, err := index.Load(idxFile)
	require.NoError(t, err)
	keep := reloaded.Lookup([]byte("keep"), index.First)
	require.Len(t, keep, 1)
	require.EqualValues(t, 0, keep[0].Offset)
}
