package merger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/merger"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMergeInPlaceShiftsOffsets(t *testing.T) {
	dir := t.TempDir()
	base := merger.Paths{
		Flatfile: writeFile(t, dir, "base.dat", "alphabeta"),
		Index:    writeFile(t, dir, "base.idx", "alpha\t0\t5\nbeta\t5\t4\n"),
	}
	newFile := merger.Paths{
		Flatfile: writeFile(t, dir, "new.dat", "gamma"),
		Index:    writeFile(t, dir, "new.idx", "gamma\t0\t5\n"),
	}

	err := merger.Merge(base, newFile, base.Flatfile, base.Index, merger.Options{})
	require.NoError(t, err)

	flat, err := os.ReadFile(base.Flatfile)
	require.NoError(t, err)
	require.Equal(t, "alphabetagamma", string(flat))

	idxFile, err := os.Open(base.Index)
	require.NoError(t, err)
	defer idxFile.Close()
	st, err := index.Load(idxFile)
	require.NoError(t, err)

	gamma := st.Lookup([]byte("gamma"), index.First)
	require.Len(t, gamma, 1)
	require.EqualValues(t, 9, gamma[0].Offset)
}

func TestMergeCreateLeavesBaseUntouched(t *testing.T) {
	dir := t.TempDir()
	base := merger.Paths{
		Flatfile: writeFile(t, dir, "base.dat", "alpha"),
		Index:    writeFile(t, dir, "base.idx", "alpha\t0\t5\n"),
	}
	newFile := merger.Paths{
		Flatfile: writeFile(t, dir, "new.dat", "beta"),
		Index:    writeFile(t, dir, "new.idx", "beta\t0\t4\n"),
	}
	outFlatfile := filepath.Join(dir, "merged.dat")
	outIndex := filepath.Join(dir, "merged.idx")

	err := merger.Merge(base, newFile, outFlatfile, outIndex, merger.Options{Create: true})
	require.NoError(t, err)

	baseStillThere, err := os.ReadFile(base.Flatfile)
	require.NoError(t, err)
	require.Equal(t, "alpha", string(baseStillThere))

	merged, err := os.ReadFile(outFlatfile)
	require.NoError(t, err)
	require.Equal(t, "alphabeta", string(merged))
}

func TestMergeSmallShiftsNewOffsets(t *testing.T) {
	dir := t.TempDir()
	base := merger.Paths{
		Flatfile: writeFile(t, dir, "base.dat", "alpha"),
		Index:    writeFile(t, dir, "base.idx", "alpha\t0\t5\n"),
	}
	newFile := merger.Paths{
		Flatfile: writeFile(t, dir, "new.dat", "beta"),
		Index:    writeFile(t, dir, "new.idx", "beta\t0\t4\n"),
	}
	outFlatfile := filepath.Join(dir, "merged.dat")
	outIndex := filepath.Join(dir, "merged.idx")

	err := merger.Merge(base, newFile, outFlatfile, outIndex, merger.Options{Create: true, Small: true})
	require.NoError(t, err)

	data, err := os.ReadFile(outIndex)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "beta\t5\t4"))
}
