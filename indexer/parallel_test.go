package indexer_test

import (
	"os"
	"regexp"
	"testing"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/indexer"
	"github.com/stretchr/testify/require"
)

func writeTempFlatfile(t *testing.T, data string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "flatfile")
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestScanParallelMatchesSingleBlock(t *testing.T) {
	data := "id:alpha\nline one\n-\nid:beta\nline two\n-\nid:gamma\nline three\n-\n"
	path := writeTempFlatfile(t, data)
	patterns := indexer.Patterns{Independent: []*regexp.Regexp{idPattern("id")}}

	single, err := indexer.ScanParallel(path, 1, terminator, patterns, false)
	require.NoError(t, err)
	require.Len(t, single, 3)

	parallel, err := indexer.ScanParallel(path, 4, terminator, patterns, false)
	require.NoError(t, err)
	require.Len(t, parallel, 3)

	for i := range single {
		require.Equal(t, string(single[i].IDs[0]), string(parallel[i].IDs[0]))
		require.Equal(t, single[i].Offset, parallel[i].Offset)
		require.Equal(t, single[i].Length, parallel[i].Length)
	}
}

func TestSortRecordsByIDThenOffset(t *testing.T) {
	records := []index.Record{
		{ID: []byte("beta"), Offset: 5},
		{ID: []byte("alpha"), Offset: 200},
		{ID: []byte("alpha"), Offset: 100},
	}
	indexer.SortRecords(records)
	require.Equal(t, "alpha", string(records[0].ID))
	require.EqualValues(t, 100, records[0].Offset)
	require.Equal(t, "alpha", string(records[1].ID))
	require.EqualValues(t, 200, records[1].Offset)
	require.Equal(t, "beta", string(records[2].ID))
}
