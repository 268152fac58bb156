package indexer_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/pschou/go-ffdb/indexer"
	"github.com/stretchr/testify/require"
)

var terminator = regexp.MustCompile(`^-$`)

func idPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile("^" + prefix + `:(\S+)`)
}

func TestScanThreeEntries(t *testing.T) {
	// S1: three plaintext entries separated by "-" terminator lines.
	data := "id:alpha\nline one\n-\nid:beta\nline two\nline three\n-\nid:gamma\nline four\n-\n"
	patterns := indexer.Patterns{Independent: []*regexp.Regexp{idPattern("id")}}

	var entries []indexer.Entry
	err := indexer.Scan(strings.NewReader(data), terminator, patterns, true, func(e indexer.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "alpha", string(entries[0].IDs[0]))
	require.Equal(t, "beta", string(entries[1].IDs[0]))
	require.Equal(t, "gamma", string(entries[2].IDs[0]))
	require.Equal(t, "id:alpha\nline one\n", string(entries[0].Data))
}

func TestScanNoTrailingTerminator(t *testing.T) {
	data := "id:alpha\nline one\n"
	patterns := indexer.Patterns{Independent: []*regexp.Regexp{idPattern("id")}}

	var entries []indexer.Entry
	err := indexer.Scan(strings.NewReader(data), terminator, patterns, false, func(e indexer.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "alpha", string(entries[0].IDs[0]))
}

func TestScanFirstMatchOnlyByDefault(t *testing.T) {
	data := "id:alpha\nid:alpha2\nbody\n-\n"
	patterns := indexer.Patterns{Independent: []*regexp.Regexp{idPattern("id")}}

	var entries []indexer.Entry
	err := indexer.Scan(strings.NewReader(data), terminator, patterns, false, func(e indexer.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].IDs, 1) // only the pattern's first match in the entry is kept
}

func TestScanAllKeepsEveryMatch(t *testing.T) {
	data := "id:alpha id:alpha2\nbody\n-\n"
	patterns := indexer.Patterns{Independent: []*regexp.Regexp{regexp.MustCompile(`id:(\S+)`)}, All: true}

	var entries []indexer.Entry
	err := indexer.Scan(strings.NewReader(data), terminator, patterns, false, func(e indexer.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].IDs, 2)
	require.Equal(t, "alpha", string(entries[0].IDs[0]))
	require.Equal(t, "alpha2", string(entries[0].IDs[1]))
}

func TestScanJoinedPattern(t *testing.T) {
	data := "ref:AB:12\nbody\n-\n"
	patterns := indexer.Patterns{Joined: []*regexp.Regexp{regexp.MustCompile(`ref:(\w+):(\d+)`)}}

	var entries []indexer.Entry
	err := indexer.Scan(strings.NewReader(data), terminator, patterns, false, func(e indexer.Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "AB:12", string(entries[0].IDs[0]))
}

func TestRecordsFromEntriesAppliesOffsetAndChecksum(t *testing.T) {
	entries := []indexer.Entry{
		{IDs: [][]byte{[]byte("alpha")}, Offset: 0, Length: 10, Data: []byte("0123456789")},
	}
	recs := indexer.RecordsFromEntries(entries, 100, true)
	require.Len(t, recs, 1)
	require.EqualValues(t, 100, recs[0].Offset)
	require.True(t, recs[0].HasChecksum)
	require.NotZero(t, recs[0].Checksum)
}

func TestRecordsFromEntriesOneRecordPerIdentifier(t *testing.T) {
	entries := []indexer.Entry{
		{IDs: [][]byte{[]byte("alpha"), []byte("beta")}, Offset: 0, Length: 10},
	}
	recs := indexer.RecordsFromEntries(entries, 0, false)
	require.Len(t, recs, 2)
	require.Equal(t, "alpha", string(recs[0].ID))
	require.Equal(t, "beta", string(recs[1].ID))
}
