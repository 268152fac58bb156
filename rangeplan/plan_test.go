package rangeplan_test

import (
	"testing"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/rangeplan"
	"github.com/stretchr/testify/require"
)

func TestPerEntryOneReadEach(t *testing.T) {
	records := []index.Record{
		{Offset: 1000, Length: 40},
		{Offset: 1050, Length: 40},
		{Offset: 1100, Length: 40},
	}
	reqs := rangeplan.Plan(records, []int{0, 1, 2}, rangeplan.PerEntry, 0, 0)
	require.Len(t, reqs, 3)
}

func TestMergedCoalescesAdjacent(t *testing.T) {
	// S4: offsets 1000,1050,1100 length 40 each -> coalesced [1000,1140).
	records := []index.Record{
		{Offset: 1000, Length: 40},
		{Offset: 1050, Length: 40},
		{Offset: 1100, Length: 40},
	}
	reqs := rangeplan.Plan(records, []int{0, 1, 2}, rangeplan.Merged,
		rangeplan.DefaultCoalesceGap, rangeplan.DefaultCoalesceMax)
	require.Len(t, reqs, 1)
	require.EqualValues(t, 1000, reqs[0].Offset)
	require.EqualValues(t, 140, reqs[0].Length)
	require.Len(t, reqs[0].Entries, 3)
	require.EqualValues(t, 0, reqs[0].Entries[0].Start)
	require.EqualValues(t, 50, reqs[0].Entries[1].Start)
	require.EqualValues(t, 100, reqs[0].Entries[2].Start)
}

func TestMergedSplitsOnLargeGap(t *testing.T) {
	records := []index.Record{
		{Offset: 0, Length: 10},
		{Offset: 100000, Length: 10}, // gap far exceeds default 4KiB threshold
	}
	reqs := rangeplan.Plan(records, []int{0, 1}, rangeplan.Merged,
		rangeplan.DefaultCoalesceGap, rangeplan.DefaultCoalesceMax)
	require.Len(t, reqs, 2)
}

func TestPartitionBlockSize(t *testing.T) {
	ids := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e")}
	blocks := rangeplan.Partition(ids, 2)
	require.Len(t, blocks, 3)
	require.Len(t, blocks[0], 2)
	require.Len(t, blocks[2], 1)

	single := rangeplan.Partition(ids, 0)
	require.Len(t, single, 1)
	require.Len(t, single[0], 5)
}

func TestDefaultBlockSize(t *testing.T) {
	require.Equal(t, 4, rangeplan.DefaultBlockSize(10, 3))
	require.Equal(t, 1, rangeplan.DefaultBlockSize(0, 3))
}
