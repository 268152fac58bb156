package indexer_test

import (
	"bytes"
	"testing"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/indexer"
	"github.com/stretchr/testify/require"
)

func TestEncodeFlatfileRoundTrip(t *testing.T) {
	stack := codec.Stack{Zlib: true, ZlibLevel: 6}
	ctx, err := codec.NewContext(nil, stack, true)
	require.NoError(t, err)

	entries := []indexer.Entry{
		{IDs: [][]byte{[]byte("alpha")}, Offset: 0, Length: 10, Data: []byte("first body")},
		{IDs: [][]byte{[]byte("beta")}, Offset: 10, Length: 20, Data: []byte("second body, longer")},
	}

	var buf bytes.Buffer
	records, err := indexer.EncodeFlatfile(&buf, entries, ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.EqualValues(t, 0, records[0].Offset)
	require.Equal(t, records[1].Offset, int64(records[0].Length))

	decoded, err := codec.DecodeVerified(ctx, buf.Bytes()[records[0].Offset:records[0].Offset+records[0].Length], codec.Checksum(entries[0].Data))
	require.NoError(t, err)
	require.Equal(t, entries[0].Data, decoded)
}

func TestEncodeFlatfileOffsetShift(t *testing.T) {
	ctx, err := codec.NewContext(nil, codec.None, false)
	require.NoError(t, err)
	entries := []indexer.Entry{{IDs: [][]byte{[]byte("alpha")}, Data: []byte("body")}}

	var buf bytes.Buffer
	records, err := indexer.EncodeFlatfile(&buf, entries, ctx, false, 1000)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.EqualValues(t, 1000, records[0].Offset)
}

func TestSuffix(t *testing.T) {
	require.Equal(t, ".xz", indexer.Suffix(codec.Stack{Zlib: true}))
	require.Equal(t, ".enc", indexer.Suffix(codec.Stack{AES: true}))
	require.Equal(t, ".xz", indexer.Suffix(codec.Stack{AES: true, Zlib: true}))
	require.Equal(t, "", indexer.Suffix(codec.None))
}
