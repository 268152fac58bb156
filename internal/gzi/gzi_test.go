package gzi_test

import (
	"bytes"
	"testing"

	"github.com/pschou/go-ffdb/internal/gzi"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := &gzi.Index{Points: []gzi.AccessPoint{
		{CompressedOffset: 0, DecompressedOffset: 0, WindowBits: 0, Window: nil},
		{CompressedOffset: 1000, DecompressedOffset: 32768, WindowBits: 3, Window: bytes.Repeat([]byte{0xAB}, 32768)},
		{CompressedOffset: 2500, DecompressedOffset: 65536, WindowBits: 5, Window: bytes.Repeat([]byte{0xCD}, 32768)},
	}}

	var buf bytes.Buffer
	require.NoError(t, idx.Save(&buf))

	loaded, err := gzi.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, idx.Points, loaded.Points)
}

func TestFloorAndCeil(t *testing.T) {
	idx := &gzi.Index{Points: []gzi.AccessPoint{
		{CompressedOffset: 0, DecompressedOffset: 0},
		{CompressedOffset: 1000, DecompressedOffset: 32768},
		{CompressedOffset: 2500, DecompressedOffset: 65536},
	}}

	p, ok := idx.Floor(40000)
	require.True(t, ok)
	require.EqualValues(t, 32768, p.DecompressedOffset)

	p, ok = idx.Ceil(40000)
	require.True(t, ok)
	require.EqualValues(t, 65536, p.DecompressedOffset)

	p, ok = idx.Ceil(100)
	require.True(t, ok)
	require.EqualValues(t, 32768, p.DecompressedOffset)
}
