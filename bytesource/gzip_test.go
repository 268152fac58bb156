package bytesource_test

import (
	"bytes"
	"compress/flate"
	"context"
	"os"
	"testing"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/pschou/go-ffdb/internal/gzi"
	"github.com/stretchr/testify/require"
)

func TestGzipSourceRandomAccess(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog 0123456789 the quick brown fox")

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(plaintext)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.CreateTemp(t.TempDir(), "ffdb-gz-*")
	require.NoError(t, err)
	_, err = f.Write(compressed.Bytes())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	inner, err := bytesource.OpenLocal(f.Name())
	require.NoError(t, err)

	idx := &gzi.Index{Points: []gzi.AccessPoint{
		{CompressedOffset: 0, DecompressedOffset: 0, WindowBits: 0, Window: nil},
		{CompressedOffset: int64(compressed.Len()), DecompressedOffset: int64(len(plaintext))},
	}}

	src := bytesource.WrapGzip(inner, idx, f.Name(), nil)
	defer src.Close()

	ctx := context.Background()
	size, err := src.Size(ctx)
	require.NoError(t, err)
	require.EqualValues(t, len(plaintext), size)

	got, err := src.ReadAt(ctx, 10, 15)
	require.NoError(t, err)
	require.Equal(t, string(plaintext[10:25]), string(got))

	got, err = src.ReadAt(ctx, 0, int64(len(plaintext)))
	require.NoError(t, err)
	require.Equal(t, string(plaintext), string(got))
}
