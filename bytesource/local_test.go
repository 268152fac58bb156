package bytesource_test

import (
	"context"
	"os"
	"testing"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/stretchr/testify/require"
)

func TestLocalReadAt(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ffdb-local-*")
	require.NoError(t, err)
	_, err = f.WriteString("0123456789abcdef")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := bytesource.OpenLocal(f.Name())
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	data, err := src.ReadAt(ctx, 3, 5)
	require.NoError(t, err)
	require.Equal(t, "34567", string(data))

	size, err := src.Size(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 16, size)
}
