package bytesource_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceRangeRead(t *testing.T) {
	content := []byte("0123456789abcdefghijklmnopqrstuvwxyz")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", fmt.Sprint(len(content)))
			w.WriteHeader(http.StatusOK)
			return
		}
		rng := r.Header.Get("Range")
		var start, end int
		_, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end)
		require.NoError(t, err)
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(content)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(content[start : end+1])
	}))
	defer srv.Close()

	src, err := bytesource.OpenHTTP(srv.URL, bytesource.Options{MaxRetries: 1})
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	size, err := src.Size(ctx)
	require.NoError(t, err)
	require.EqualValues(t, len(content), size)

	data, err := src.ReadAt(ctx, 5, 10)
	require.NoError(t, err)
	require.Equal(t, string(content[5:15]), string(data))
}

func TestHTTPSourceRangeUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	src, err := bytesource.OpenHTTP(srv.URL, bytesource.Options{MaxRetries: 1})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadAt(context.Background(), 0, 10)
	require.ErrorIs(t, err, bytesource.ErrRangeUnsupported)
}
