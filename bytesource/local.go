package bytesource

import (
	"context"
	"fmt"
	"io"
	"os"
)

// localSource serves reads directly from a local file via positioned reads.
type localSource struct {
	f *os.File
}

// OpenLocal opens path for random-access reading.
func OpenLocal(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bytesource: open %s: %w", path, err)
	}
	return &localSource{f: f}, nil
}

func (s *localSource) ReadAt(_ context.Context, offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	n, err := s.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("bytesource: local read at %d: %w", offset, err)
	}
	return buf[:n], nil
}

func (s *localSource) Size(context.Context) (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (s *localSource) Close() error { return s.f.Close() }
