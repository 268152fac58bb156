package cliutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// AtomicFile opens a temporary sibling of path for writing and returns it along
// with a commit function. Callers write the full output to the returned *os.File
// and call commit() only after every byte has been written successfully; commit
// renames the temp file into place. If the caller instead abandons the write
// (process interrupted, error returned), the temp file is left behind for
// inspection rather than silently deleted: file output via --outfile is written
// to a temporary path and atomically renamed only on full success.
func AtomicFile(path string) (f *os.File, commit func() error, err error) {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), uuid.NewString()))
	f, err = os.Create(tmp)
	if err != nil {
		return nil, nil, fmt.Errorf("ffdb: creating %s: %w", tmp, err)
	}
	commit = func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("ffdb: closing %s: %w", tmp, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("ffdb: renaming %s to %s: %w", tmp, path, err)
		}
		return nil
	}
	return f, commit, nil
}
