// Package merger implements FFDB's merger: appending a second indexed flatfile
// onto a first and rewriting the appended index with offsets shifted by the
// first file's length.
package merger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pschou/go-ffdb/index"
)

// Options configures one merge run.
type Options struct {
	// Create writes the merged flatfile to outFlatfile, leaving base untouched,
	// instead of appending to base in place ("--create"; ffdb-merge defaults
	// outFlatfile to a ".new" sibling of base).
	Create bool
	// Small loads the new side's index fully into memory and merges via an
	// ordered map instead of a streamed merge ("--small").
	Small bool
}

// Paths names one flatfile/index pair.
type Paths struct {
	Flatfile string
	Index    string
}

// Merge appends new's bytes onto base's, then writes a merged index with new's
// offsets shifted by base's original length. outFlatfile/outIndex name the
// destination pair; when opts.Create is false these must equal base's paths
// (an in-place append).
func Merge(base, newFile Paths, outFlatfile, outIndex string, opts Options) error {
	baseSize, err := fileSize(base.Flatfile)
	if err != nil {
		return fmt.Errorf("merger: stat %s: %w", base.Flatfile, err)
	}

	if err := appendFlatfile(base.Flatfile, newFile.Flatfile, outFlatfile, opts.Create); err != nil {
		return err
	}

	if opts.Small {
		return mergeSmall(base.Index, newFile.Index, outIndex, baseSize)
	}
	return mergeStreamed(base.Index, newFile.Index, outIndex, baseSize)
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// appendFlatfile writes base's bytes followed by newFile's bytes to outPath. When
// outPath == base and !create, base is appended to in place (the default mode);
// otherwise outPath is written fresh so base is left untouched.
func appendFlatfile(basePath, newPath, outPath string, create bool) error {
	if !create && outPath == basePath {
		out, err := os.OpenFile(basePath, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Errorf("merger: opening %s for append: %w", basePath, err)
		}
		defer out.Close()
		in, err := os.Open(newPath)
		if err != nil {
			return fmt.Errorf("merger: opening %s: %w", newPath, err)
		}
		defer in.Close()
		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("merger: appending %s onto %s: %w", newPath, basePath, err)
		}
		return nil
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("merger: creating %s: %w", outPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)
	for _, p := range []string{basePath, newPath} {
		in, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("merger: opening %s: %w", p, err)
		}
		_, err = io.Copy(bw, in)
		in.Close()
		if err != nil {
			return fmt.Errorf("merger: copying %s into %s: %w", p, outPath, err)
		}
	}
	return bw.Flush()
}

// mergeStreamed implements the default (non-`--small`) path: base is never
// loaded into memory. It's read one record at a time through an
// index.RecordReader and merge-joined against new's records (loaded fully,
// since new is the side just appended and is typically far smaller than
// base), writing the merged, sorted output as it goes.
func mergeStreamed(basePath, newPath string, outPath string, shift int64) error {
	newStore, err := loadStore(newPath)
	if err != nil {
		return err
	}
	shifted := shiftRecords(newStore.Records(), shift)

	baseFile, err := os.Open(basePath)
	if err != nil {
		return fmt.Errorf("merger: opening %s: %w", basePath, err)
	}
	defer baseFile.Close()
	baseReader, err := index.NewRecordReader(baseFile)
	if err != nil {
		return fmt.Errorf("merger: reading %s: %w", basePath, err)
	}

	// outPath may be basePath itself (in-place merge), so write to a sibling
	// and rename it over outPath only once base has been read to the end.
	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("merger: creating %s: %w", tmpPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	h := baseReader.Header()
	if h.Present() {
		if _, err := fmt.Fprintf(bw, "#%s\n", h.String()); err != nil {
			return err
		}
	}

	j := 0
	base, baseOK := baseReader.Next()
	for baseOK || j < len(shifted) {
		switch {
		case !baseOK:
			if err := writeLine(bw, shifted[j]); err != nil {
				return err
			}
			j++
		case j >= len(shifted):
			if err := writeLine(bw, base); err != nil {
				return err
			}
			base, baseOK = baseReader.Next()
		case compareRecords(shifted[j], base) <= 0:
			if err := writeLine(bw, shifted[j]); err != nil {
				return err
			}
			j++
		default:
			if err := writeLine(bw, base); err != nil {
				return err
			}
			base, baseOK = baseReader.Next()
		}
	}
	if err := baseReader.Err(); err != nil {
		return fmt.Errorf("merger: reading %s: %w", basePath, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("merger: closing %s: %w", tmpPath, err)
	}
	return os.Rename(tmpPath, outPath)
}

func writeLine(w *bufio.Writer, r index.Record) error {
	if _, err := w.Write(index.FormatLine(r)); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func compareRecords(a, b index.Record) int {
	if c := bytes.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	default:
		return 0
	}
}

// mergeSmall implements `--small`: both sides are loaded fully into memory
// and merged via Store.Append's ordered-slice merge, which is simpler and
// faster than the streamed merge-join when base itself is small enough to fit
// in memory comfortably.
func mergeSmall(basePath, newPath, outPath string, shift int64) error {
	baseStore, err := loadStore(basePath)
	if err != nil {
		return err
	}
	newStore, err := loadStore(newPath)
	if err != nil {
		return err
	}
	shifted := shiftRecords(newStore.Records(), shift)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("merger: creating %s: %w", outPath, err)
	}
	defer out.Close()
	return baseStore.Append(out, shifted)
}

func loadStore(path string) (*index.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("merger: opening %s: %w", path, err)
	}
	defer f.Close()
	st, err := index.Load(f)
	if err != nil {
		return nil, fmt.Errorf("merger: loading %s: %w", path, err)
	}
	return st, nil
}

func shiftRecords(records []index.Record, shift int64) []index.Record {
	out := make([]index.Record, len(records))
	for i, r := range records {
		r.Offset += shift
		out[i] = r
	}
	return out
}
