package merger

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/pschou/go-ffdb/internal/gzi"
)

// GzipOptions configures the optional final step of a merge: gzip-compressing
// the merged flatfile via an external gztool-compatible binary and sanity
// checking the resulting .gzi side index.
type GzipOptions struct {
	// GztoolPath names the external binary; a relative name is resolved via PATH.
	// The tool's own CLI surface is out of scope to reimplement here.
	GztoolPath string
}

// Gzip shells out to opts.GztoolPath to compress flatfilePath in place, producing
// flatfilePath+".gz" and a sibling ".gzi" side index, then loads the side index
// to confirm it covers the merged flatfile's full decompressed length.
func Gzip(ctx context.Context, flatfilePath string, opts GzipOptions) error {
	tool := opts.GztoolPath
	if tool == "" {
		tool = "gztool"
	}
	fi, err := os.Stat(flatfilePath)
	if err != nil {
		return fmt.Errorf("merger: stat %s: %w", flatfilePath, err)
	}

	cmd := exec.CommandContext(ctx, tool, "-I", "-x", flatfilePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("merger: running %s: %w: %s", tool, err, out)
	}

	gziPath := flatfilePath + ".gzi"
	f, err := os.Open(gziPath)
	if err != nil {
		return fmt.Errorf("merger: opening %s produced by %s: %w", gziPath, tool, err)
	}
	defer f.Close()
	idx, err := gzi.Load(f)
	if err != nil {
		return fmt.Errorf("merger: parsing %s: %w", gziPath, err)
	}
	if len(idx.Points) == 0 {
		return fmt.Errorf("merger: %s has no access points", gziPath)
	}
	last := idx.Points[len(idx.Points)-1]
	if last.DecompressedOffset < fi.Size() {
		return fmt.Errorf("merger: %s covers only %d of %d decompressed bytes", gziPath, last.DecompressedOffset, fi.Size())
	}
	return nil
}
