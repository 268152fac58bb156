// Command ffdb-merge appends a second indexed flatfile onto a first and emits
// a merged index with the appended offsets shifted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pschou/go-ffdb/internal/cliutil"
	"github.com/pschou/go-ffdb/merger"
)

func main() {
	fs := flag.NewFlagSet("ffdb-merge", flag.ContinueOnError)
	var common cliutil.CommonFlags
	cliutil.RegisterCommon(fs, &common)

	create := fs.Bool("create", false, "write the merged flatfile to a new path instead of appending to base in place")
	small := fs.Bool("small", false, "merge via an in-memory ordered map instead of a streamed merge")
	outFlatfile := fs.String("outfile", "", "merged flatfile path (default with -create: <base-flatfile>.new)")
	outIndex := fs.String("outindex", "", "merged index path (default: <base index>)")
	gzipFlag := fs.Bool("gzip", false, "gzip-compress the merged flatfile afterward via an external gztool-compatible binary")
	gztoolPath := fs.String("gztool-path", "gztool", "path to the gztool-compatible binary used by -gzip")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ffdb-merge [flags] <base-flatfile> <base-index> <new-flatfile> <new-index>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(cliutil.ExitUsage)
	}

	code, err := run(fs, common, *create, *small, *outFlatfile, *outIndex, *gzipFlag, *gztoolPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(fs *flag.FlagSet, common cliutil.CommonFlags, create, small bool, outFlatfile, outIndex string, useGzip bool, gztoolPath string) (int, error) {
	if err := cliutil.RequireArgs(fs, 4, "ffdb-merge [flags] <base-flatfile> <base-index> <new-flatfile> <new-index>"); err != nil {
		return cliutil.ExitUsage, err
	}
	base := merger.Paths{Flatfile: fs.Arg(0), Index: fs.Arg(1)}
	newFile := merger.Paths{Flatfile: fs.Arg(2), Index: fs.Arg(3)}

	if create && outFlatfile == "" {
		outFlatfile = base.Flatfile + ".new"
	}
	if outFlatfile == "" {
		outFlatfile = base.Flatfile
	}
	if outIndex == "" {
		outIndex = base.Index
	}

	logger, err := cliutil.NewLogger(common.Verbose)
	if err != nil {
		return cliutil.ExitIO, err
	}
	defer logger.Sync()

	if err := merger.Merge(base, newFile, outFlatfile, outIndex, merger.Options{Create: create, Small: small}); err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-merge: %w", err)
	}
	logger.Sugar().Infof("merged %s into %s, index written to %s", newFile.Flatfile, outFlatfile, outIndex)

	if useGzip {
		ctx, cancel := cliutil.WithInterrupt(context.Background())
		defer cancel()
		if err := merger.Gzip(ctx, outFlatfile, merger.GzipOptions{GztoolPath: gztoolPath}); err != nil {
			return cliutil.ExitIO, fmt.Errorf("ffdb-merge: %w", err)
		}
		logger.Sugar().Infof("gzip-compressed %s", outFlatfile)
	}

	return cliutil.ExitOK, nil
}
