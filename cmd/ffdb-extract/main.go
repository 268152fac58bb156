// Command ffdb-extract resolves identifiers to decoded entries: identifiers ->
// index lookup -> range planning -> byte-source reads -> codec decode -> output.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/pschou/go-ffdb/extractor"
	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/internal/cliutil"
	"github.com/pschou/go-ffdb/internal/gzi"
	"github.com/pschou/go-ffdb/rangeplan"
)

func main() {
	fs := flag.NewFlagSet("ffdb-extract", flag.ContinueOnError)
	var common cliutil.CommonFlags
	cliutil.RegisterCommon(fs, &common)

	var ids cliutil.StringList
	fs.Var(&ids, "s", "identifier to extract (repeatable)")
	zfound := fs.Bool("z", false, "duplicates policy: last match only")
	dups := fs.Bool("d", false, "duplicates policy: all matches")
	merge := fs.Bool("m", false, "merged retrieval: coalesce adjacent ranges into fewer reads")
	blockSize := fs.Int("b", 0, "block size for --threads partitioning (0: single block)")
	verify := fs.Bool("x", false, "verify checksum on extraction")
	outfile := fs.String("outfile", "", "write output to this path instead of stdout")
	gzipFlag := fs.Bool("gzip", false, "flatfile is a whole-file gzip/bgzip stream")
	sideIndexPath := fs.String("gzi", "", "path to the .gzi side index (required with -gzip)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ffdb-extract [flags] <flatfile> <index>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(cliutil.ExitUsage)
	}

	code, err := run(fs, common, ids, *zfound, *dups, *merge, *blockSize, *verify, *outfile, *gzipFlag, *sideIndexPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(fs *flag.FlagSet, common cliutil.CommonFlags, ids cliutil.StringList, zfound, dups, merge bool, blockSize int, verify bool, outfile string, useGzip bool, sideIndexPath string) (int, error) {
	if zfound && dups {
		return cliutil.ExitUsage, fmt.Errorf("%w: -z and -d cannot be combined", cliutil.ErrUsage)
	}
	if err := cliutil.RequireArgs(fs, 2, "ffdb-extract [flags] <flatfile> <index>"); err != nil {
		return cliutil.ExitUsage, err
	}
	flatfilePath, indexPath := fs.Arg(0), fs.Arg(1)

	logger, err := cliutil.NewLogger(common.Verbose)
	if err != nil {
		return cliutil.ExitIO, err
	}
	defer logger.Sync()

	idxFile, err := os.Open(indexPath)
	if err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-extract: opening %s: %w", indexPath, err)
	}
	defer idxFile.Close()
	store, err := index.Load(idxFile)
	if err != nil {
		return cliutil.ExitIntegrity, fmt.Errorf("ffdb-extract: loading index: %w", err)
	}

	var sideIndex *gzi.Index
	if useGzip {
		if sideIndexPath == "" {
			return cliutil.ExitUsage, fmt.Errorf("%w: -gzi is required with -gzip", cliutil.ErrUsage)
		}
		f, err := os.Open(sideIndexPath)
		if err != nil {
			return cliutil.ExitIO, fmt.Errorf("ffdb-extract: opening %s: %w", sideIndexPath, err)
		}
		defer f.Close()
		sideIndex, err = gzi.Load(f)
		if err != nil {
			return cliutil.ExitIO, fmt.Errorf("ffdb-extract: loading %s: %w", sideIndexPath, err)
		}
	}

	source, err := bytesource.Open(flatfilePath, bytesource.Options{
		Gzip: useGzip, KeepCache: common.CacheDir != "", CacheDir: common.CacheDir,
	}, sideIndex)
	if err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-extract: opening %s: %w", flatfilePath, err)
	}
	defer source.Close()

	passphrase := common.Passphrase
	if store.Header.Stack.AES && passphrase == "" {
		passphrase, err = cliutil.ReadPassphrase(os.Stdin, os.Stderr)
		if err != nil {
			return cliutil.ExitIO, err
		}
	}
	codecCtx, err := cliutil.ResolveContext(passphrase, store.Header)
	if err != nil {
		return cliutil.ExitIntegrity, err
	}

	policy := index.First
	switch {
	case zfound:
		policy = index.Last
	case dups:
		policy = index.All
	}

	mode := rangeplan.PerEntry
	if merge {
		mode = rangeplan.Merged
	}

	idList := make([][]byte, len(ids))
	for i, id := range ids {
		idList[i] = []byte(id)
	}
	if len(idList) == 0 {
		idList, err = readIDsFromStdin()
		if err != nil {
			return cliutil.ExitIO, err
		}
	}

	var out *bufio.Writer
	var commit func() error
	if outfile != "" {
		f, c, err := cliutil.AtomicFile(outfile)
		if err != nil {
			return cliutil.ExitIO, err
		}
		defer f.Close()
		out = bufio.NewWriter(f)
		commit = c
	} else {
		out = bufio.NewWriter(os.Stdout)
	}

	ctx, cancel := cliutil.WithInterrupt(context.Background())
	defer cancel()

	ex := &extractor.Extractor{
		Store:  store,
		Source: source,
		Codec:  codecCtx,
		Opts: extractor.Options{
			Policy:      policy,
			Mode:        mode,
			Threads:     common.Threads,
			CoalesceGap: rangeplan.DefaultCoalesceGap,
			CoalesceMax: rangeplan.DefaultCoalesceMax,
			Verify:      verify,
		},
	}

	blocks := rangeplan.Partition(idList, blockSize)
	var summary extractor.Summary
	for _, block := range blocks {
		results, s, err := ex.Run(ctx, block)
		if err != nil {
			return cliutil.ExitIO, fmt.Errorf("ffdb-extract: %w", err)
		}
		summary.Missing += s.Missing
		summary.Corrupt += s.Corrupt
		summary.Fatal += s.Fatal

		byRequest := make(map[int][]extractor.Result)
		for _, r := range results {
			byRequest[r.RequestIndex] = append(byRequest[r.RequestIndex], r)
		}
		for i, id := range block {
			for _, r := range byRequest[i] {
				if r.Err != nil {
					fmt.Fprintf(os.Stderr, "ffdb-extract: %s: %v\n", id, r.Err)
					continue
				}
				out.Write(r.Data)
			}
		}
	}
	if err := out.Flush(); err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-extract: writing output: %w", err)
	}
	if commit != nil {
		if err := commit(); err != nil {
			return cliutil.ExitIO, err
		}
	}

	if code := cliutil.ExitCode(nil, summary.Missing, summary.Corrupt, summary.Fatal); code != cliutil.ExitOK {
		return code, fmt.Errorf("ffdb-extract: %d missing, %d corrupt, %d fatal entries", summary.Missing, summary.Corrupt, summary.Fatal)
	}
	return cliutil.ExitOK, nil
}

func readIDsFromStdin() ([][]byte, error) {
	var ids [][]byte
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		ids = append(ids, append([]byte(nil), line...))
	}
	return ids, sc.Err()
}
