// Command ffdb-remove produces a new flatfile/index pair with the entries
// matching a set of identifiers removed.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/internal/cliutil"
	"github.com/pschou/go-ffdb/remover"
)

func main() {
	fs := flag.NewFlagSet("ffdb-remove", flag.ContinueOnError)
	var common cliutil.CommonFlags
	cliutil.RegisterCommon(fs, &common)

	var ids cliutil.StringList
	fs.Var(&ids, "s", "identifier to remove (repeatable)")
	zfound := fs.Bool("z", false, "duplicates policy: last match only")
	dups := fs.Bool("d", false, "duplicates policy: all matches")
	outFlatfile := fs.String("outfile", "", "output flatfile path (default: <flatfile>.new)")
	outIndex := fs.String("outindex", "", "output index path (default: <outfile>.idx)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ffdb-remove [flags] <flatfile> <index>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(cliutil.ExitUsage)
	}

	code, err := run(fs, common, ids, *zfound, *dups, *outFlatfile, *outIndex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(fs *flag.FlagSet, common cliutil.CommonFlags, ids cliutil.StringList, zfound, dups bool, outFlatfile, outIndex string) (int, error) {
	if zfound && dups {
		return cliutil.ExitUsage, fmt.Errorf("%w: -z and -d cannot be combined", cliutil.ErrUsage)
	}
	if err := cliutil.RequireArgs(fs, 2, "ffdb-remove [flags] <flatfile> <index>"); err != nil {
		return cliutil.ExitUsage, err
	}
	flatfilePath, indexPath := fs.Arg(0), fs.Arg(1)
	if outFlatfile == "" {
		outFlatfile = flatfilePath + ".new"
	}
	if outIndex == "" {
		outIndex = outFlatfile + ".idx"
	}

	logger, err := cliutil.NewLogger(common.Verbose)
	if err != nil {
		return cliutil.ExitIO, err
	}
	defer logger.Sync()

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
	if len(idList) == 0 {
		return cliutil.ExitUsage, fmt.Errorf("%w: at least one -s identifier or stdin line is required", cliutil.ErrUsage)
	}

	idxFile, err := os.Open(indexPath)
	if err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-remove: opening %s: %w", indexPath, err)
	}
	defer idxFile.Close()
	store, err := index.Load(idxFile)
	if err != nil {
		return cliutil.ExitIntegrity, fmt.Errorf("ffdb-remove: loading index: %w", err)
	}

	policy := index.First
	switch {
	case zfound:
		policy = index.Last
	case dups:
		policy = index.All
	}

	if err := remover.Remove(flatfilePath, store, idList, policy, outFlatfile, outIndex, remover.Options{Threads: common.Threads}); err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-remove: %w", err)
	}

	logger.Sugar().Infof("removed %d identifiers from %s, wrote %s and %s", len(idList), flatfilePath, outFlatfile, outIndex)
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
