// Command ffdb-index scans a flatfile with identifier regexes and an entry
// terminator, optionally re-encoding entries through the codec stack, and emits
// a sorted positional index.
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/indexer"
	"github.com/pschou/go-ffdb/internal/cliutil"
)

func main() {
	fs := flag.NewFlagSet("ffdb-index", flag.ContinueOnError)
	var common cliutil.CommonFlags
	cliutil.RegisterCommon(fs, &common)

	var independent, joined cliutil.StringList
	fs.Var(&independent, "i", "identifier pattern, first capture group per match (repeatable)")
	fs.Var(&joined, "j", "joined identifier pattern, all capture groups colon-joined (repeatable)")
	terminatorFlag := fs.String("t", `^-$`, "entry terminator line pattern")
	all := fs.Bool("a", false, "keep every match per pattern, not just the first")
	checksum := fs.Bool("x", false, "record a CRC32 checksum of each decoded entry")
	unsorted := fs.Bool("u", false, "skip sorting; leave it to an external command")
	blocks := fs.Int("blocks", 1, "number of parallel scan blocks")
	offset := fs.Int64("offset", 0, "shift every emitted offset by this many bytes")
	legacyKDF := fs.Bool("legacy-kdf", false, "use the fixed-salt compatibility KDF mode instead of a fresh random salt")

	aesBits := fs.Int("k", 0, "AES key size in bits (128, 192, or 256); 0 disables encryption")
	zlibLevel := fs.Int("c", -1, "ZLIB compression level 0-9; -1 disables compression")

	outIndex := fs.String("o", "", "output index path (default: <flatfile>.idx)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ffdb-index [flags] <flatfile>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(cliutil.ExitUsage)
	}

	code, err := run(fs, common, independent, joined, *terminatorFlag, *all, *checksum, *unsorted, *blocks, *offset, *legacyKDF, *aesBits, *zlibLevel, *outIndex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(fs *flag.FlagSet, common cliutil.CommonFlags, independent, joined cliutil.StringList, terminatorPattern string, all, checksum, unsorted bool, blocks int, offsetShift int64, legacyKDF bool, aesBits, zlibLevel int, outIndexPath string) (int, error) {
	if err := cliutil.RequireArgs(fs, 1, "ffdb-index [flags] <flatfile>"); err != nil {
		return cliutil.ExitUsage, err
	}
	flatfilePath := fs.Arg(0)
	if outIndexPath == "" {
		outIndexPath = flatfilePath + ".idx"
	}

	logger, err := cliutil.NewLogger(common.Verbose)
	if err != nil {
		return cliutil.ExitIO, err
	}
	defer logger.Sync()

	terminator, err := regexp.Compile(terminatorPattern)
	if err != nil {
		return cliutil.ExitUsage, fmt.Errorf("%w: bad terminator pattern: %v", cliutil.ErrUsage, err)
	}
	patterns := indexer.Patterns{All: all}
	for _, p := range independent {
		re, err := regexp.Compile(p)
		if err != nil {
			return cliutil.ExitUsage, fmt.Errorf("%w: bad -i pattern %q: %v", cliutil.ErrUsage, p, err)
		}
		patterns.Independent = append(patterns.Independent, re)
	}
	for _, p := range joined {
		re, err := regexp.Compile(p)
		if err != nil {
			return cliutil.ExitUsage, fmt.Errorf("%w: bad -j pattern %q: %v", cliutil.ErrUsage, p, err)
		}
		patterns.Joined = append(patterns.Joined, re)
	}
	if len(patterns.Independent) == 0 && len(patterns.Joined) == 0 {
		return cliutil.ExitUsage, fmt.Errorf("%w: at least one -i or -j pattern is required", cliutil.ErrUsage)
	}

	stack := codec.Stack{}
	if aesBits != 0 {
		stack.AES, stack.KeyBits = true, aesBits
	}
	if zlibLevel >= 0 {
		stack.Zlib, stack.ZlibLevel = true, zlibLevel
	}
	if err := stack.Validate(); err != nil {
		return cliutil.ExitUsage, fmt.Errorf("%w: %v", cliutil.ErrUsage, err)
	}

	keepData := checksum || stack.AES || stack.Zlib
	entries, err := indexer.ScanParallel(flatfilePath, blocks, terminator, patterns, keepData)
	if err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-index: scanning %s: %w", flatfilePath, err)
	}

	var records []index.Record
	var header index.Header

	if stack.AES || stack.Zlib {
		passphrase := common.Passphrase
		if stack.AES && passphrase == "" {
			passphrase, err = cliutil.ReadPassphrase(os.Stdin, os.Stderr)
			if err != nil {
				return cliutil.ExitIO, err
			}
		}
		header, err = cliutil.NewHeader(stack, checksum, legacyKDF)
		if err != nil {
			return cliutil.ExitIO, err
		}
		var key []byte
		if stack.AES {
			key, err = codec.DeriveKey(passphrase, header.Salt, header.Iterations, stack.KeyBits)
			if err != nil {
				return cliutil.ExitIntegrity, fmt.Errorf("ffdb-index: deriving key: %w", err)
			}
		}
		codecCtx, err := codec.NewContext(key, stack, checksum)
		if err != nil {
			return cliutil.ExitIntegrity, err
		}

		newFlatfile := flatfilePath + indexer.Suffix(stack)
		f, commit, err := cliutil.AtomicFile(newFlatfile)
		if err != nil {
			return cliutil.ExitIO, err
		}
		defer f.Close()
		records, err = indexer.EncodeFlatfile(f, entries, codecCtx, checksum, offsetShift)
		if err != nil {
			return cliutil.ExitIntegrity, err
		}
		if err := commit(); err != nil {
			return cliutil.ExitIO, err
		}
	} else {
		if checksum {
			header = index.NewHeader(stack, "", 0, nil, true)
		}
		records = indexer.RecordsFromEntries(entries, offsetShift, checksum)
	}

	if !unsorted {
		indexer.SortRecords(records)
	}

	out, commit, err := cliutil.AtomicFile(outIndexPath)
	if err != nil {
		return cliutil.ExitIO, err
	}
	defer out.Close()
	if err := index.WriteRecords(out, header, records); err != nil {
		return cliutil.ExitIO, fmt.Errorf("ffdb-index: writing %s: %w", outIndexPath, err)
	}
	if err := commit(); err != nil {
		return cliutil.ExitIO, err
	}

	logger.Sugar().Infof("indexed %d records from %s into %s", len(records), flatfilePath, outIndexPath)
	return cliutil.ExitOK, nil
}
