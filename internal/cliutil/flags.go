package cliutil

import (
	"flag"
	"fmt"
)

// CommonFlags holds the flag values shared by all four ffdb-* tools.
type CommonFlags struct {
	Passphrase string
	Verbose    bool
	Threads    int
	CacheDir   string
}

// RegisterCommon registers the shared flags onto fs.
func RegisterCommon(fs *flag.FlagSet, c *CommonFlags) {
	fs.StringVar(&c.Passphrase, "p", "", "passphrase for AES-encrypted entries (prompted on stdin if omitted and needed)")
	fs.BoolVar(&c.Verbose, "v", false, "verbose logging")
	fs.IntVar(&c.Threads, "threads", 1, "number of concurrent workers")
	fs.StringVar(&c.CacheDir, "cache-dir", "", "enable the gzip segment cache when non-empty (segments are held in memory; nothing is written to this directory)")
}

// RequireArgs returns ErrUsage wrapped with a message when fs has fewer than n
// positional arguments remaining.
func RequireArgs(fs *flag.FlagSet, n int, usage string) error {
	if fs.NArg() < n {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return nil
}
