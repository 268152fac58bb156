// Package cliutil holds the flag scaffolding, exit-code mapping, and
// passphrase-reading helpers shared by the four ffdb-* command-line front ends.
package cliutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
)

// ErrUsage marks a bad CLI flag combination, detected before any I/O.
var ErrUsage = errors.New("ffdb: usage error")

// Exit codes: 0 success, 1 usage error, 2 I/O or network failure, 3 integrity
// failure, 4 partial success (some identifiers missing).
const (
	ExitOK            = 0
	ExitUsage         = 1
	ExitIO            = 2
	ExitIntegrity     = 3
	ExitPartialResult = 4
)

// ExitCode maps an error and the accumulated per-entry missing/corrupt/fatal
// counts to the process exit status they imply. A nil err with non-zero counts
// still yields a non-zero exit.
func ExitCode(err error, missing, corrupt, fatal int) int {
	switch {
	case err == nil && missing == 0 && corrupt == 0 && fatal == 0:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, bytesource.ErrRangeUnsupported):
		return ExitIO
	case errors.Is(err, codec.ErrBadPassphrase), errors.Is(err, codec.ErrUnsupportedCodec), errors.Is(err, index.ErrUnsorted):
		return ExitIntegrity
	case err != nil:
		return ExitIO
	case corrupt > 0 || fatal > 0:
		return ExitIntegrity
	case missing > 0:
		return ExitPartialResult
	default:
		return ExitOK
	}
}

// ReadPassphrase reads one line from r (the CLIs pass stdin when -p is omitted
// and a passphrase is needed). Echo is not suppressed: a passphrase typed at a
// terminal is visible. The trailing newline is stripped.
func ReadPassphrase(r io.Reader, w io.Writer) (string, error) {
	if w != nil {
		fmt.Fprint(w, "Passphrase: ")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("ffdb: reading passphrase: %w", err)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
