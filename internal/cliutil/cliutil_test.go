package cliutil_test

import (
	"strings"
	"testing"

	"github.com/pschou/go-ffdb/bytesource"
	"github.com/pschou/go-ffdb/internal/cliutil"
	"github.com/stretchr/testify/require"
)

func TestExitCodeMapping(t *testing.T) {
	require.Equal(t, cliutil.ExitOK, cliutil.ExitCode(nil, 0, 0, 0))
	require.Equal(t, cliutil.ExitUsage, cliutil.ExitCode(cliutil.ErrUsage, 0, 0, 0))
	require.Equal(t, cliutil.ExitIO, cliutil.ExitCode(bytesource.ErrRangeUnsupported, 0, 0, 0))
	require.Equal(t, cliutil.ExitIntegrity, cliutil.ExitCode(nil, 0, 1, 0))
	require.Equal(t, cliutil.ExitIntegrity, cliutil.ExitCode(nil, 0, 0, 1))
	require.Equal(t, cliutil.ExitPartialResult, cliutil.ExitCode(nil, 1, 0, 0))
}

func TestReadPassphraseStripsNewline(t *testing.T) {
	p, err := cliutil.ReadPassphrase(strings.NewReader("hunter2\n"), nil)
	require.NoError(t, err)
	require.Equal(t, "hunter2", p)
}

func TestReadPassphraseNoTrailingNewline(t *testing.T) {
	p, err := cliutil.ReadPassphrase(strings.NewReader("hunter2"), nil)
	require.NoError(t, err)
	require.Equal(t, "hunter2", p)
}

func TestStringListAccumulates(t *testing.T) {
	var l cliutil.StringList
	require.NoError(t, l.Set("alpha"))
	require.NoError(t, l.Set("beta"))
	require.Equal(t, cliutil.StringList{"alpha", "beta"}, l)
	require.Equal(t, "alpha,beta", l.String())
}
