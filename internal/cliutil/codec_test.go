package cliutil_test

import (
	"testing"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/internal/cliutil"
	"github.com/stretchr/testify/require"
)

func TestNewHeaderPlainStackHasNoSalt(t *testing.T) {
	h, err := cliutil.NewHeader(codec.None, true, false)
	require.NoError(t, err)
	require.True(t, h.CRC)
	require.Empty(t, h.Salt)
}

func TestNewHeaderGeneratesRandomSaltPerCall(t *testing.T) {
	stack := codec.Stack{AES: true, KeyBits: 256}
	h1, err := cliutil.NewHeader(stack, false, false)
	require.NoError(t, err)
	h2, err := cliutil.NewHeader(stack, false, false)
	require.NoError(t, err)
	require.NotEqual(t, h1.Salt, h2.Salt)
	require.Equal(t, codec.DefaultIterations, h1.Iterations)
}

func TestNewHeaderLegacyKDFUsesFixedSalt(t *testing.T) {
	stack := codec.Stack{AES: true, KeyBits: 256}
	h, err := cliutil.NewHeader(stack, false, true)
	require.NoError(t, err)
	require.Equal(t, codec.LegacySalt, h.Salt)
	require.Equal(t, codec.LegacyIterations, h.Iterations)
}

func TestResolveContextRoundTrip(t *testing.T) {
	stack := codec.Stack{AES: true, KeyBits: 128}
	header, err := cliutil.NewHeader(stack, true, false)
	require.NoError(t, err)

	writeCtx, err := cliutil.ResolveContext("secret", header)
	require.NoError(t, err)
	encoded, err := codec.Encode(writeCtx, []byte("payload"))
	require.NoError(t, err)

	readCtx, err := cliutil.ResolveContext("secret", header)
	require.NoError(t, err)
	decoded, err := codec.Decode(readCtx, encoded)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), decoded)

	wrongCtx, err := cliutil.ResolveContext("nope", header)
	require.NoError(t, err)
	_, err = codec.Decode(wrongCtx, encoded)
	require.ErrorIs(t, err, codec.ErrBadPassphrase)
}

func TestResolveContextNoCodec(t *testing.T) {
	ctx, err := cliutil.ResolveContext("", index.Header{})
	require.NoError(t, err)
	encoded, err := codec.Encode(ctx, []byte("plain"))
	require.NoError(t, err)
	require.Equal(t, []byte("plain"), encoded)
}
