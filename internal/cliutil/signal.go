package cliutil

import (
	"context"
	"os"
	"os/signal"
)

// WithInterrupt returns a context canceled on SIGINT, plus a stop func to
// release the signal handler early. The commands pass this context down to
// byte-source reads and external tools; no worker checks ctx.Err() between
// entries, so a cancellation can cut a read short.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
