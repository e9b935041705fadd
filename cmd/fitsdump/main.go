// Command fitsdump prints the HDU structure and header keys of FITS
// files.
//
// Usage:
//
//	fitsdump [--format text|json|yaml|cbor] [--strip] [--jobs N] file...
//
// Settings may also come from a YAML config file (--config, or
// ./.fitsdump.yaml) and from FITSDUMP_* environment variables, e.g.
// FITSDUMP_FORMAT=json or FITSDUMP_LOG_LEVEL=debug.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
