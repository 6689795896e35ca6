// Package main is babystepsctl, the admin CLI for a BabySteps storage backend.
// It reads the same environment configuration as the API server and works
// on the stores directly, so it can also verify tips, which the public API
// does not expose.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkordes/babysteps/backend/internal/config"
	"github.com/pkordes/babysteps/backend/internal/kv"
)

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openFromEnv opens the backend selected by the environment configuration.
func openFromEnv(ctx context.Context) (kv.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return kv.Open(ctx, cfg.KV())
}
