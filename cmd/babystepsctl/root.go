package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/service"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// opener connects to a storage backend. The returned close function is never
// nil on success.
type opener func(ctx context.Context) (kv.Store, func(), error)

// app carries what every subcommand needs: how to reach the backend, the
// output format and the clock.
type app struct {
	open   opener
	format string
	now    func() time.Time
}

// services are the stores and services a subcommand runs against.
type services struct {
	milestones *store.Milestones
	tips       *store.Tips

	milestoneSvc *service.MilestoneService
	tipSvc       *service.TipService
	recSvc       *service.RecommendationService
}

func newRootCmd(open opener) *cobra.Command {
	a := &app{open: open, now: func() time.Time { return time.Now().UTC() }}

	root := &cobra.Command{
		Use:   "babystepsctl",
		Short: "BabySteps admin CLI",
		Long: `babystepsctl inspects and administers the BabySteps storage backend.

The backend is selected with the same environment variables as the API server
(STORAGE_DRIVER, STORAGE_DIR, DATABASE_URL, REDIS_ADDR, ...).

Examples:
  # List milestones as a table
  babystepsctl milestones list

  # Mark a community tip as verified
  babystepsctl tips verify 3

  # Show recommendations as JSON
  babystepsctl recommend --format json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.format, "format", "f", "table", "Output format: table|json|yaml")

	root.AddCommand(
		newMilestonesCmd(a),
		newTipsCmd(a),
		newRecommendCmd(a),
		newResetCmd(a),
	)
	return root
}

// run opens the backend, builds the stores and services, and calls fn.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, s services) error) error {
	switch a.format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q: use table, json or yaml", a.format)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, closeBackend, err := a.open(ctx)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeBackend()

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []store.Option{store.WithLogger(logger), store.WithClock(a.now)}
	ms := store.OpenMilestones(ctx, backend, opts...)
	ts := store.OpenTips(ctx, backend, opts...)

	return fn(ctx, services{
		milestones:   ms,
		tips:         ts,
		milestoneSvc: service.NewMilestoneService(ms, a.now),
		tipSvc:       service.NewTipService(ts, ms),
		recSvc:       service.NewRecommendationService(ms, a.now),
	})
}

// encode writes v as JSON or YAML according to the format flag. It reports
// false for the table format, leaving the caller to render.
func (a *app) encode(w io.Writer, v any) (bool, error) {
	switch a.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}
