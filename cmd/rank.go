package cmd

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/pulsar/internal/config"
	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
	"github.com/papapumpkin/pulsar/internal/rank"
	"github.com/papapumpkin/pulsar/internal/store"
	"github.com/papapumpkin/pulsar/internal/telemetry"
	"github.com/papapumpkin/pulsar/internal/ui"
	"github.com/papapumpkin/pulsar/internal/watch"
)

// checkFactor scales the tolerance into the largest per-page difference
// --check accepts between the ranker and the reference.
const checkFactor = 10

var rankCmd = &cobra.Command{
	Use:   "rank <network-file>",
	Short: "Compute PageRank for a network file",
	Long: `Loads a network from a .toml, .hcl or .json file, computes PageRank and
prints the highest ranked pages.

With --check the result is compared against the single-threaded reference.
With --store the run is recorded in the result store.
With --watch the network is re-ranked every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.Float64("alpha", 0.85, "damping factor in (0, 1)")
	f.Int("iterations", 100, "iteration budget")
	f.Float64("tolerance", 1e-6, "convergence threshold on the summed rank difference")
	f.Int("threads", runtime.NumCPU(), "worker count")
	f.Int("top", 10, "number of pages to print (0 for all)")
	f.Bool("reference", false, "use the single-threaded reference ranker")
	f.Bool("check", false, "verify the result against the reference ranker")
	f.Bool("store", false, "record the run in the result store")
	f.Bool("watch", false, "re-rank whenever the network file changes")
	f.String("telemetry", "", "append JSONL run events to this file")

	_ = viper.BindPFlag("alpha", f.Lookup("alpha"))
	_ = viper.BindPFlag("iterations", f.Lookup("iterations"))
	_ = viper.BindPFlag("tolerance", f.Lookup("tolerance"))
	_ = viper.BindPFlag("threads", f.Lookup("threads"))
	_ = viper.BindPFlag("top", f.Lookup("top"))
	_ = viper.BindPFlag("telemetry_path", f.Lookup("telemetry"))
	_ = viper.BindPFlag("store.enabled", f.Lookup("store"))

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	reference, _ := cmd.Flags().GetBool("reference")
	check, _ := cmd.Flags().GetBool("check")
	watchFile, _ := cmd.Flags().GetBool("watch")

	printer := ui.NewWriter(cmd.ErrOrStderr())
	s := &rankSession{
		cfg:     cfg,
		ranker:  newRanker(cfg, reference),
		check:   check && !reference,
		printer: printer,
		results: ui.NewWriter(cmd.OutOrStdout()),
	}
	if s.gen, err = newGenerator(cfg); err != nil {
		return err
	}

	if cfg.TelemetryPath != "" {
		if s.events, err = telemetry.NewEmitter(cfg.TelemetryPath); err != nil {
			return err
		}
		defer s.events.Close()
	}

	ctx, cancel := setupSignalContext(cmd.Context(), printer)
	defer cancel()

	if cfg.Store.Enabled {
		if s.store, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN); err != nil {
			return err
		}
		defer s.store.Close()
	}

	path := args[0]
	if !watchFile {
		return s.run(ctx, path)
	}
	return s.watch(ctx, path)
}

// rankSession carries everything one rank invocation needs across repeated
// runs in watch mode.
type rankSession struct {
	cfg     config.Config
	gen     pageid.Generator
	ranker  rank.Ranker
	check   bool
	printer *ui.Printer // status, stderr
	results *ui.Printer // rank table, stdout
	events  *telemetry.Emitter
	store   *store.Store
}

func (s *rankSession) emit(kind, runID string, data any) {
	if err := s.events.Emit(telemetry.Event{Kind: kind, RunID: runID, Ranker: s.ranker.Name(), Data: data}); err != nil {
		s.printer.Error(err.Error())
	}
}

// run loads, ranks and reports the network at path once.
func (s *rankSession) run(ctx context.Context, path string) error {
	runID := uuid.NewString()
	started := time.Now()

	net, err := network.Load(path, s.gen)
	if err != nil {
		return err
	}
	if err := net.GenerateIDs(ctx, s.cfg.Threads); err != nil {
		s.emit(telemetry.KindRunFailed, runID, map[string]any{"error": err.Error()})
		return err
	}
	stats := net.Stats()
	s.emit(telemetry.KindIDsGenerated, runID, map[string]any{
		"pages":    stats.Pages,
		"links":    stats.Links,
		"dangling": stats.Dangling,
		"elapsed":  time.Since(started).String(),
	})
	s.printer.NetworkLoaded(path, stats)

	opts := rankOptions(s.cfg)
	var last rank.IterationStats
	opts.OnIteration = func(it rank.IterationStats) {
		last = it
		s.emit(telemetry.KindIteration, runID, map[string]any{
			"iteration":  it.Iteration,
			"difference": it.Difference,
			"dangle_sum": it.DangleSum,
		})
		if s.cfg.Verbose {
			s.printer.Iteration(it, opts.Iterations)
		}
	}

	s.emit(telemetry.KindRunStart, runID, map[string]any{
		"network":    path,
		"alpha":      opts.Alpha,
		"tolerance":  opts.Tolerance,
		"iterations": opts.Iterations,
	})
	s.printer.RunStart(s.ranker.Name(), opts)

	computeStart := time.Now()
	ranks, err := s.ranker.Compute(ctx, net, opts)
	elapsed := time.Since(computeStart)
	if err != nil {
		s.emit(telemetry.KindRunFailed, runID, map[string]any{"error": err.Error()})
		return err
	}
	s.emit(telemetry.KindConverged, runID, map[string]any{
		"iterations": last.Iteration,
		"difference": last.Difference,
		"elapsed":    elapsed.String(),
	})
	s.printer.Converged(last.Iteration, last.Difference, elapsed)

	if s.check {
		if err := s.verify(ctx, net, opts, ranks); err != nil {
			return err
		}
	}

	s.results.RankTable(rankRows(net, ranks), s.cfg.Top)

	if s.store != nil {
		saved, err := s.store.SaveRun(ctx, store.Run{
			ID:            runID,
			Network:       path,
			Ranker:        s.ranker.Name(),
			Alpha:         opts.Alpha,
			Tolerance:     opts.Tolerance,
			MaxIterations: opts.Iterations,
			Threads:       s.cfg.Threads,
			Iterations:    last.Iteration,
			Difference:    last.Difference,
			Pages:         len(ranks),
			StartedAt:     started,
			Duration:      elapsed,
		}, ranks)
		if err != nil {
			return err
		}
		s.printer.Saved(saved.ID)
	}
	return nil
}

// verify compares ranks against the reference ranker.
func (s *rankSession) verify(ctx context.Context, net *network.Network, opts rank.Options, ranks []rank.PageRank) error {
	opts.OnIteration = nil
	ref := rank.Reference()
	want, err := ref.Compute(ctx, net, opts)
	if err != nil {
		return fmt.Errorf("check: %s: %w", ref.Name(), err)
	}
	delta, err := maxDelta(ranks, want)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if limit := checkFactor * opts.Tolerance; delta > limit {
		return fmt.Errorf("check: %s differs from %s by %.3e (limit %.3e)", s.ranker.Name(), ref.Name(), delta, limit)
	}
	s.printer.CheckPassed(ref.Name(), delta)
	return nil
}

// maxDelta returns the largest per-page rank difference between two results
// over the same pages.
func maxDelta(got, want []rank.PageRank) (float64, error) {
	if len(got) != len(want) {
		return 0, fmt.Errorf("result sizes differ: %d vs %d", len(got), len(want))
	}
	byID := make(map[pageid.ID]float64, len(want))
	for _, pr := range want {
		byID[pr.ID] = pr.Rank
	}
	var worst float64
	for _, pr := range got {
		r, ok := byID[pr.ID]
		if !ok {
			return 0, fmt.Errorf("page %s missing from reference", pr.ID.Short(12))
		}
		worst = math.Max(worst, math.Abs(pr.Rank-r))
	}
	return worst, nil
}

// rankRows pairs ranks with page names, sorted highest first.
func rankRows(net *network.Network, ranks []rank.PageRank) []ui.RankRow {
	names := make(map[pageid.ID]string, net.Size())
	for _, p := range net.Pages() {
		names[p.ID()] = p.Name
	}
	rows := make([]ui.RankRow, len(ranks))
	for i, pr := range ranks {
		rows[i] = ui.RankRow{Page: names[pr.ID], ID: pr.ID, Rank: pr.Rank}
	}
	ui.SortRows(rows)
	return rows
}

// watch ranks path once and again after every change until ctx is done.
// Failed runs are reported and do not stop watching.
func (s *rankSession) watch(ctx context.Context, path string) error {
	w, err := watch.New(path)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	s.rerun(ctx, path)
	s.printer.Watching(w.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-w.Changes:
			if c.Removed {
				s.printer.Info(fmt.Sprintf("%s removed, waiting for it to return", path))
				continue
			}
			s.rerun(ctx, path)
		}
	}
}

func (s *rankSession) rerun(ctx context.Context, path string) {
	if err := s.run(ctx, path); err != nil && ctx.Err() == nil {
		s.printer.Failed(err)
	}
}
