package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/papapumpkin/pulsar/internal/config"
	"github.com/papapumpkin/pulsar/internal/pageid"
	"github.com/papapumpkin/pulsar/internal/rank"
	"github.com/papapumpkin/pulsar/internal/ui"
)

// newGenerator builds the page ID generator named by the config.
func newGenerator(cfg config.Config) (pageid.Generator, error) {
	if cfg.IDGenerator != config.GeneratorCommand {
		return pageid.SHA256{}, nil
	}
	c, err := pageid.NewCommand(cfg.HashCommand)
	if err != nil {
		return nil, fmt.Errorf("id generator: %w", err)
	}
	return c, nil
}

// newRanker returns the reference ranker or a multi-threaded ranker sized by
// the config.
func newRanker(cfg config.Config, reference bool) rank.Ranker {
	if reference {
		return rank.Reference()
	}
	return rank.New(cfg.Threads)
}

// rankOptions maps the config onto ranker options.
func rankOptions(cfg config.Config) rank.Options {
	return rank.Options{
		Alpha:      cfg.Alpha,
		Iterations: cfg.Iterations,
		Tolerance:  cfg.Tolerance,
	}
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			printer.Info("shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
