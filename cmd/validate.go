package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pulsar/internal/config"
	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
	"github.com/papapumpkin/pulsar/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <network-file>...",
	Short: "Check that network files parse and their page IDs are unique",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	printer := ui.NewWriter(cmd.ErrOrStderr())

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	if c, ok := gen.(*pageid.Command); ok {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("hash command: %w", err)
		}
		printer.Info(fmt.Sprintf("hash command %s found", c.Path))
	}

	failed := 0
	for _, path := range args {
		net, err := network.Load(path, gen)
		if err == nil {
			err = net.GenerateIDs(cmd.Context(), cfg.Threads)
		}
		if err != nil {
			printer.Failed(err)
			failed++
			continue
		}
		printer.NetworkLoaded(path, net.Stats())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d network file(s) invalid", failed, len(args))
	}
	return nil
}
