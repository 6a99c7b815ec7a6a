package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pulsar/internal/config"
	"github.com/papapumpkin/pulsar/internal/store"
	"github.com/papapumpkin/pulsar/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored runs or show the ranks of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := cmd.Context()

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	out := ui.NewWriter(cmd.OutOrStdout())
	if len(args) == 0 {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.Runs(ctx, limit)
		if err != nil {
			return err
		}
		out.Runs(runs)
		return nil
	}

	run, err := st.Run(ctx, args[0])
	if err != nil {
		return err
	}
	ranks, err := st.Ranks(ctx, run.ID, cfg.Top)
	if err != nil {
		return err
	}
	out.RunDetail(run)
	rows := make([]ui.RankRow, len(ranks))
	for i, pr := range ranks {
		rows[i] = ui.RankRow{ID: pr.ID, Rank: pr.Rank}
	}
	out.RankTable(rows, 0)
	return nil
}
