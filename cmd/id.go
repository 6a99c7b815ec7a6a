package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pulsar/internal/config"
)

var idCmd = &cobra.Command{
	Use:   "id [content...]",
	Short: "Print the page ID for content",
	Long: `Prints the page ID the configured generator assigns to content. Each
argument is hashed separately; with no arguments stdin is hashed as a whole.`,
	RunE: runID,
}

func init() {
	rootCmd.AddCommand(idCmd)
}

func runID(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	contents := make([][]byte, 0, len(args))
	for _, a := range args {
		contents = append(contents, []byte(a))
	}
	if len(contents) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		contents = append(contents, data)
	}

	out := cmd.OutOrStdout()
	for i, c := range contents {
		id, err := gen.Generate(cmd.Context(), c)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			fmt.Fprintf(out, "%s  %s\n", id, strings.ReplaceAll(args[i], "\n", " "))
		} else {
			fmt.Fprintln(out, id)
		}
	}
	return nil
}
