package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"recast/internal/catalog"
	"recast/internal/codec"
	"recast/internal/tui"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Probe the codecs on this machine and list how each format will be produced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		caps := codec.Detect(codec.NewPoolLoader(cfg.Advanced.Enabled), logger)
		out := cmd.OutOrStdout()

		if caps.LoadErr != "" {
			fmt.Fprintln(out, tui.RenderNotice("advanced codecs unavailable: "+caps.LoadErr))
		}
		fmt.Fprintln(out, tui.RenderTable(
			[]string{"ID", "Format", "Strategy", "Extension", "Quality"},
			catalogRows(catalog.Resolve(caps)),
		))
		return nil
	},
}

func catalogRows(entries []catalog.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		ext := "." + e.Spec.Ext
		if e.Spec.Identity {
			ext = "(source)"
		}
		quality := "-"
		if e.Spec.Quality {
			quality = "1-100"
		}
		rows = append(rows, []string{e.Spec.ID, e.Label, e.Strategy.String(), ext, quality})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
