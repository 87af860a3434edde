package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recast/internal/history"
	"recast/internal/tui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversion runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.HistoryDir
		if dir == "" {
			d, err := history.DefaultDir()
			if err != nil {
				return err
			}
			dir = d
		}

		store, err := history.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}
		fmt.Fprintln(out, tui.RenderTable(
			[]string{"Started", "Input", "Files", "Outputs", "Failed", "Skipped", "Took"},
			historyRows(entries),
		))
		return nil
	},
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		var outputs []string
		for _, id := range e.Formats() {
			outputs = append(outputs, fmt.Sprintf("%s:%d", id, e.Succeeded[id]))
		}
		skipped := "-"
		if len(e.Skipped) > 0 {
			skipped = strings.Join(e.Skipped, ",")
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			e.Input,
			fmt.Sprint(e.Inputs),
			strings.Join(outputs, " "),
			fmt.Sprint(e.Failed),
			skipped,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show, 0 for all")
	rootCmd.AddCommand(historyCmd)
}
