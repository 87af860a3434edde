package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"recast/internal/catalog"
	"recast/internal/codec"
	"recast/internal/history"
	"recast/internal/processor"
	"recast/internal/settings"
	"recast/internal/tui"
)

var defaultFormats = []string{"jpeg", "webp"}

var (
	convertOutput    string
	convertFormats   []string
	convertOverrides map[string]int
	convertLast      bool
	convertNoSave    bool
	convertNoTUI     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <path>",
	Short: "Convert an image or a directory of images into the selected formats",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOutput, "output", "o", "", "destination folder (default <path>-recast for directories, the file's folder for single files)")
	f.StringSliceVarP(&convertFormats, "formats", "f", nil, "formats to produce: "+strings.Join(catalog.IDs(), ", ")+" (default "+strings.Join(defaultFormats, ",")+")")
	f.IntP("quality", "q", catalog.DefaultQuality, "default quality, 1-100")
	f.StringToIntVar(&convertOverrides, "override", nil, "per-format quality, e.g. avif=55,webp=70")
	f.IntP("jobs", "j", 0, "files converted in parallel (default: CPU count clamped to 2-8)")
	f.Duration("timeout", 0, "time limit for a single encode, 0 for none")
	f.BoolVar(&convertLast, "last", false, "reuse the formats and quality saved by the previous run")
	f.BoolVar(&convertNoSave, "no-save", false, "do not remember this run's formats and quality")
	f.BoolVar(&convertNoTUI, "no-tui", false, "plain output without the progress view")

	mustBind(v, "quality", f.Lookup("quality"))
	mustBind(v, "concurrency", f.Lookup("jobs"))
	mustBind(v, "job_timeout", f.Lookup("timeout"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]

	outputDir := convertOutput
	if outputDir == "" {
		outputDir = defaultOutputDir(path)
	}
	outputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}

	input, err := processor.Discover(path, outputDir)
	if err != nil {
		return err
	}

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		if settingsPath, err = settings.DefaultPath(); err != nil {
			logger.Debug().Err(err).Msg("no settings location")
		}
	}
	ids, quality := selection(cmd, settingsPath)
	if err := quality.Validate(); err != nil {
		return err
	}

	loader := codec.NewPoolLoader(cfg.Advanced.Enabled)
	caps := codec.Detect(loader, logger)
	entries, err := catalog.Lookup(catalog.Resolve(caps), ids)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if caps.LoadErr != "" && cfg.Advanced.Enabled {
		fmt.Fprintln(out, tui.RenderNotice("advanced codecs unavailable, using native encoders: "+caps.LoadErr))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	req := processor.Request{
		Files:       input.Files,
		InputRoot:   input.Root,
		OutputRoot:  outputDir,
		Batch:       input.Batch,
		Formats:     entries,
		Quality:     quality,
		Concurrency: cfg.Concurrency,
		JobTimeout:  cfg.JobTimeout,
		Loader:      loader,
	}

	started := time.Now()
	summary, runErr := runBatch(ctx, req, usesTUI(cmd))
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	labels := make(map[string]string, len(entries))
	for _, e := range entries {
		labels[e.Spec.ID] = e.Label
	}
	if summary.ProviderError != "" {
		fmt.Fprintln(out, tui.RenderNotice("advanced codec provider failed, advanced formats skipped: "+summary.ProviderError))
	}
	fmt.Fprintln(out, tui.RenderSummary(tui.SummaryRows(summary, labels)))
	if failures := tui.RenderFailures(summary.Failures); failures != "" {
		fmt.Fprintln(out, failures)
	}

	if runErr != nil {
		return fmt.Errorf("interrupted: %w", runErr)
	}

	if !convertNoSave && settingsPath != "" {
		rec := settings.Record{Formats: entryIDs(entries), Quality: quality}
		if err := settings.Save(settingsPath, rec); err != nil {
			logger.Warn().Err(err).Msg("save settings")
		}
	}
	recordHistory(path, started, summary)

	fmt.Fprintln(out, tui.RenderDone("Converted files written to: "+outputDir))
	return nil
}

// selection merges explicit flags, the saved record (with --last) and config
// defaults, in that order of precedence.
func selection(cmd *cobra.Command, settingsPath string) ([]string, catalog.QualityConfig) {
	ids := convertFormats
	quality := catalog.QualityConfig{Default: cfg.Quality, Overrides: convertOverrides}

	if convertLast && settingsPath != "" {
		if rec, ok := settings.Load(settingsPath, logger); ok {
			if !cmd.Flags().Changed("formats") {
				ids = rec.Formats
			}
			if !cmd.Flags().Changed("quality") {
				quality.Default = rec.Quality.Default
			}
			if !cmd.Flags().Changed("override") {
				quality.Overrides = rec.Quality.Overrides
			}
		} else {
			logger.Info().Msg("no usable saved settings, using flags and defaults")
		}
	}

	if len(ids) == 0 {
		ids = defaultFormats
	}
	return ids, quality
}

func runBatch(ctx context.Context, req processor.Request, withTUI bool) (processor.Summary, error) {
	if !withTUI {
		return processor.Run(ctx, req, logger, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan processor.ProgressUpdate, 64)
	program := tea.NewProgram(tui.NewModel(updates, len(req.Files)))

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		final, err := program.Run()
		if err != nil {
			logger.Debug().Err(err).Msg("progress view")
		}
		if m, ok := final.(tui.Model); ok && m.Interrupted() {
			cancel()
		}
		// Keep the collector unblocked until the batch closes the channel.
		for range updates {
		}
	}()

	summary, err := processor.Run(ctx, req, logger, updates)
	close(updates)
	<-uiDone
	return summary, err
}

func recordHistory(input string, started time.Time, summary processor.Summary) {
	dir := cfg.HistoryDir
	if dir == "" {
		d, err := history.DefaultDir()
		if err != nil {
			logger.Debug().Err(err).Msg("no history location")
			return
		}
		dir = d
	}

	store, err := history.Open(dir)
	if err != nil {
		logger.Warn().Err(err).Msg("open history")
		return
	}
	defer store.Close()

	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	entry, err := store.Append(history.NewEntry(input, started, summary))
	if err != nil {
		logger.Warn().Err(err).Msg("record history")
		return
	}
	logger.Debug().Str("id", entry.ID).Msg("run recorded")
}

func defaultOutputDir(path string) string {
	clean := filepath.Clean(path)
	if info, err := os.Stat(clean); err == nil && !info.IsDir() {
		return filepath.Dir(clean)
	}
	return clean + "-recast"
}

func entryIDs(entries []catalog.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Spec.ID)
	}
	return ids
}

func usesTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "convert" && !convertNoTUI && isTerminal(os.Stdout)
}
