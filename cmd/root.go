package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"recast/internal/config"
	"recast/internal/logging"
)

var (
	configPath string
	v          = config.New()
	cfg        config.Config
	logger     = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "recast",
	Short:         "recast - batch-convert images into modern formats",
	Long:          "recast converts a file or a whole directory tree of images into several output formats at once, using in-process advanced codecs when they work on this machine and the native encoders when they do not.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		// Info lines would tear through the progress view.
		if usesTUI(cmd) && !cmd.Flags().Changed("log-level") && level == "info" {
			level = "warn"
		}
		logger, err = logging.New(os.Stderr, level, cfg.Log.JSON)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default <config dir>/recast/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "emit logs as JSON")

	mustBind(v, "log.level", flags.Lookup("log-level"))
	mustBind(v, "log.json", flags.Lookup("log-json"))
}

// mustBind ties a config key to a flag so an explicit flag beats the
// environment and the config file.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		panic("cmd: no flag for " + key)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
