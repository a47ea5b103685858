package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "nerdle",
	Short: "Guess the hidden arithmetic formula",
	Long: `Nerdle is a Wordle-style game about arithmetic: find the formula that
produces the given result. Every guess must itself evaluate to that result;
each character is then marked as in the right spot, elsewhere in the formula,
or not in it at all.

Run 'nerdle play' for a terminal game or 'nerdle serve' for the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("nerdle version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging applies the log level; console output is used for
// interactive commands so log lines stay readable next to the board.
func setupLogging(level string, console bool) {
	if logLevel != "" {
		level = logLevel
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
