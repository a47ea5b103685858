package cli

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/robalobadob/nerdle/internal/challenge"
	"github.com/robalobadob/nerdle/internal/config"
	"github.com/robalobadob/nerdle/internal/game"
	"github.com/robalobadob/nerdle/internal/terminal"
)

var (
	playFormula string
	playResult  int
	playDaily   bool
	playRows    int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal",
	Long: `Play Nerdle in the terminal. Type digits and + - * /, press Enter to
submit a row, Backspace or Delete to erase, Esc or Ctrl+C to quit.

By default the target is generated at random. --daily plays today's
challenge; --formula fixes the target (handy for practice).

Example:
  nerdle play
  nerdle play --daily
  nerdle play --formula 12+34-5 --result 41`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playFormula, "formula", "", "Fixed target formula")
	playCmd.Flags().IntVar(&playResult, "result", 0, "Expected result of --formula (checked when set)")
	playCmd.Flags().BoolVar(&playDaily, "daily", false, "Play today's daily challenge")
	playCmd.Flags().IntVar(&playRows, "rows", 0, "Number of guesses (overrides GAME_ROWS)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging("warn", true)
	if playRows > 0 {
		cfg.Rows = playRows
	}

	target, mode, err := playTarget(cfg, cmd.Flags().Changed("result"))
	if err != nil {
		return err
	}
	g, err := game.New(target, game.Config{Rows: cfg.Rows, Cols: utf8.RuneCountInString(target.Formula)}, mode)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()
	if f, ok := in.(*os.File); ok {
		t := terminal.NewTerminal(f)
		if t.IsTerminal() {
			if err := t.EnterRaw(); err != nil {
				return err
			}
			defer t.ExitRaw()
			fmt.Fprint(out, terminal.CursorHide)
			defer fmt.Fprint(out, terminal.CursorShow)
		}
	}

	status, err := terminal.Play(in, out, g)
	if err != nil {
		return err
	}
	if !status.Terminal() {
		fmt.Fprint(out, "\r\nThe formula was "+target.Formula+"\r\n")
	}
	return nil
}

// playTarget picks the target from the flags. resultSet reports whether
// --result was given explicitly.
func playTarget(cfg config.Config, resultSet bool) (game.Target, game.Mode, error) {
	switch {
	case playDaily:
		pool, err := challenge.Load(cfg.ChallengesFile)
		if err != nil {
			return game.Target{}, "", err
		}
		t, _ := pool.Daily(time.Now(), cfg.DailySalt)
		return t, game.ModeDaily, nil

	case playFormula != "":
		t, err := challenge.Parse(playFormula)
		if err != nil {
			return game.Target{}, "", err
		}
		if resultSet && playResult != t.Result {
			return game.Target{}, "", fmt.Errorf("formula %s results in %d, not %d", t.Formula, t.Result, playResult)
		}
		return t, game.ModeFree, nil
	}
	return challenge.Random(), game.ModeFree, nil
}
