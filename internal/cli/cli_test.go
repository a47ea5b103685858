package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/nerdle/internal/challenge"
	"github.com/robalobadob/nerdle/internal/config"
	"github.com/robalobadob/nerdle/internal/game"
)

func resetPlayFlags(t *testing.T) {
	t.Cleanup(func() {
		playFormula, playResult, playDaily, playRows = "", 0, false, 0
	})
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["play"])
	assert.True(t, names["serve"])

	assert.Error(t, playCmd.Args(playCmd, []string{"extra"}))
	assert.NoError(t, serveCmd.Args(serveCmd, nil))
}

func TestPlayTarget(t *testing.T) {
	resetPlayFlags(t)
	cfg := config.Default()

	t.Run("fixed formula", func(t *testing.T) {
		playFormula, playResult, playDaily = "12+34-5", 41, false
		tgt, mode, err := playTarget(cfg, true)
		require.NoError(t, err)
		assert.Equal(t, game.Target{Formula: "12+34-5", Result: 41}, tgt)
		assert.Equal(t, game.ModeFree, mode)
	})

	t.Run("result mismatch", func(t *testing.T) {
		playFormula, playResult, playDaily = "12+34-5", 40, false
		_, _, err := playTarget(cfg, true)
		assert.Error(t, err)

		// unset --result is not checked
		_, _, err = playTarget(cfg, false)
		assert.NoError(t, err)
	})

	t.Run("invalid formula", func(t *testing.T) {
		playFormula, playDaily = "12+", false
		_, _, err := playTarget(cfg, false)
		assert.Error(t, err)
	})

	t.Run("daily", func(t *testing.T) {
		playFormula, playDaily = "", true
		tgt, mode, err := playTarget(cfg, false)
		require.NoError(t, err)
		assert.Equal(t, game.ModeDaily, mode)
		_, err = challenge.Parse(tgt.Formula)
		assert.NoError(t, err)
	})

	t.Run("random", func(t *testing.T) {
		playFormula, playDaily = "", false
		tgt, mode, err := playTarget(cfg, false)
		require.NoError(t, err)
		assert.Equal(t, game.ModeFree, mode)
		assert.Len(t, tgt.Formula, challenge.DefaultLength)
	})
}

func TestPlayCommand_PipedInput(t *testing.T) {
	resetPlayFlags(t)
	var out bytes.Buffer
	rootCmd.SetArgs([]string{"play", "--formula", "12+34-5", "--rows", "2"})
	rootCmd.SetIn(strings.NewReader("20+21+0\n12+34-5\n"))
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "Enter a formula resulting in 41")
	assert.Contains(t, out.String(), "YIPPIE")
}
