package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/nerdle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("nerdle exited")
		os.Exit(1)
	}
}
