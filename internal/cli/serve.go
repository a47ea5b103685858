package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/nerdle/internal/challenge"
	"github.com/robalobadob/nerdle/internal/config"
	"github.com/robalobadob/nerdle/internal/db"
	"github.com/robalobadob/nerdle/internal/httpserver"
	"github.com/robalobadob/nerdle/internal/store"
)

var (
	servePort string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the game over HTTP: JSON endpoints for free and daily games,
a websocket stream per game, accounts and stats backed by SQLite.

Configuration comes from the environment (and an optional .env file);
flags override it.

Example:
  nerdle serve --port 8080 --db ./data/nerdle.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (overrides DB_PATH)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveDB != "" {
		cfg.DBPath = serveDB
	}
	setupLogging(cfg.LogLevel, false)

	sqldb, err := db.OpenMigrated(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqldb.Close()

	pool, err := challenge.Load(cfg.ChallengesFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, store.NewMemoryStore(), sqldb, pool)
	log.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Int("challenges", pool.Len()).Msg("starting nerdle server")
	return srv.Start(ctx, ":"+cfg.Port)
}
