/*
main.go - Command-line entry point

COMMANDS:
  serve      HTTP API (graceful shutdown on SIGINT/SIGTERM)
  resources  Roster of a contract on a day
  snapshot   Roster of a contract for a month, with billing shape
  billing    Billing amount of a contract for a month
  timeline   Month-by-month roster and billing
  seed       Load a demo scenario into the configured store
  migrate    Apply the database schema

CONFIGURATION:
  config.yaml in the working directory plus SKILLBRIDGE_* environment
  variables. See config/config.go for keys and defaults.

EXAMPLES:
  # Serve from a local SQLite file
  skillbridge serve --port 3000

  # Load a scenario into Postgres and query it
  SKILLBRIDGE_STORE_DRIVER=postgres \
  SKILLBRIDGE_STORE_DATABASE_URL=postgres://localhost/skillbridge \
    skillbridge seed rating-change
  skillbridge snapshot 1 --month 2024-03
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "skillbridge",
	Short: "Contract roster and billing reconstruction",
	Long:  "Rebuilds a contract's engineer roster and monthly billing from its signed baseline and the events of its approved change requests.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
