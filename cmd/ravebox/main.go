package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ravebox/discover/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "ravebox",
	Short:         "Ravebox discover indexer, API and tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		return cfg.Log.Apply()
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd, indexCmd, rateCmd, listsCmd, reviewCmd, followingCmd, profileCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
