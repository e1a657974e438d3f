package main

import (
	"context"
	"errors"

	"ravebox/discover/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var indexOnce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index discover lists for every category and store them",
	Long: `Fetches the discover groups of every top-level category, queues one task
per flattened review list and runs the queue workers that store them.
With --once the command exits after queueing and starts no workers.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log.Info("Starting Ravebox indexer...")

		app, err := container.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		err = app.Run(cmd.Context(), indexOnce)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		log.Info("Indexer finished")
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexOnce, "once", false, "queue the lists and exit without running workers")
}
