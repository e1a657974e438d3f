package main

import (
	"ravebox/discover/internal/container"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !log.IsLevelEnabled(log.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}

		app, err := container.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Serve(cmd.Context())
	},
}
