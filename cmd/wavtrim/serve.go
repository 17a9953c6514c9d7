package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/berlandbor/wavtrim/codec"
	"github.com/berlandbor/wavtrim/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API:

  GET  /health
  POST /api/v1/info       multipart "file"
  POST /api/v1/waveform   multipart "file", optional start, end, width, full
  POST /api/v1/export     multipart "file", optional start, end, rate, gain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}

			if cmd.Flags().Changed("port") {
				if port < 0 || port > 65535 {
					return fmt.Errorf("invalid server port: %d", port)
				}

				cfg.Server.Port = port
			}

			if cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := server.NewServer(&cfg, codec.Auto{})

			serverErr := make(chan error, 1)

			go func() {
				serverErr <- srv.Start()
			}()

			select {
			case err := <-serverErr:
				return err
			case <-cmd.Context().Done():
				log.Printf("shutting down server")
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			return <-serverErr
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "server host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (overrides config)")

	return cmd
}
