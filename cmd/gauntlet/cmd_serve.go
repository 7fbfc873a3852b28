package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/gauntlet/internal/server"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /validate and GET /health over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := server.SettingsFromConfig(c.cfg)
			if cmd.Flags().Changed("host") {
				settings.Host = host
			}
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			srv := server.New(settings, c.engine,
				server.WithLogger(c.logger),
				server.WithHistory(c.history),
			)
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "listening on %s\n", srv.BaseURL())
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				c.logger.Warn("shutdown", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", server.DefaultHost, "bind host (default: server.host)")
	cmd.Flags().IntVar(&port, "port", server.DefaultPort, "bind port (default: server.port)")
	return cmd
}
