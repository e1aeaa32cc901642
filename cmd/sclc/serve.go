package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/scl/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC front-end service",
		Long: `Serve the scl.v1.Frontend service (Tokenize and Parse) and the standard
gRPC health service until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Addr:           addr,
				MaxRecvMsgSize: c.cfg.Server.MaxRecvMsgSize,
				MaxDepth:       c.cfg.Parser.MaxDepth,
				Logger:         c.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			c.logger.Info("shutting down", "timeout", c.cfg.Server.ShutdownTimeout.Duration)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout.Duration)
			defer cancel()
			srv.Shutdown(shutdownCtx)
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
