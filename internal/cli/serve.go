package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [--listen :8000]",
		Short: "Polls the rate page on schedule and serves readings, refresh, metrics and health endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd, v)
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger, deps)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			coord := app.Coordinator

			unsubscribeBoard := coord.Subscribe(app.Board)
			defer unsubscribeBoard()
			unsubscribeGauges := coord.Subscribe(app.Gauges)
			defer unsubscribeGauges()

			if err := coord.Start(ctx); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           app.Handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("http server listening", "addr", cfg.ListenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("http server shutdown", "error", err)
				}
				return coord.Stop(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().String("listen", ":8000", "Address for the HTTP server")
	_ = v.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))

	return cmd
}
