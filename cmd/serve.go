// cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gewnthar/datasetdoc/database"
	"github.com/gewnthar/datasetdoc/handlers"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve persisted documentation runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := database.Open(ctx, a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           handlers.NewHandler(store, a.log).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			a.log.Info().Str("addr", srv.Addr).Msg("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.log.Info().Msg("server stopped")
			return nil
		},
	}
}
