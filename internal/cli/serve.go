package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/liminalpurple/flyerkit/internal/httpapi"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve flyer views over HTTP",
		Long: `Start an HTTP server that opens flyers and applies gestures to them.

Endpoints:
  POST   /sessions                         submit a postal code
  POST   /views                            open a flyer (optionally with session_id)
  GET    /views/{id}                       load state and overlays
  DELETE /views/{id}                       close a flyer
  POST   /views/{id}/appear                reset discount, refresh clips
  PUT    /views/{id}/discount              set the discount threshold
  POST   /views/{id}/double-tap            zoom around a point
  POST   /views/{id}/items/{item}/tap      single-tap an item
  POST   /views/{id}/items/{item}/press    long-press an item
  GET    /views/{id}/preview.png           render the overlays`,
		Example: `  flyerkit serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			factory := func(flyerID int64, s *session.Session) (*viewer.View, *viewer.Headless) {
				return a.newView(flyerID, s, nil)
			}
			handler := httpapi.NewHandler(factory, a.cfg.Session.PostalCode, a.cfg.Flyer.DefaultFlyerID, a.log)
			defer handler.CloseAll()

			server := &http.Server{
				Addr:         addr,
				Handler:      httpapi.NewRouter(handler, a.log),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: a.cfg.API.Timeout + 15*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Msg("Serving flyer views")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				a.log.Info().Msg("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.log.Error().Err(err).Msg("Server shutdown failed")
					return err
				}
				a.log.Info().Msg("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")

	return cmd
}
