// Package cli provides command-line interface commands for flyerkit.
package cli

import (
	"fmt"
	"strconv"

	"github.com/liminalpurple/flyerkit/internal/config"
	"github.com/liminalpurple/flyerkit/internal/flyerapi"
	"github.com/liminalpurple/flyerkit/internal/logging"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/liminalpurple/flyerkit/internal/storage"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/rs/zerolog"
)

// app is the configured set of services a command works with
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *flyerapi.Client
	loyalty *storage.Loyalty
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.Setup(cfg.Log)

	client, err := flyerapi.NewClient(cfg.API.RootURL, cfg.API.Version, cfg.API.AccessToken, cfg.API.Timeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create flyer API client: %w", err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		loyalty: storage.NewLoyalty(cfg.Storage.DataDir),
	}, nil
}

func (a *app) session(postalCode string) *session.Session {
	if postalCode == "" {
		postalCode = a.cfg.Session.PostalCode
	}
	return session.New(postalCode)
}

func (a *app) clippedLoader() *viewer.ClippedLoader {
	policy := viewer.RetryPolicy{
		MaxAttempts: a.cfg.Clipped.MaxAttempts,
		BaseDelay:   a.cfg.Clipped.BaseDelay,
	}
	return viewer.NewClippedLoader(a.client, a.loyalty, policy, a.log)
}

// newView creates an unopened view drawing to a headless renderer
func (a *app) newView(flyerID int64, s *session.Session, nav viewer.Navigator) (*viewer.View, *viewer.Headless) {
	renderer := viewer.NewHeadless(viewer.DefaultFrame, viewer.DefaultFrame)
	view := viewer.New(viewer.Options{
		FlyerID: flyerID,
		Session: s,
		API: viewer.APIInfo{
			RootURL:     a.cfg.API.RootURL,
			Version:     a.cfg.API.Version,
			AccessToken: a.cfg.API.AccessToken,
		},
		Source:    a.client,
		Clipped:   a.clippedLoader(),
		Renderer:  renderer,
		Navigator: nav,
		Log:       a.log.With().Str("session_id", s.ID.String()).Logger(),
	})
	return view, renderer
}

// flyerID returns the id given as the first argument, or the configured
// default when there is none
func (a *app) flyerID(args []string) (int64, error) {
	if len(args) == 0 {
		return a.cfg.Flyer.DefaultFlyerID, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flyer id %q: %w", args[0], err)
	}
	return id, nil
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", s, err)
	}
	return id, nil
}
