package viewer

import (
	"context"
	"fmt"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// FetchStatus is the progress of one flyer data fetch
type FetchStatus string

// Fetch statuses
const (
	StatusPending FetchStatus = "pending"
	StatusLoaded  FetchStatus = "loaded"
	StatusFailed  FetchStatus = "failed"
)

// LoadState is the outcome of one flyer data fetch
type LoadState struct {
	Status FetchStatus `json:"status" yaml:"status"`
	Err    error       `json:"-" yaml:"-"`
}

// Message returns the error text, or "" when the fetch did not fail
func (s LoadState) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Status summarises a Load
type Status struct {
	Items     LoadState `json:"items" yaml:"items"`
	Pages     LoadState `json:"pages" yaml:"pages"`
	ItemCount int       `json:"item_count" yaml:"item_count"`
	PageCount int       `json:"page_count" yaml:"page_count"`
	Malformed int       `json:"malformed" yaml:"malformed"`
}

func (s Status) String() string {
	return fmt.Sprintf("items=%s(%d) pages=%s(%d) malformed=%d",
		s.Items.Status, s.ItemCount, s.Pages.Status, s.PageCount, s.Malformed)
}

// Load fetches items and pages concurrently. Each fetch is applied as soon
// as it completes; a failure of one leaves the other intact. A failed
// fetch keeps whatever the view already had, so a failed reload does not
// clear a flyer that loaded before. The returned error is the first fetch
// failure, wrapped as flyer.ErrLoadFailed.
func (v *View) Load(ctx context.Context) (Status, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return v.Status(), errors.New("view closed")
	}
	v.itemsState = LoadState{Status: StatusPending}
	v.pagesState = LoadState{Status: StatusPending}
	postal := v.opts.Session.PostalCode
	v.mu.Unlock()

	if r := v.opts.Renderer; r != nil {
		api := v.opts.API
		r.SetFlyer(v.opts.FlyerID, api.RootURL, api.Version, api.AccessToken)
	}

	ctx, stop := v.scoped(ctx)
	defer stop()

	v.log.Info().Str("postal_code", postal).Msg("Loading flyer")

	malformed := 0
	g := errgroup.Group{}

	g.Go(func() error {
		result, err := v.opts.Source.FetchItems(ctx, v.opts.FlyerID, postal)
		if err == nil {
			malformed = len(result.Malformed)
		}
		return v.applyItems(result, err)
	})

	g.Go(func() error {
		pages, err := v.opts.Source.FetchPages(ctx, v.opts.FlyerID, postal)
		return v.applyPages(pages, err)
	})

	err := g.Wait()

	status := v.Status()
	status.Malformed = malformed

	if err != nil {
		v.log.Warn().Err(err).Stringer("status", status).Msg("Flyer load incomplete")
		return status, err
	}

	v.log.Info().Stringer("status", status).Msg("Flyer loaded")
	return status, nil
}

func (v *View) applyItems(result *flyer.ItemsResult, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}

	if err != nil {
		err = wrapLoad(err, "items")
		v.itemsState = LoadState{Status: StatusFailed, Err: err}
		return err
	}

	v.itemsState = LoadState{Status: StatusLoaded}
	v.items = result.Items

	v.renderTapsLocked()
	v.renderHighlightsLocked()
	v.updateBadgesLocked()
	return nil
}

func (v *View) applyPages(pages []flyer.Page, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}

	if err != nil {
		err = wrapLoad(err, "pages")
		v.pagesState = LoadState{Status: StatusFailed, Err: err}
		return err
	}

	v.pagesState = LoadState{Status: StatusLoaded}
	v.pages = pages
	v.pagesReady = true
	return nil
}

// Status returns the current load state of the view
func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Status{
		Items:     v.itemsState,
		Pages:     v.pagesState,
		ItemCount: len(v.items),
		PageCount: len(v.pages),
	}
}

// wrapLoad classifies a fetch failure as LoadFailed while keeping its cause
func wrapLoad(err error, what string) error {
	if errors.Is(err, flyer.ErrLoadFailed) {
		return errors.Wrap(err, what)
	}
	return fmt.Errorf("%s: %w: %w", what, flyer.ErrLoadFailed, err)
}
