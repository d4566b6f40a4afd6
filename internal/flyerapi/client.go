// Package flyerapi provides a client for the FlyerKit REST API.
// It fetches flyer items, flyer pages and the user's clipped coupons.
package flyerapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client talks to one FlyerKit deployment
type Client struct {
	RootURL     string
	Version     string
	AccessToken string
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewClient creates a new flyer API client
func NewClient(rootURL, version, accessToken string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if _, err := url.Parse(rootURL); err != nil {
		return nil, errors.Wrap(err, "invalid root URL")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		RootURL:     rootURL,
		Version:     version,
		AccessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log.With().Str("component", "flyerapi").Logger(),
	}, nil
}

// ItemsURL builds the products endpoint URL for a flyer
func (c *Client) ItemsURL(flyerID int64, postalCode string) (string, error) {
	return c.endpoint([]string{"publication", strconv.FormatInt(flyerID, 10), "products"}, url.Values{
		"display_type": {flyer.DisplayTypes},
		"postal_code":  {postalCode},
	})
}

// PagesURL builds the pages endpoint URL for a flyer
func (c *Client) PagesURL(flyerID int64, postalCode string) (string, error) {
	return c.endpoint([]string{"publication", strconv.FormatInt(flyerID, 10), "pages"}, url.Values{
		"postal_code": {postalCode},
	})
}

// ClippedCouponsURL builds the endpoint URL for the user's clipped coupons
func (c *Client) ClippedCouponsURL() (string, error) {
	return c.endpoint([]string{"user", "clipped_coupons"}, url.Values{})
}

// FetchItems fetches and parses the items of a flyer
func (c *Client) FetchItems(ctx context.Context, flyerID int64, postalCode string) (*flyer.ItemsResult, error) {
	u, err := c.ItemsURL(flyerID, postalCode)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "products", u)
	if err != nil {
		return nil, err
	}

	result, err := flyer.ParseItems(body)
	if err != nil {
		return nil, errors.Wrapf(err, "flyer %d items", flyerID)
	}

	for _, m := range result.Malformed {
		c.log.Warn().Err(m).Int64("flyer_id", flyerID).Msg("Skipping malformed flyer item")
	}

	return result, nil
}

// FetchPages fetches and parses the pages of a flyer
func (c *Client) FetchPages(ctx context.Context, flyerID int64, postalCode string) ([]flyer.Page, error) {
	u, err := c.PagesURL(flyerID, postalCode)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "pages", u)
	if err != nil {
		return nil, err
	}

	pages, err := flyer.ParsePages(body)
	if err != nil {
		return nil, errors.Wrapf(err, "flyer %d pages", flyerID)
	}

	return pages, nil
}

// FetchClippedCoupons fetches the coupons the current user has clipped
func (c *Client) FetchClippedCoupons(ctx context.Context) ([]flyer.Coupon, error) {
	u, err := c.ClippedCouponsURL()
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "clipped_coupons", u)
	if err != nil {
		return nil, err
	}

	coupons, err := flyer.ParseCoupons(body)
	if err != nil {
		return nil, errors.Wrap(err, "clipped coupons")
	}

	return coupons, nil
}

// endpoint joins path segments under {root}/flyerkit/{version} and adds the access token
func (c *Client) endpoint(segments []string, query url.Values) (string, error) {
	base, err := url.Parse(c.RootURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid root URL")
	}

	u := base.JoinPath(append([]string{"flyerkit", c.Version}, segments...)...)
	query.Set("access_token", c.AccessToken)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// get performs a GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, name, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s request", name)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", name)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Flyer API response")

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &flyer.StatusError{StatusCode: resp.StatusCode, Endpoint: name}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s response", name)
	}

	return body, nil
}
