package viewer

import (
	"context"
	"time"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// RemoteClips lists the coupons clipped on the user's account
type RemoteClips interface {
	FetchClippedCoupons(ctx context.Context) ([]flyer.Coupon, error)
}

// LoyaltyStore lists the coupons clipped to the local loyalty card
type LoyaltyStore interface {
	GetClippedCoupons() ([]flyer.Coupon, error)
}

// RetryPolicy bounds retries of the remote clipped coupon fetch
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// ClippedLoader merges remote and local clipped coupons into one id set
type ClippedLoader struct {
	remote RemoteClips
	local  LoyaltyStore
	policy RetryPolicy
	log    zerolog.Logger
}

// NewClippedLoader creates a loader. Either source may be nil.
func NewClippedLoader(remote RemoteClips, local LoyaltyStore, policy RetryPolicy, log zerolog.Logger) *ClippedLoader {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &ClippedLoader{
		remote: remote,
		local:  local,
		policy: policy,
		log:    log.With().Str("component", "clipped").Logger(),
	}
}

// Load always returns a usable set. When the remote list cannot be fetched
// after all retries, the set holds only local clips and the error wraps
// flyer.ErrLoadFailed.
func (l *ClippedLoader) Load(ctx context.Context) (flyer.CouponIDSet, error) {
	var remote []flyer.Coupon
	var remoteErr error
	if l.remote != nil {
		remote, remoteErr = l.fetchRemote(ctx)
	}

	var local []flyer.Coupon
	if l.local != nil {
		var err error
		local, err = l.local.GetClippedCoupons()
		if err != nil {
			l.log.Warn().Err(err).Msg("Failed to read loyalty card clips")
		}
	}

	set := flyer.NewCouponIDSet(remote, local)
	if remoteErr != nil {
		return set, errors.Wrapf(flyer.ErrLoadFailed, "clipped coupons: %v", remoteErr)
	}
	return set, nil
}

func (l *ClippedLoader) fetchRemote(ctx context.Context) ([]flyer.Coupon, error) {
	delay := l.policy.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= l.policy.MaxAttempts; attempt++ {
		coupons, err := l.remote.FetchClippedCoupons(ctx)
		if err == nil {
			return coupons, nil
		}
		lastErr = err

		if !retryable(err) || attempt == l.policy.MaxAttempts {
			break
		}

		l.log.Debug().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying clipped coupon fetch")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, lastErr
}

// retryable is false for cancellation and client errors
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *flyer.StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= 500 || status.StatusCode == 429
	}
	return true
}
