package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryOptions configures Retry.
type RetryOptions struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             *zap.Logger
}

// Retry repeats failed calls to src with exponential backoff. A StatusError
// that is not retryable stops at once.
func Retry(src Source, opts RetryOptions) Source {
	if opts.MaxTries == 0 {
		opts.MaxTries = 1
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 200 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = opts.InitialInterval * 10
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	return SourceFunc(func(ctx context.Context, symbol string) (float64, error) {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = opts.InitialInterval
		policy.MaxInterval = opts.MaxInterval

		notify := func(err error, d time.Duration) {
			log.Debug("retrying price fetch",
				zap.String("symbol", symbol),
				zap.Duration("backoff", d),
				zap.Error(err))
		}

		operation := func() (float64, error) {
			p, err := src.Price(ctx, symbol)
			var se *StatusError
			if errors.As(err, &se) && !se.Retryable() {
				return 0, backoff.Permanent(err)
			}
			return p, err
		}

		p, err := backoff.Retry(ctx, operation,
			backoff.WithBackOff(policy),
			backoff.WithMaxTries(opts.MaxTries),
			backoff.WithNotify(notify))
		if err != nil {
			return 0, unavailable(symbol, err)
		}
		return p, nil
	})
}
