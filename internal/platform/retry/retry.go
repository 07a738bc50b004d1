package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultInitialInterval = 50 * time.Millisecond
	DefaultMaxInterval     = 500 * time.Millisecond
)

// Policy define un reintento acotado con backoff exponencial.
// MaxRetries=1 => a lo sumo 2 intentos en total.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func Once() Policy {
	return Policy{
		MaxRetries:      1,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
	}
}

// None no reintenta (tests y CLI).
func None() Policy {
	return Policy{}
}

// Do ejecuta op. Si isPermanent(err) es true, corta sin reintentar.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), isPermanent func(error) bool) (T, error) {
	var out T

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	var bo backoff.BackOff = backoff.WithMaxRetries(b, p.MaxRetries)
	bo = backoff.WithContext(bo, ctx)

	err := backoff.Retry(func() error {
		v, err := op(ctx)
		if err != nil {
			if isPermanent != nil && isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = v
		return nil
	}, bo)

	return out, err
}
