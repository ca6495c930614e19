package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds connection attempts against the store.
type RetryPolicy struct {
	MaxRetries int
	MaxDelay   time.Duration
	// Notify is called before each retry with the failure and the wait.
	Notify func(err error, wait time.Duration)
}

// Connect runs connect until it succeeds, the policy is exhausted or ctx
// is done. Only store connection establishment goes through here.
func Connect(ctx context.Context, policy RetryPolicy, connect func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	if policy.MaxDelay > 0 {
		b.MaxInterval = policy.MaxDelay
		if b.InitialInterval > policy.MaxDelay {
			b.InitialInterval = policy.MaxDelay
		}
	}
	b.MaxElapsedTime = 0

	var bo backoff.BackOff = b
	if policy.MaxRetries >= 0 {
		bo = backoff.WithMaxRetries(bo, uint64(policy.MaxRetries))
	}
	bo = backoff.WithContext(bo, ctx)

	return backoff.RetryNotify(func() error {
		return connect(ctx)
	}, bo, policy.Notify)
}
