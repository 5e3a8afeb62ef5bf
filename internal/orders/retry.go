package orders

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/sethvargo/go-retry"
)

// RetryOnConflict runs fn again, up to retries extra times, while it fails with
// a concurrent modification. Any other outcome is returned as is. Each attempt
// must start its own transaction so it sees the winning write.
func RetryOnConflict(ctx context.Context, retries uint64, backoff time.Duration, fn func(ctx context.Context) error) error {
	if retries == 0 {
		return fn(ctx)
	}
	if backoff <= 0 {
		backoff = time.Millisecond
	}

	b := retry.NewExponential(backoff)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithMaxRetries(retries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if pkgerrors.IsCode(err, pkgerrors.CodeConcurrentUpdate) {
			return retry.RetryableError(err)
		}
		return err
	})
}
