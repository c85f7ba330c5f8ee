// Package services holds the request-independent rules for tasks and users:
// presence checks, defaults and duplicate prevention.
package services

import (
	"context"
	"errors"
	"time"
)

var ErrMissingField = errors.New("missing required field")

// withOpTimeout bounds a single store call. A non-positive timeout leaves
// only the caller's deadline in effect.
func withOpTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
