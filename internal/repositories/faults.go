package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"friendship-service/internal/models"
)

const (
	pendingPairIndex = "friend_requests_pending_pair_idx"
	friendshipsPK    = "friendships_pkey"
)

var domainErrors = []error{
	models.ErrNotFound,
	models.ErrAlreadyFriends,
	models.ErrRequestAlreadyPending,
	models.ErrUnauthorized,
	models.ErrAlreadyResolved,
	models.ErrInvalidTransition,
}

// isTransient reports faults worth one more attempt on an idempotent read.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || code == "40001" || code == "40P01" || code == "57P01"
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		msg := redisErr.Error()
		return strings.HasPrefix(msg, "LOADING") || strings.HasPrefix(msg, "TRYAGAIN") ||
			strings.HasPrefix(msg, "MASTERDOWN") || strings.HasPrefix(msg, "READONLY")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryRead runs op and retries it once when the first failure is transient.
func retryRead[T any](ctx context.Context, op func() (T, error)) (T, error) {
	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(50*time.Millisecond)),
		backoff.WithMaxTries(2),
	)
	if err != nil && isTransient(err) {
		return v, fmt.Errorf("%w: %v", models.ErrTransient, err)
	}
	return v, err
}

// writeFault maps the outcome of a write. Domain errors and cancellation pass
// through, a lost uniqueness race becomes the matching domain error, and
// everything else is reported as ErrTransient.
func writeFault(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case pendingPairIndex:
			return models.ErrRequestAlreadyPending
		case friendshipsPK:
			return models.ErrAlreadyFriends
		}
	}
	return fmt.Errorf("%w: %v", models.ErrTransient, err)
}
