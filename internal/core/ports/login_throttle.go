package ports

import "context"

// LoginThrottle limits repeated failed logins per client key.
type LoginThrottle interface {
	Allowed(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
