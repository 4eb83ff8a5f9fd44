package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks over fixed one-second windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// KeyForAppKey builds the limiter key for an application key.
func KeyForAppKey(appKeyID uint64) string {
	if appKeyID == 0 {
		return ""
	}
	return fmt.Sprintf("ak:%d", appKeyID)
}
