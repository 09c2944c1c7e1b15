// Package visitor answers "is this the first visit from this IP to this
// link within the last 24 hours". The answer feeds the unique-visitor
// counter and is best-effort: it is not linearizable with concurrent
// clicks from the same address.
package visitor

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is the lookback period for unique-visitor determination.
const Window = 24 * time.Hour

// Tracker reports whether a (link, IP) pair is new within Window.
type Tracker interface {
	FirstVisit(ctx context.Context, linkID int64, ip string) (bool, error)
}

// RedisTracker marks visits with a SET NX key expiring after Window.
// The first caller to set the key wins the "new visitor" determination.
type RedisTracker struct {
	client *redis.Client
}

func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{
		client: client,
	}
}

func (t *RedisTracker) FirstVisit(ctx context.Context, linkID int64, ip string) (bool, error) {
	const op = "visitor.RedisTracker.FirstVisit"

	key := fmt.Sprintf("visit:%d:%s", linkID, ip)

	first, err := t.client.SetNX(ctx, key, 1, Window).Result()
	if err != nil {
		return false, fmt.Errorf("%s: failed to mark visit: %w", op, err)
	}

	return first, nil
}

// RecentClickChecker is the slice of the click store the lookback
// tracker needs.
type RecentClickChecker interface {
	HasRecentClick(ctx context.Context, linkID int64, ip string, since time.Time) (bool, error)
}

// LookbackTracker scans the click store for an earlier event from the
// same IP. Used when redis is not configured. The check-then-insert pair
// can race with concurrent clicks; drift is tolerated.
type LookbackTracker struct {
	checker RecentClickChecker
}

func NewLookbackTracker(checker RecentClickChecker) *LookbackTracker {
	return &LookbackTracker{
		checker: checker,
	}
}

func (t *LookbackTracker) FirstVisit(ctx context.Context, linkID int64, ip string) (bool, error) {
	const op = "visitor.LookbackTracker.FirstVisit"

	seen, err := t.checker.HasRecentClick(ctx, linkID, ip, time.Now().Add(-Window))
	if err != nil {
		return false, fmt.Errorf("%s: failed to scan recent clicks: %w", op, err)
	}

	return !seen, nil
}
