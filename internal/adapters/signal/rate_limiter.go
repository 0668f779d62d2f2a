package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Call/internal/domain"
	"golang.org/x/time/rate"
)

// limiters that refilled completely carry no state worth keeping
const pruneThreshold = 1024

// CallRateLimiter caps call.request per identity with a token bucket.
type CallRateLimiter struct {
	mu       sync.Mutex
	limiters map[domain.UID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewCallRateLimiter allows perMinute requests per identity, refilled evenly.
// A non-positive perMinute disables limiting.
func NewCallRateLimiter(perMinute int) *CallRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &CallRateLimiter{
		limiters: make(map[domain.UID]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (rl *CallRateLimiter) Allow(uid domain.UID) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[uid]
	if !ok {
		if len(rl.limiters) >= pruneThreshold {
			rl.prune()
		}
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[uid] = lim
	}
	return lim.Allow()
}

func (rl *CallRateLimiter) prune() {
	for uid, lim := range rl.limiters {
		if lim.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, uid)
		}
	}
}
