package handler

import (
	"sync"

	"golang.org/x/time/rate"
)

// userLimiter keeps one token bucket per user.
type userLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[int64]*rate.Limiter),
	}
}

func (u *userLimiter) Allow(userID int64) bool {
	u.mu.Lock()
	l, ok := u.limiters[userID]
	if !ok {
		l = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = l
	}
	u.mu.Unlock()

	return l.Allow()
}

// Prune drops the buckets of users that have been idle long enough for them to refill. A fresh
// bucket behaves the same, so nothing is lost. Returns the number of buckets dropped.
func (u *userLimiter) Prune() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	removed := 0
	for userID, l := range u.limiters {
		if l.Tokens() >= float64(u.burst) {
			delete(u.limiters, userID)
			removed++
		}
	}

	return removed
}

func (u *userLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.limiters)
}
