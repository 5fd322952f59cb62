package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle user's limiter is kept.
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter hands out one token bucket per user.
type userLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// newUserLimiter allows perMinute requests per user per minute, with bursts
// of the same size. Zero returns nil, which allows everything.
func newUserLimiter(perMinute uint) *userLimiter {
	if perMinute == 0 {
		return nil
	}
	return &userLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    int(perMinute),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *userLimiter) allow(key string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
