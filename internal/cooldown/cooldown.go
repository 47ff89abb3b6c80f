// Package cooldown gates how quickly a single scanner may submit scans.
//
// The scanning surface re-arms two seconds after a terminal outcome; this
// gate reproduces that server-side so rapid-fire submissions of the same
// physical code from one operator are rejected even if the client misbehaves.
package cooldown

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/time/rate"
)

// Gate tracks one limiter per operator.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[uuid.UUID]*rate.Limiter
}

// New constructs a Gate with the given re-arm interval.
func New(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

// Allow reports whether the operator's scanner has re-armed. The first scan
// always passes; each pass starts a new cool-down window.
func (g *Gate) Allow(operatorID uuid.UUID) bool {
	g.mu.Lock()
	lim, ok := g.limiters[operatorID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[operatorID] = lim
	}
	g.mu.Unlock()
	return lim.Allow()
}
