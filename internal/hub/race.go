// internal/hub/race.go
package hub

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNotStarted is returned when a result is requested before any start.
var ErrNotStarted = errors.New("race not started")

// RaceClock holds the instant the current race started. Only one race is
// tracked; a new start overwrites the previous one.
type RaceClock struct {
	clock clockwork.Clock

	mu        sync.RWMutex
	startedAt time.Time
	started   bool
}

// NewRaceClock returns a clock with no race started.
func NewRaceClock(clock clockwork.Clock) *RaceClock {
	return &RaceClock{clock: clock}
}

// Start records now as the race start and returns it.
func (r *RaceClock) Start() time.Time {
	now := r.clock.Now()

	r.mu.Lock()
	r.startedAt = now
	r.started = true
	r.mu.Unlock()

	return now
}

func (r *RaceClock) IsStarted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.started
}

// StartedAt returns the start instant and whether one is recorded.
func (r *RaceClock) StartedAt() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.startedAt, r.started
}

// ElapsedSince returns now minus the start instant.
func (r *RaceClock) ElapsedSince(now time.Time) (time.Duration, error) {
	startedAt, ok := r.StartedAt()
	if !ok {
		return 0, ErrNotStarted
	}
	return now.Sub(startedAt), nil
}

// RoundSeconds converts d to seconds rounded to three decimals.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)) / 1000
}
