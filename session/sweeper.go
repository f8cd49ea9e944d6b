package session

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Sweepable is anything that can evict entries idle longer than maxAge.
type Sweepable interface {
	Sweep(maxAge time.Duration) int
}

// Sweeper evicts idle state on a cron schedule. It runs on its own goroutine,
// independent of the request path; a failed sweep only logs and the next tick
// tries again.
type Sweeper struct {
	targets  []Sweepable
	schedule *cronexpr.Expression
	maxAge   time.Duration
	logger   *log.Logger
}

// NewSweeper parses the cron schedule (e.g. "0 * * * *" for hourly).
func NewSweeper(schedule string, maxAge time.Duration, logger *log.Logger, targets ...Sweepable) (*Sweeper, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[SWEEP] ", log.LstdFlags)
	}
	return &Sweeper{targets: targets, schedule: expr, maxAge: maxAge, logger: logger}, nil
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		for {
			next := s.schedule.Next(time.Now())
			if next.IsZero() {
				s.logger.Printf("schedule yields no next run, sweeper stopping")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
			}
			total := 0
			for _, t := range s.targets {
				total += t.Sweep(s.maxAge)
			}
			if total > 0 {
				s.logger.Printf("evicted %d idle entries", total)
			}
		}
	}()
}
