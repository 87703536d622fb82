package auth

import (
	"context"
	"errors"
	"log"
	"net"
	"time"
)

const (
	DefaultSweepInterval = time.Hour

	sweepAttempts = 2
	retryBackoff  = 3 * time.Second
)

// Sweeper prunes expired blacklist rows on a fixed interval. A missed sweep
// is not fatal: blacklist lookups already treat expired rows as inert, the
// table just stays larger until the next tick.
type Sweeper struct {
	tokens   RevokedTokenRepositoryInterface
	interval time.Duration
	backoff  time.Duration

	now func() time.Time
}

func NewSweeper(tokens RevokedTokenRepositoryInterface, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		tokens:   tokens,
		interval: interval,
		backoff:  retryBackoff,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run blocks until ctx is done. Sweeps are driven purely by the ticker,
// never by request traffic.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes rows whose expiry has passed. A timeout-class failure is
// retried once after a short backoff; anything else waits for the next tick.
func (s *Sweeper) Sweep(ctx context.Context) {
	for attempt := 1; attempt <= sweepAttempts; attempt++ {
		deleted, err := s.tokens.DeleteExpired(ctx, s.now())
		if err == nil {
			if deleted > 0 {
				log.Printf("auth: blacklist cleanup removed %d expired entries", deleted)
			}
			return
		}
		if isTimeout(err) && attempt < sweepAttempts {
			log.Printf("auth: blacklist cleanup timed out (attempt %d/%d), retrying", attempt, sweepAttempts)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.backoff):
			}
			continue
		}
		log.Printf("auth: blacklist cleanup failed: %v", err)
		return
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
