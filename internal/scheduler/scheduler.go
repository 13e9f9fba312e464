package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"reversalbot/internal/metrics"

	"github.com/rs/zerolog"
)

type CycleFunc func(ctx context.Context) error

// Scheduler runs at most one cycle at a time. A slot that arrives while the
// previous cycle is still running is dropped.
type Scheduler struct {
	schedule Schedule
	cycle    CycleFunc
	log      zerolog.Logger
	now      func() time.Time
	running  atomic.Bool
	wg       sync.WaitGroup
}

func New(schedule Schedule, cycle CycleFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		cycle:    cycle,
		log:      logger.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Tick runs one cycle unless one is already running. It reports whether the
// cycle ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		metrics.TicksDroppedTotal.Inc()
		s.log.Warn().Msg("cycle still running, tick dropped")
		return false
	}
	defer s.running.Store(false)

	if err := s.cycle(ctx); err != nil {
		s.log.Error().Err(err).Msg("cycle failed")
	}
	return true
}

// Run blocks until ctx is cancelled, firing Tick at each scheduled slot. It
// waits for an in-flight cycle before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.wg.Wait()
	for {
		now := s.now()
		next := s.schedule.Next(now)
		s.log.Info().Time("next_run", next).Str("days", s.schedule.Days.String()).Str("at", s.schedule.At.String()).Msg("waiting for next slot")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.Tick(ctx)
			}()
		}
	}
}
