// internal/scheduler/scheduler.go
//
// Background jobs:
//   - Roll the daily calendar over at 00:00 UTC so "today's puzzle" changes
//     for every language at midnight.
//   - Sweep per-chat flood limiters that have been idle for LimiterIdle.

package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/daily"
)

// RolloverCron fires at midnight; the scheduler runs in UTC.
const RolloverCron = "0 0 * * *"

// Limiter sweep cadence and the idle age after which a chat's limiter is dropped.
const (
	SweepEvery  = 10 * time.Minute
	LimiterIdle = time.Hour
)

// Pruner drops idle per-chat state. *bot.Dispatcher implements it.
type Pruner interface {
	PruneLimiters(idle time.Duration) int
}

// Scheduler wraps a running gocron scheduler.
type Scheduler struct {
	s gocron.Scheduler
}

// Start schedules the calendar rollover and the limiter sweep, then starts
// the scheduler. A nil pruner skips the sweep.
func Start(cal *daily.Calendar, pruner Pruner) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob(RolloverCron, false),
		gocron.NewTask(func() { rollover(cal) }),
		gocron.WithName("calendar-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	if pruner != nil {
		_, err = s.NewJob(
			gocron.DurationJob(SweepEvery),
			gocron.NewTask(func() { sweep(pruner) }),
			gocron.WithName("limiter-sweep"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, err
		}
	}

	s.Start()
	log.Info().Str("cron", RolloverCron).Msg("scheduler started")
	return &Scheduler{s: s}, nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// rollover refreshes the calendar and logs the new day's puzzles.
func rollover(cal *daily.Calendar) bool {
	changed := cal.Refresh()
	day, ids := cal.Snapshot()

	ev := log.Info().Str("date", day).Bool("changed", changed)
	for lang, id := range ids {
		ev = ev.Int(string(lang), id)
	}
	ev.Msg("daily puzzles")
	return changed
}

func sweep(p Pruner) int {
	n := p.PruneLimiters(LimiterIdle)
	if n > 0 {
		log.Debug().Int("removed", n).Msg("idle limiters swept")
	}
	return n
}
