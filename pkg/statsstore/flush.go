// Package statsstore periodically moves press counts from the responder into a
// persistent store. The backends live in the subpackages.
package statsstore

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"fmt"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"time"
)

const DefaultFlushInterval = time.Minute

type Flusher struct {
	scheduler gocron.Scheduler
	tally     *ergolayer.Tally
	store     ergolayer.StatsStore
	log       *zap.SugaredLogger
}

// NewFlusher schedules a flush of tally into store every interval. Nothing runs
// until Start.
func NewFlusher(
	tally *ergolayer.Tally,
	store ergolayer.StatsStore,
	interval time.Duration,
	clock clockwork.Clock,
	log *zap.SugaredLogger,
) (*Flusher, error) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	f := &Flusher{
		scheduler: scheduler,
		tally:     tally,
		store:     store,
		log:       log,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(f.flush),
		gocron.WithName("flush-presses"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule flush: %w", err)
	}

	return f, nil
}

func (f *Flusher) Start() {
	f.scheduler.Start()
}

// Stop cancels the schedule and flushes whatever is still pending.
func (f *Flusher) Stop() error {
	if err := f.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	if err := f.tally.Flush(f.store); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}

func (f *Flusher) flush() {
	if err := f.tally.Flush(f.store); err != nil {
		f.log.Warnw("failed to flush press counts, will retry", "error", err)
		return
	}
	f.log.Debug("flushed press counts")
}
