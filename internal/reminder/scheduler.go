// Package reminder drives the once-daily practice reminder.
//
// The scheduler is a two-state machine. Idle: no timer. Armed: a goroutine
// ticks once a minute and compares the wall clock against the configured
// reminder time. The date guard in settings, not the minute match, is what
// makes firing idempotent: a tick that lands on the right minute on a day
// the reminder already fired does nothing, and a day whose exact minute was
// never observed (system sleep) is skipped, not retried.
package reminder

import (
	"context"
	"sync"
	"time"

	"practicelog/internal/core"
	"practicelog/internal/log"
	"practicelog/internal/notify"
	"practicelog/internal/store"
)

const (
	// DefaultInterval is the tick cadence while armed.
	DefaultInterval = time.Minute

	reminderTitle = "Time to practice"
	reminderBody  = "How about booking some music practice today?"
)

type Scheduler struct {
	store    *store.Store
	notifier notify.Notifier
	log      *log.Logger
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex // guards arm/disarm transitions
	cancel context.CancelFunc
	done   chan struct{}

	tickMu sync.Mutex // serializes ticks against each other
}

// New builds an idle scheduler. Call Refresh to arm it from current
// settings, and again after every settings change.
func New(st *store.Store, notifier notify.Notifier, logger *log.Logger) *Scheduler {
	return &Scheduler{
		store:    st,
		notifier: notifier,
		log:      logger.WithComponent(log.ComponentReminder),
		interval: DefaultInterval,
		now:      time.Now,
	}
}

// SetInterval overrides the tick cadence. Only meaningful before arming.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.interval = d
}

// Refresh recomputes the armed/idle state from settings. Any live timer is
// torn down first, so at most one timer runs at a time.
func (s *Scheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	set := s.store.Settings()
	if !set.ReminderEnabled || !core.IsTimeOfDay(set.ReminderTime) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.log.Info("Reminder armed", "time", set.ReminderTime)
}

// Stop disarms the scheduler, synchronously: when it returns no further
// tick can fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.log.Info("Reminder disarmed")
}

// Armed reports whether a timer is live.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick runs one reminder check for the given wall-clock instant and reports
// whether the reminder fired. Ticks are serialized: a tick observed while a
// previous tick's settings write is pending waits for it.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	set := s.store.Settings()
	if !set.ReminderEnabled || set.ReminderTime == "" {
		return false
	}
	if core.MinuteKey(now) != set.ReminderTime {
		return false
	}

	today := core.DateKey(now)
	if set.LastReminderDate == today {
		return false
	}

	if err := s.notifier.Deliver(ctx, reminderTitle, reminderBody); err != nil {
		// The date guard still advances: a broken delivery channel must not
		// retrigger every minute for the rest of the day.
		s.log.ErrorContext(ctx, "Reminder delivery failed", log.FieldError, err)
	}

	s.store.UpdateSettings(ctx, store.SettingsPatch{LastReminderDate: &today})
	s.log.InfoContext(ctx, "Reminder fired", log.FieldDate, today, "time", set.ReminderTime)
	return true
}
