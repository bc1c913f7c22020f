package announce

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"taskvoice/internal/model"
	"taskvoice/internal/speech"
)

// Daily trigger times, local.
const (
	MorningTrigger = "07:00"
	EveningTrigger = "21:00"
)

// Config controls which announcements fire and how they sound.
type Config struct {
	Enabled        bool
	MorningEnabled bool
	EveningEnabled bool
	Voice          speech.Voice
}

// TaskSource supplies the current task set. The scheduler reads a fresh copy
// per evaluation and never mutates it.
type TaskSource interface {
	ListOpen(ctx context.Context) ([]model.Task, error)
}

// Notifier receives user-visible notices that are not spoken, such as
// playback failures.
type Notifier interface {
	Notify(text string)
}

// Scheduler owns the daily triggers and the due-now ticker as cancellable
// jobs with an explicit Start/Stop lifecycle. Stop tears all of them down
// together, including any plan that is mid-playback.
type Scheduler struct {
	cfg      Config
	source   TaskSource
	speaker  speech.Speaker
	notifier Notifier
	clock    Clock
	loc      *time.Location

	mu           sync.Mutex
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	firedMorning string // date (2006-01-02) the morning batch last fired
	firedEvening string
	nudged       map[uint]time.Time // task ID -> due date already nudged
}

// Option tweaks Scheduler construction.
type Option func(*Scheduler)

// WithClock injects a virtual clock for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocation sets the timezone the daily triggers are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

func NewScheduler(cfg Config, source TaskSource, speaker speech.Speaker, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		source:   source,
		speaker:  speaker,
		notifier: notifier,
		clock:    SystemClock,
		loc:      time.Local,
		nudged:   make(map[uint]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the enabled daily triggers and the due-now ticker and
// begins running them. Starting a running or disabled scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}
	if !s.cfg.Enabled {
		log.Println("[info] announcements disabled, scheduler not started")
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc), cron.WithSeconds())

	if s.cfg.MorningEnabled {
		spec, err := dailySpec(MorningTrigger)
		if err != nil {
			return err
		}
		if _, err := c.AddFunc(spec, s.fireMorning); err != nil {
			return fmt.Errorf("schedule morning trigger: %w", err)
		}
	}
	if s.cfg.EveningEnabled {
		spec, err := dailySpec(EveningTrigger)
		if err != nil {
			return err
		}
		if _, err := c.AddFunc(spec, s.fireEvening); err != nil {
			return fmt.Errorf("schedule evening trigger: %w", err)
		}
	}

	every := fmt.Sprintf("@every %ds", int(DueNowInterval.Seconds()))
	if _, err := c.AddFunc(every, s.dueNowTick); err != nil {
		return fmt.Errorf("schedule due-now check: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	c.Start()
	s.cron = c
	log.Println("[info] announcement scheduler started")
	return nil
}

// Stop cancels every pending timer and in-flight plan and waits for running
// jobs to return. Safe to call on a scheduler that never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
		log.Println("[info] announcement scheduler stopped")
	}
}

// NextAnnouncementAt returns the earlier of the next enabled daily triggers
// strictly after now, or nil when announcements are off. An instant at or
// past a trigger rolls to tomorrow's occurrence.
func (s *Scheduler) NextAnnouncementAt(now time.Time) *time.Time {
	if !s.cfg.Enabled {
		return nil
	}
	now = now.In(s.loc)

	var next *time.Time
	consider := func(trigger string) {
		hour, minute, err := parseTrigger(trigger)
		if err != nil {
			return
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		if next == nil || t.Before(*next) {
			next = &t
		}
	}
	if s.cfg.MorningEnabled {
		consider(MorningTrigger)
	}
	if s.cfg.EveningEnabled {
		consider(EveningTrigger)
	}
	return next
}

func (s *Scheduler) fireMorning() {
	now := s.clock.Now().In(s.loc)
	ctx, ok := s.claimDaily(&s.firedMorning, now)
	if !ok {
		return
	}
	tasks, err := s.source.ListOpen(ctx)
	if err != nil {
		log.Printf("[warn] morning announcement: list tasks: %v", err)
		return
	}
	s.play(ctx, MorningPlan(tasks, now))
}

func (s *Scheduler) fireEvening() {
	now := s.clock.Now().In(s.loc)
	ctx, ok := s.claimDaily(&s.firedEvening, now)
	if !ok {
		return
	}
	tasks, err := s.source.ListOpen(ctx)
	if err != nil {
		log.Printf("[warn] evening announcement: list tasks: %v", err)
		return
	}
	s.play(ctx, EveningPlan(tasks, now))
}

// claimDaily marks the trigger fired for now's date, exactly once per day.
func (s *Scheduler) claimDaily(fired *string, now time.Time) (context.Context, bool) {
	day := now.Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil || *fired == day {
		return nil, false
	}
	*fired = day
	return s.ctx, true
}

// play drives a plan in order: wait out each announcement's delay, then hand
// the text to the speaker. Cancellation drops the remainder of the plan.
func (s *Scheduler) play(ctx context.Context, plan []Announcement) {
	for _, a := range plan {
		if a.Delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(a.Delay):
			}
		}
		if ctx.Err() != nil {
			return
		}
		s.speak(ctx, a.Text)
	}
}

// speak renders one utterance, downgrading speech failures so no error
// escapes the scheduler.
func (s *Scheduler) speak(ctx context.Context, text string) {
	err := s.speaker.Speak(ctx, speech.Utterance{Text: text, Voice: s.cfg.Voice})
	switch {
	case err == nil:
	case errors.Is(err, speech.ErrUnavailable):
		log.Printf("[warn] speech unavailable, skipping announcement: %v", err)
	default:
		log.Printf("[warn] speech playback: %v", err)
		if s.notifier != nil {
			s.notifier.Notify("Announcement could not be played: " + text)
		}
	}
}

func (s *Scheduler) dueNowTick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	now := s.clock.Now().In(s.loc)
	tasks, err := s.source.ListOpen(ctx)
	if err != nil {
		log.Printf("[warn] due-now check: list tasks: %v", err)
		return
	}

	for _, t := range DueNow(tasks, now, DueNowTolerance) {
		if !s.claimNudge(t) {
			continue
		}
		s.speak(ctx, fmt.Sprintf("Task due now: %s", t.Description))
	}
}

// claimNudge records that this occurrence of the task was already announced
// by the due-now check. A rescheduled due date earns a fresh nudge.
func (s *Scheduler) claimNudge(t model.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.nudged[t.ID]; ok && prev.Equal(t.DueDate) {
		return false
	}
	s.nudged[t.ID] = t.DueDate
	return true
}

// dailySpec converts an HH:MM trigger into a cron spec with a seconds field.
func dailySpec(trigger string) (string, error) {
	hour, minute, err := parseTrigger(trigger)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

func parseTrigger(trigger string) (hour, minute int, err error) {
	parts := strings.Split(trigger, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid trigger time %q, expected HH:MM", trigger)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", trigger)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", trigger)
	}
	return hour, minute, nil
}
