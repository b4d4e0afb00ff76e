package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultCron     = "0 0 7 * * *"
	DefaultTimezone = "Europe/Paris"
)

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Schedule is a six-field cron spec (seconds first) evaluated in a timezone.
type Schedule struct {
	Spec     string
	Location *time.Location

	sched cron.Schedule
}

// ParseSchedule parses spec in the IANA timezone tz ("" means UTC).
func ParseSchedule(spec, tz string) (Schedule, error) {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Schedule{}, fmt.Errorf("report timezone %q: %w", tz, err)
	}
	spec = strings.TrimSpace(spec)
	sched, err := parser.Parse("CRON_TZ=" + tz + " " + spec)
	if err != nil {
		return Schedule{}, fmt.Errorf("report cron %q: %w", spec, err)
	}
	return Schedule{Spec: spec, Location: loc, sched: sched}, nil
}

// Next returns the first fire time strictly after t, in the schedule's zone.
func (s Schedule) Next(t time.Time) time.Time {
	if s.sched == nil {
		return time.Time{}
	}
	return s.sched.Next(t).In(s.Location)
}

// Scheduler fires a job on a Schedule from its own goroutine.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

// NewScheduler arranges for job to run at every fire time of s. A run that
// is still going when the next one is due is skipped, and a panic in job is
// recovered and logged.
func NewScheduler(s Schedule, job func(ctx context.Context), log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(s.sched, cron.FuncJob(func() {
		job(context.Background())
	}))
	return &Scheduler{c: c, log: log}
}

func (s *Scheduler) Start() {
	s.c.Start()
	for _, e := range s.c.Entries() {
		s.log.Info("report scheduled", zap.Time("next", e.Next))
	}
}

// Stop stops the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's logging to zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
