package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pipesched/internal/backend"
	"pipesched/internal/config"
	"pipesched/internal/conflict"
	"pipesched/internal/schedule"
	"pipesched/internal/storage"
	logx "pipesched/pkg/logx"
)

// Options configures New.
type Options struct {
	// GOOS selects the backend; empty means the running host.
	GOOS string
	// Home is the user's home directory (launchd paths).
	Home   string
	Runner backend.Runner
	Log    logx.Logger
	// Audit, when set, receives one entry per operation.
	Audit storage.Store
	// Backend bypasses platform selection.
	Backend backend.Backend
}

// Scheduler runs operations against exactly one backend.
type Scheduler struct {
	platform Platform
	backend  backend.Backend
	log      logx.Logger
	audit    storage.Store
	now      func() time.Time
}

// New detects the platform once and selects its backend.
func New(opts Options) (*Scheduler, error) {
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	goos := opts.GOOS
	if goos == "" {
		goos = string(HostPlatform())
	}
	p := DetectPlatform(goos)

	b := opts.Backend
	if b == nil {
		switch p {
		case PlatformLinux:
			b = backend.NewCrontab(opts.Runner, log)
		case PlatformDarwin:
			if opts.Home == "" {
				return nil, errors.New("launchd backend needs a home directory")
			}
			b = backend.NewLaunchd(backend.DefaultLaunchdDirs(opts.Home), opts.Runner, log)
		default:
			return nil, &UnsupportedPlatformError{GOOS: goos}
		}
	}

	return &Scheduler{
		platform: p,
		backend:  b,
		log:      log.With(logx.String("backend", b.Name())),
		audit:    opts.Audit,
		now:      time.Now,
	}, nil
}

func (s *Scheduler) Platform() Platform { return s.platform }

func (s *Scheduler) BackendName() string { return s.backend.Name() }

// Result is the outcome of installing one schedule.
type Result struct {
	Name string
	Err  error
}

// Report aggregates InstallAll results in input order.
type Report struct {
	Results []Result
}

// OK reports whether every schedule installed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Preflight rejects a schedule set that must not reach the backend:
// invalid or duplicate names, or two schedules within conflict.Threshold.
func Preflight(list []schedule.Schedule) error {
	if err := config.ValidateSchedules(list); err != nil {
		return err
	}
	return conflict.Check(list)
}

// InstallAll runs Preflight and, if it passes, installs every schedule.
//
// A preflight error is returned before anything native is touched. After
// that, per-schedule failures are collected in the Report and the remaining
// schedules are still installed; the returned error is then nil.
func (s *Scheduler) InstallAll(ctx context.Context, list []schedule.Schedule) (Report, error) {
	if err := Preflight(list); err != nil {
		var ce *conflict.Error
		if errors.As(err, &ce) {
			s.log.Error("schedule conflict; nothing installed",
				logx.String("a", ce.A), logx.String("a_at", ce.AAt.HHMM()),
				logx.String("b", ce.B), logx.String("b_at", ce.BAt.HHMM()),
			)
		}
		s.record(ctx, "install", "", time.Now(), err)
		return Report{}, err
	}

	rep := Report{Results: make([]Result, 0, len(list))}
	for _, sc := range list {
		start := time.Now()
		err := s.backend.Install(ctx, sc)
		rep.Results = append(rep.Results, Result{Name: sc.Name, Err: err})
		if err != nil {
			s.log.Error("install failed", logx.String("schedule", sc.Name), logx.Err(err))
		} else {
			s.log.Info("installed",
				logx.String("schedule", sc.Name),
				logx.String("type", sc.Type.String()),
				logx.String("at", sc.Time.HHMM()),
				logx.Duration("took", time.Since(start)),
			)
		}
		s.record(ctx, "install", sc.Name, start, err)
	}
	failed := len(rep.Failed())
	s.log.Info("install finished", logx.Int("installed", len(rep.Results)-failed), logx.Int("failed", failed))
	return rep, nil
}

func (s *Scheduler) Remove(ctx context.Context, name string) error {
	start := time.Now()
	err := s.backend.Remove(ctx, name)
	s.record(ctx, "remove", name, start, err)
	if err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	s.log.Info("removed", logx.String("schedule", name))
	return nil
}

func (s *Scheduler) List(ctx context.Context) ([]string, error) {
	names, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("listed managed schedules", logx.Strs("names", names))
	return names, nil
}

func (s *Scheduler) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.backend.Clear(ctx)
	s.record(ctx, "clear", "", start, err)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	s.log.Info("cleared all managed schedules")
	return nil
}

func (s *Scheduler) record(ctx context.Context, action, target string, start time.Time, opErr error) {
	if s.audit == nil {
		return
	}
	e := storage.AuditEntry{
		At:      s.now(),
		Action:  action,
		Target:  target,
		Backend: s.backend.Name(),
		OK:      opErr == nil,
		TookMS:  time.Since(start).Milliseconds(),
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if err := s.audit.AppendAudit(ctx, e); err != nil {
		s.log.Warn("audit append failed", logx.String("action", action), logx.Err(err))
	}
}
