package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"howett.net/plist"

	"pipesched/internal/schedule"
	logx "pipesched/pkg/logx"
)

// LabelPrefix marks LaunchAgents owned by pipesched.
const LabelPrefix = "com.pipesched."

// Launchd manages one LaunchAgent descriptor per schedule.
type Launchd struct {
	agentsDir  string
	logDir     string
	wrapperDir string
	stateDir   string
	ctlBin     string

	run Runner
	log logx.Logger
}

// LaunchdDirs are the locations the backend writes to.
type LaunchdDirs struct {
	Agents  string // descriptors, ~/Library/LaunchAgents
	Logs    string // job stdout/stderr, ~/Library/Logs
	Wrapper string // interval wrappers, ~/.local/bin
	State   string // last-run stamps, ~/.local/state/pipesched
}

// DefaultLaunchdDirs derives the standard locations from a home directory.
func DefaultLaunchdDirs(home string) LaunchdDirs {
	return LaunchdDirs{
		Agents:  filepath.Join(home, "Library", "LaunchAgents"),
		Logs:    filepath.Join(home, "Library", "Logs"),
		Wrapper: filepath.Join(home, ".local", "bin"),
		State:   filepath.Join(home, ".local", "state", "pipesched"),
	}
}

func NewLaunchd(dirs LaunchdDirs, run Runner, log logx.Logger) *Launchd {
	if run == nil {
		run = ExecRunner{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Launchd{
		agentsDir:  dirs.Agents,
		logDir:     dirs.Logs,
		wrapperDir: dirs.Wrapper,
		stateDir:   dirs.State,
		ctlBin:     "launchctl",
		run:        run,
		log:        log.With(logx.String("backend", "launchd")),
	}
}

func (l *Launchd) Name() string { return "launchd" }

// descriptor is the LaunchAgent plist.
type descriptor struct {
	Label                 string         `plist:"Label"`
	ProgramArguments      []string       `plist:"ProgramArguments"`
	StartCalendarInterval map[string]int `plist:"StartCalendarInterval"`
	RunAtLoad             bool           `plist:"RunAtLoad"`
	StandardOutPath       string         `plist:"StandardOutPath"`
	StandardErrorPath     string         `plist:"StandardErrorPath"`
}

func Label(name string) string { return LabelPrefix + name }

func (l *Launchd) descriptorPath(name string) string {
	return filepath.Join(l.agentsDir, Label(name)+".plist")
}

func (l *Launchd) wrapperPath(name string) string {
	return filepath.Join(l.wrapperDir, "pipesched-"+name+"-wrapper.sh")
}

func (l *Launchd) stateFile(name string) string {
	return filepath.Join(l.stateDir, name+".last_run")
}

// build translates s into a descriptor and, for every_x_days, the wrapper
// script that has to exist next to it.
func (l *Launchd) build(s schedule.Schedule) (descriptor, []byte, error) {
	if err := checkSchedule(s, 0); err != nil {
		return descriptor{}, nil, err
	}
	label := Label(s.Name)
	d := descriptor{
		Label:            label,
		ProgramArguments: []string{"/bin/bash", "-c", s.Command},
		StartCalendarInterval: map[string]int{
			"Hour":   s.Time.Hour,
			"Minute": s.Time.Minute,
		},
		// A job that should catch up must not also fire at every load.
		RunAtLoad:         !s.CatchUp,
		StandardOutPath:   filepath.Join(l.logDir, label+".out"),
		StandardErrorPath: filepath.Join(l.logDir, label+".err"),
	}

	var wrapper []byte
	switch s.Type {
	case schedule.Weekly:
		d.StartCalendarInterval["Weekday"] = CronWeekday(s.Day)
	case schedule.Monthly:
		d.StartCalendarInterval["Day"] = s.Day
	case schedule.EveryXDays:
		w, err := renderWrapper(wrapperData{
			Name:      s.Name,
			Days:      s.Day,
			Command:   s.Command,
			StateFile: l.stateFile(s.Name),
			StateDir:  l.stateDir,
		})
		if err != nil {
			return descriptor{}, nil, fmt.Errorf("render wrapper for %q: %w", s.Name, err)
		}
		wrapper = w
		d.ProgramArguments = []string{"/bin/bash", l.wrapperPath(s.Name)}
	}
	return d, wrapper, nil
}

func (l *Launchd) Install(ctx context.Context, s schedule.Schedule) error {
	d, wrapper, err := l.build(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.agentsDir, 0o755); err != nil {
		return fmt.Errorf("install %q: %w", s.Name, err)
	}
	if err := os.MkdirAll(l.logDir, 0o755); err != nil {
		return fmt.Errorf("install %q: %w", s.Name, err)
	}

	wp := l.wrapperPath(s.Name)
	if wrapper != nil {
		if err := os.MkdirAll(l.wrapperDir, 0o755); err != nil {
			return fmt.Errorf("install %q: %w", s.Name, err)
		}
		if err := os.WriteFile(wp, wrapper, 0o755); err != nil {
			return fmt.Errorf("install %q: write wrapper: %w", s.Name, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(wp, 0o755); err != nil {
			return fmt.Errorf("install %q: chmod wrapper: %w", s.Name, err)
		}
	} else if err := removeIfExists(wp); err != nil {
		return fmt.Errorf("install %q: drop stale wrapper: %w", s.Name, err)
	}

	b, err := plist.MarshalIndent(d, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("install %q: encode plist: %w", s.Name, err)
	}
	path := l.descriptorPath(s.Name)

	// A loaded job keeps its old definition until unloaded.
	if _, err := os.Stat(path); err == nil {
		if err := l.launchctl(ctx, "install", s.Name, "unload", path); err != nil {
			l.log.Debug("unload before reinstall failed", logx.String("schedule", s.Name), logx.Err(err))
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("install %q: write descriptor: %w", s.Name, err)
	}
	if err := l.launchctl(ctx, "install", s.Name, "load", path); err != nil {
		return err
	}
	l.log.Debug("launch agent loaded", logx.String("schedule", s.Name), logx.String("path", path))
	return nil
}

func (l *Launchd) Remove(ctx context.Context, name string) error {
	path := l.descriptorPath(name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		l.log.Debug("launch agent not present", logx.String("schedule", name))
		return removeIfExists(l.wrapperPath(name))
	}
	if err := l.launchctl(ctx, "remove", name, "unload", path); err != nil {
		// Not loaded is fine; the file still has to go.
		l.log.Warn("launchctl unload failed", logx.String("schedule", name), logx.Err(err))
	}
	if err := removeIfExists(path); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	if err := removeIfExists(l.wrapperPath(name)); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

func (l *Launchd) List(ctx context.Context) ([]string, error) {
	_ = ctx
	ents, err := os.ReadDir(l.agentsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	var names []string
	for _, e := range ents {
		fn := e.Name()
		if e.IsDir() || !strings.HasPrefix(fn, LabelPrefix) || !strings.HasSuffix(fn, ".plist") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(fn, LabelPrefix), ".plist")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Launchd) Clear(ctx context.Context) error {
	names, err := l.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range names {
		if err := l.Remove(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Launchd) launchctl(ctx context.Context, op, name string, args ...string) error {
	_, stderr, err := l.run.Run(ctx, l.ctlBin, args...)
	if err != nil {
		return &CommandError{Op: op, Name: name, Cmd: commandLine(l.ctlBin, args), Output: string(stderr), Err: err}
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
