package backend

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pipesched/internal/schedule"
	logx "pipesched/pkg/logx"
)

// Marker tags every crontab line pipesched owns. The schedule name follows
// after a colon. Cron hands the line to sh, which reads it as a comment.
const Marker = "# MANAGED BY pipesched"

// Crontab manages entries in the invoking user's crontab.
//
// The table is read with `crontab -l` and replaced with `crontab <file>`.
// Lines without the Marker tag are preserved byte for byte; no locking is done, so
// two concurrent invocations can lose an update.
type Crontab struct {
	bin    string
	tmpDir string
	run    Runner
	log    logx.Logger
}

type CrontabOption func(*Crontab)

// WithCrontabBinary overrides the crontab executable.
func WithCrontabBinary(bin string) CrontabOption { return func(c *Crontab) { c.bin = bin } }

// WithCrontabTempDir sets where the replacement table is staged.
func WithCrontabTempDir(dir string) CrontabOption { return func(c *Crontab) { c.tmpDir = dir } }

func NewCrontab(run Runner, log logx.Logger, opts ...CrontabOption) *Crontab {
	if run == nil {
		run = ExecRunner{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	c := &Crontab{bin: "crontab", run: run, log: log.With(logx.String("backend", "crontab"))}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Crontab) Name() string { return "crontab" }

// entry is one managed crontab line.
type entry struct {
	name string
	line string
}

// table is the crontab split into foreign lines and managed entries,
// each in original order. noEOL records a table whose last line had no
// trailing newline.
type table struct {
	unmanaged []string
	managed   []entry
	noEOL     bool
}

func parseTable(lines []string) table {
	var t table
	for _, l := range lines {
		if name, ok := managedName(l); ok {
			t.managed = append(t.managed, entry{name: name, line: l})
			continue
		}
		t.unmanaged = append(t.unmanaged, l)
	}
	return t
}

// managedName extracts the schedule name from a tagged line. A line
// carrying Marker without the ":" separator is not ours.
func managedName(line string) (string, bool) {
	tag := Marker + ":"
	i := strings.LastIndex(line, tag)
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(line[i+len(tag):]), true
}

func (t table) without(name string) (table, bool) {
	out := table{unmanaged: t.unmanaged, noEOL: t.noEOL}
	removed := false
	for _, e := range t.managed {
		if e.name == name {
			removed = true
			continue
		}
		out.managed = append(out.managed, e)
	}
	return out, removed
}

func (t table) lines() []string {
	out := make([]string, 0, len(t.unmanaged)+len(t.managed))
	out = append(out, t.unmanaged...)
	for _, e := range t.managed {
		out = append(out, e.line)
	}
	return out
}

// Line renders the crontab line for s.
func Line(s schedule.Schedule) (string, error) {
	expr, err := Expr(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s:%s", expr, escapePercent(s.Command), Marker, s.Name), nil
}

// escapePercent protects '%', which cron turns into a newline.
func escapePercent(cmd string) string {
	var b strings.Builder
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == '%' && (i == 0 || cmd[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(cmd[i])
	}
	return b.String()
}

func (c *Crontab) Install(ctx context.Context, s schedule.Schedule) error {
	line, err := Line(s)
	if err != nil {
		return err
	}
	t, err := c.read(ctx, "install", s.Name)
	if err != nil {
		return err
	}
	t, replaced := t.without(s.Name)
	t.managed = append(t.managed, entry{name: s.Name, line: line})
	if err := c.write(ctx, "install", s.Name, t); err != nil {
		return err
	}
	c.log.Debug("crontab entry written", logx.String("schedule", s.Name), logx.String("line", line), logx.Bool("replaced", replaced))
	return nil
}

func (c *Crontab) Remove(ctx context.Context, name string) error {
	t, err := c.read(ctx, "remove", name)
	if err != nil {
		return err
	}
	t, removed := t.without(name)
	if !removed {
		c.log.Debug("crontab entry not present", logx.String("schedule", name))
		return nil
	}
	return c.write(ctx, "remove", name, t)
}

func (c *Crontab) List(ctx context.Context) ([]string, error) {
	t, err := c.read(ctx, "list", "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(t.managed))
	names := make([]string, 0, len(t.managed))
	for _, e := range t.managed {
		if e.name == "" {
			continue
		}
		if _, ok := seen[e.name]; ok {
			continue
		}
		seen[e.name] = struct{}{}
		names = append(names, e.name)
	}
	return names, nil
}

func (c *Crontab) Clear(ctx context.Context) error {
	t, err := c.read(ctx, "clear", "")
	if err != nil {
		return err
	}
	if len(t.managed) == 0 {
		return nil
	}
	return c.write(ctx, "clear", "", table{unmanaged: t.unmanaged, noEOL: t.noEOL})
}

func (c *Crontab) read(ctx context.Context, op, name string) (table, error) {
	stdout, stderr, err := c.run.Run(ctx, c.bin, "-l")
	if err != nil {
		// A user without a crontab gets a non-zero exit and this message.
		if strings.Contains(strings.ToLower(string(stderr)+string(stdout)), "no crontab") {
			return table{}, nil
		}
		return table{}, &CommandError{Op: op, Name: name, Cmd: commandLine(c.bin, []string{"-l"}), Output: string(stderr), Err: err}
	}
	text := string(stdout)
	if text == "" {
		return table{}, nil
	}
	noEOL := !strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	t := parseTable(lines)
	if noEOL {
		_, ours := managedName(lines[len(lines)-1])
		t.noEOL = !ours
	}
	c.log.Trace("crontab read", logx.Int("managed", len(t.managed)), logx.Int("unmanaged", len(t.unmanaged)))
	return t, nil
}

// write replaces the crontab with t. Every line ends in a newline, except
// that a foreign table which had none keeps it that way while no managed
// line follows it.
func (c *Crontab) write(ctx context.Context, op, name string, t table) error {
	f, err := os.CreateTemp(c.tmpDir, "pipesched-crontab-*")
	if err != nil {
		return fmt.Errorf("%s: stage crontab: %w", op, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	var b strings.Builder
	lines := t.lines()
	for i, l := range lines {
		b.WriteString(l)
		if i < len(lines)-1 || !t.noEOL || len(t.managed) > 0 {
			b.WriteByte('\n')
		}
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: stage crontab: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: stage crontab: %w", op, err)
	}

	_, stderr, err := c.run.Run(ctx, c.bin, tmp)
	if err != nil {
		return &CommandError{Op: op, Name: name, Cmd: commandLine(c.bin, []string{tmp}), Output: string(stderr), Err: err}
	}
	return nil
}
