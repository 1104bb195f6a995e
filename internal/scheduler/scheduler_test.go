package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipesched/internal/config"
	"pipesched/internal/conflict"
	"pipesched/internal/schedule"
	"pipesched/internal/storage"
	logx "pipesched/pkg/logx"
)

// memBackend keeps managed entries in a map and counts mutations.
type memBackend struct {
	mu        sync.Mutex
	entries   map[string]schedule.Schedule
	mutations int
	failOn    map[string]error
}

func newMemBackend() *memBackend {
	return &memBackend{entries: map[string]schedule.Schedule{}, failOn: map[string]error{}}
}

func (m *memBackend) Name() string { return "mem" }

func (m *memBackend) Install(ctx context.Context, s schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[s.Name]; err != nil {
		return err
	}
	m.mutations++
	m.entries[s.Name] = s
	return nil
}

func (m *memBackend) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	delete(m.entries, name)
	return nil
}

func (m *memBackend) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for n := range m.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	m.entries = map[string]schedule.Schedule{}
	return nil
}

func sched(name string, typ schedule.Type, day, h, m int) schedule.Schedule {
	return schedule.Schedule{Name: name, Type: typ, Day: day, Time: schedule.At(h, m), Command: "/bin/true"}
}

func newTestScheduler(t *testing.T, b *memBackend, audit storage.Store) *Scheduler {
	t.Helper()
	s, err := New(Options{Backend: b, Log: logx.Nop(), Audit: audit})
	require.NoError(t, err)
	return s
}

func TestNewSelectsBackendByPlatform(t *testing.T) {
	t.Parallel()

	s, err := New(Options{GOOS: "linux"})
	require.NoError(t, err)
	assert.Equal(t, PlatformLinux, s.Platform())
	assert.Equal(t, "crontab", s.BackendName())

	s, err = New(Options{GOOS: "darwin", Home: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, PlatformDarwin, s.Platform())
	assert.Equal(t, "launchd", s.BackendName())

	_, err = New(Options{GOOS: "windows"})
	var upe *UnsupportedPlatformError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, "windows", upe.GOOS)
}

func TestInstallAllRejectsConflictBeforeMutation(t *testing.T) {
	t.Parallel()
	b := newMemBackend()
	s := newTestScheduler(t, b, nil)

	list := []schedule.Schedule{
		sched("updater", schedule.EveryXDays, 3, 12, 0),
		sched("llm_pipeline", schedule.Weekly, 1, 12, 0),
	}
	rep, err := s.InstallAll(context.Background(), list)

	var ce *conflict.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "updater", ce.A)
	assert.Equal(t, "llm_pipeline", ce.B)
	assert.Empty(t, rep.Results)
	assert.Zero(t, b.mutations)
}

func TestInstallAllRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	b := newMemBackend()
	s := newTestScheduler(t, b, nil)

	_, err := s.InstallAll(context.Background(), []schedule.Schedule{
		sched("a", schedule.Weekly, 1, 1, 0),
		sched("a", schedule.Weekly, 1, 5, 0),
	})
	var dup *config.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Zero(t, b.mutations)
}

func TestInstallAllContinuesPastFailures(t *testing.T) {
	t.Parallel()
	b := newMemBackend()
	b.failOn["b"] = errors.New("crontab: exit status 1")
	s := newTestScheduler(t, b, nil)

	rep, err := s.InstallAll(context.Background(), []schedule.Schedule{
		sched("a", schedule.Weekly, 1, 1, 0),
		sched("b", schedule.Weekly, 1, 3, 0),
		sched("c", schedule.Monthly, 1, 5, 0),
	})
	require.NoError(t, err)
	assert.False(t, rep.OK())
	require.Len(t, rep.Results, 3)
	require.Len(t, rep.Failed(), 1)
	assert.Equal(t, "b", rep.Failed()[0].Name)

	names, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names, "no rollback of successful installs")
}

func TestInstallAllOneEntryPerName(t *testing.T) {
	t.Parallel()
	b := newMemBackend()
	s := newTestScheduler(t, b, nil)
	ctx := context.Background()

	list := []schedule.Schedule{
		sched("a", schedule.Weekly, 1, 1, 0),
		sched("b", schedule.EveryXDays, 2, 2, 0),
		sched("c", schedule.Monthly, 10, 3, 0),
	}
	rep, err := s.InstallAll(ctx, list)
	require.NoError(t, err)
	require.True(t, rep.OK())

	// reversed order, changed parameters
	list[0].Day = 4
	rep, err = s.InstallAll(ctx, []schedule.Schedule{list[2], list[1], list[0]})
	require.NoError(t, err)
	require.True(t, rep.OK())

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 4, b.entries["a"].Day)
}

func TestRemoveClearAndAudit(t *testing.T) {
	t.Parallel()
	audit, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(t.TempDir(), "audit")}, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = audit.Close() })

	b := newMemBackend()
	s := newTestScheduler(t, b, audit)
	ctx := context.Background()

	_, err = s.InstallAll(ctx, []schedule.Schedule{sched("a", schedule.Weekly, 1, 1, 0), sched("b", schedule.Weekly, 1, 2, 0)})
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Clear(ctx))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	entries, err := audit.RecentAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "clear", entries[0].Action)
	assert.Equal(t, "remove", entries[1].Action)
	assert.Equal(t, "a", entries[1].Target)
	assert.Equal(t, "mem", entries[1].Backend)
	assert.True(t, entries[3].OK)
}

func TestPlan(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.Local) // Wednesday
	rows := Plan([]schedule.Schedule{
		sched("w", schedule.Weekly, 1, 9, 30),
		sched("bad", schedule.Weekly, 9, 9, 30),
	}, now)

	require.Len(t, rows, 2)
	require.NoError(t, rows[0].Err)
	assert.Equal(t, "30 9 * * 1", rows[0].Expr)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local), rows[0].Next)
	assert.Error(t, rows[1].Err)
}

func TestDetectPlatform(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PlatformLinux, DetectPlatform("linux"))
	assert.Equal(t, PlatformDarwin, DetectPlatform("darwin"))
	assert.Equal(t, PlatformUnknown, DetectPlatform("plan9"))
}
