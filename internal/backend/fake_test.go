package backend

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// fakeCrontab emulates the crontab binary against an in-memory table.
type fakeCrontab struct {
	mu       sync.Mutex
	table    *string // nil: user has no crontab
	writes   int
	failRead error
	failSet  error
	calls    []string
}

func newFakeCrontab(content string) *fakeCrontab {
	return &fakeCrontab{table: &content}
}

func (f *fakeCrontab) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))

	if len(args) == 1 && args[0] == "-l" {
		if f.failRead != nil {
			return nil, []byte("crontab: permission denied"), f.failRead
		}
		if f.table == nil {
			return nil, []byte("no crontab for tester\n"), errors.New("exit status 1")
		}
		return []byte(*f.table), nil, nil
	}
	if len(args) == 1 {
		if f.failSet != nil {
			return nil, []byte("crontab: errors in crontab file, can't install"), f.failSet
		}
		b, err := os.ReadFile(args[0])
		if err != nil {
			return nil, []byte(err.Error()), err
		}
		s := string(b)
		f.table = &s
		f.writes++
		return nil, nil, nil
	}
	return nil, []byte("usage"), errors.New("exit status 2")
}

func (f *fakeCrontab) content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.table == nil {
		return ""
	}
	return *f.table
}

// recordingRunner records every call and fails the ones listed in fail.
type recordingRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]error // keyed by first arg, e.g. "load"
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	if len(args) > 0 {
		if err, ok := r.fail[args[0]]; ok {
			return nil, []byte(args[0] + " failed"), err
		}
	}
	return nil, nil, nil
}

func (r *recordingRunner) verbs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		if len(c) > 1 {
			out = append(out, c[1])
		}
	}
	return out
}
