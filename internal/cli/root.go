package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pipesched/internal/backend"
	"pipesched/internal/schedule"
	"pipesched/internal/scheduler"
	"pipesched/internal/storage"
	logx "pipesched/pkg/logx"
)

// Env carries process-level dependencies. Zero fields fall back to the host.
type Env struct {
	Out io.Writer
	Err io.Writer
	// GOOS overrides platform detection.
	GOOS string
	// Backend replaces the platform backend (tests).
	Backend backend.Backend
	Runner  backend.Runner
	// Getwd and Home locate the project root and the user's home.
	Getwd func() (string, error)
	Home  string
}

// app is the state shared by subcommands after flags are parsed.
type app struct {
	env   Env
	v     *viper.Viper
	paths schedule.Paths
	logs  *logx.Service
	log   logx.Logger
	audit storage.Store
}

// NewRootCmd builds the pipesched command tree.
func NewRootCmd(env Env) *cobra.Command {
	root, _ := newRoot(env)
	return root
}

func newRoot(env Env) (*cobra.Command, *app) {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if env.Getwd == nil {
		env.Getwd = os.Getwd
	}
	a := &app{env: env, v: viper.New()}

	root := &cobra.Command{
		Use:           "pipesched",
		Short:         "Install the pipeline's recurring jobs into the native OS scheduler",
		Long:          "pipesched installs, lists and removes the schedules of a pipeline config in crontab (Linux) or launchd (macOS).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	pf := root.PersistentFlags()
	pf.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.String("log-file", "", "also write JSON logs to this file")
	pf.Bool("journal", false, "also send logs to systemd-journald when available")
	pf.String("audit-driver", "file", "audit store driver (file, sqlite, none)")
	pf.String("audit-path", "", "audit store path (default ~/.local/state/pipesched/audit)")
	pf.String("project-root", "", "project root used to resolve relative commands (default: working directory)")

	root.AddCommand(
		newInstallCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newClearCmd(a),
		newPlanCmd(a),
		newInitCmd(a),
		newHistoryCmd(a),
	)
	return root, a
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	root, a := newRoot(env)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	// Post-run hooks are skipped on error, so release stores here.
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("PIPESCHED")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	logCfg := logx.Config{
		Level:   a.v.GetString("log-level"),
		Console: true,
		Journal: logx.JournalConfig{Enabled: a.v.GetBool("journal"), MinLevel: a.v.GetString("log-level")},
	}
	if p := a.v.GetString("log-file"); p != "" {
		logCfg.File = logx.FileConfig{Enabled: true, Path: p}
	}
	a.logs, a.log = logx.New(logCfg)

	home := a.env.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		home = h
	}
	root := a.v.GetString("project-root")
	if root == "" {
		cwd, err := a.env.Getwd()
		if err != nil {
			return fmt.Errorf("locate project root: %w", err)
		}
		root = cwd
	}
	a.paths = schedule.NewPaths(root, home)
	a.log.Debug("paths resolved", logx.String("project_root", a.paths.ProjectRoot), logx.String("bin_dir", a.paths.BinDir))
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.audit != nil {
		err = a.audit.Close()
		a.audit = nil
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}

func (a *app) openAudit() (storage.Store, error) {
	if a.audit != nil {
		return a.audit, nil
	}
	path := a.v.GetString("audit-path")
	if path == "" {
		path = filepath.Join(a.paths.Home, ".local", "state", "pipesched", "audit")
	}
	st, err := storage.Open(storage.Config{Driver: a.v.GetString("audit-driver"), Path: path}, a.log)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	a.audit = st
	return st, nil
}

func (a *app) scheduler() (*scheduler.Scheduler, error) {
	audit, err := a.openAudit()
	if err != nil {
		a.log.Warn("audit disabled for this run", logx.Err(err))
		audit = nil
	}
	return scheduler.New(scheduler.Options{
		GOOS:    a.env.GOOS,
		Home:    a.paths.Home,
		Runner:  a.env.Runner,
		Log:     a.log,
		Audit:   audit,
		Backend: a.env.Backend,
	})
}
