// Package main provides the CLI entry point for stackwrap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/cmd/configcmd"
	"github.com/alexander-akhmetov/stackwrap/internal/cmd/helpcmd"
	"github.com/alexander-akhmetov/stackwrap/internal/cmd/terraform"
	versioncmd "github.com/alexander-akhmetov/stackwrap/internal/cmd/version"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/config"
	"github.com/alexander-akhmetov/stackwrap/internal/dispatch"
	"github.com/alexander-akhmetov/stackwrap/internal/help"
	"github.com/alexander-akhmetov/stackwrap/internal/logging"
	"github.com/alexander-akhmetov/stackwrap/internal/runner"
	"github.com/alexander-akhmetov/stackwrap/internal/timing"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	fillVersionFromBuildInfo()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string) int {
	logging.Bootstrap(os.Stderr)
	clock := timing.FromEnv(os.Stderr)
	fail := func(err error, code int) int {
		clierr.Print(os.Stderr, err, help.PlainFor(os.Stderr, false))
		return code
	}

	if dir := dispatch.WorkDir(argv); dir != "" {
		if err := os.Chdir(dir); err != nil {
			return fail(fmt.Errorf("change directory: %w", err), clierr.ExitFailure)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return fail(err, clierr.ExitFailure)
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return fail(fmt.Errorf("failed to load config: %w", err), clierr.ExitFailure)
	}
	clock.Mark("config loaded")

	reg, err := buildRegistry(cfg, runner.New())
	if err != nil {
		return fail(err, clierr.ExitSoftware)
	}
	clock.Mark("registry active")

	d := dispatch.New(reg,
		dispatch.WithConfig(cfg),
		dispatch.WithVersion(fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)),
	)
	code := d.Dispatch(ctx, argv)
	clock.Mark("dispatch finished")
	return code
}

// buildRegistry registers every command in help order and activates the
// registry.
func buildRegistry(cfg *config.Config, r runner.Runner) (*command.Registry, error) {
	reg := command.NewRegistry(dispatch.GlobalFlags())
	tf := cfg.Components.Terraform
	providers := []command.Provider{
		terraform.NewProvider(terraform.Options{
			Command:  tf.Command,
			BasePath: tf.BasePath,
			RootDir:  cfg.RootDir(),
			Runner:   r,
		}),
		configcmd.NewProvider(cfg),
		versioncmd.NewProvider(versioncmd.Info{
			Version: version,
			Commit:  commit,
			Date:    date,
			Tool:    tf.Command,
		}),
		helpcmd.NewProvider(reg, version),
		helpcmd.NewCompletionProvider(reg),
	}
	for _, p := range providers {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if err := reg.Activate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func fillVersionFromBuildInfo() {
	if version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	commit, date = versionFromSettings(info.Settings)
}

func versionFromSettings(settings []debug.BuildSetting) (string, string) {
	var revision, date string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			date = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	c := "unknown"
	if len(revision) >= 7 {
		c = revision[:7]
		if dirty {
			c += "-dirty"
		}
	}

	d := "unknown"
	if date != "" {
		d = date
	}
	return c, d
}
