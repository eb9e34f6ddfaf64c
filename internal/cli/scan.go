package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/akscan/internal/config"
	"github.com/dshills/akscan/internal/detect"
	"github.com/dshills/akscan/internal/gitctx"
	"github.com/dshills/akscan/internal/output"
	"github.com/dshills/akscan/internal/scan"
)

// addScanFlags registers the flags that feed config keys. Their values are
// read back through config.Load, which only honors flags the user set.
func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", "", "Git backend (auto, git, go-git)")
	f.StringSlice("exclude", nil, "Gitignore-style patterns for paths never read (repeatable or comma-separated)")
	f.StringSlice("allow", nil, "Extra tokens that are never reported (repeatable or comma-separated)")
	f.Bool("skip-binary", false, "Skip content with a known binary signature")
	f.Bool("skip-unreadable", false, "Warn and skip files that cannot be read")
	f.Bool("restore-head", false, "Check the original branch or commit back out when the scan ends")
	f.Bool("redact", false, "Mask the token in the written report")
	f.String("format", "", "Report format (text, json, sarif)")
	f.String("out", "", "Report file path (default: stdout)")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
}

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan every commit of every branch and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a)
		},
	}
	addScanFlags(cmd)
	return cmd
}

// runScan loads config, scans the repository and reports. Failures after
// config loading are printed and turned into an exit code rather than
// returned, so cobra does not print them a second time.
func runScan(cmd *cobra.Command, a *app) error {
	stderr := cmd.ErrOrStderr()
	ctx := cmd.Context()

	cfg, used, err := config.Load(config.Options{File: a.configFile, Dir: a.dir, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.LogLevel)
	if used != "" {
		logger.Debug("loaded config", "path", used)
	}

	fail := func(err error) error {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		a.exitCode = ExitFailure
		return nil
	}

	repo, err := gitctx.Open(cfg.Backend, a.dir)
	if err != nil {
		return fail(err)
	}
	meta, err := repo.Meta(ctx)
	if err != nil {
		return fail(err)
	}
	root := meta.Root
	if root == "" {
		root = a.dir
	}

	if cfg.RestoreHead {
		defer func() {
			// The run context may already be cancelled.
			if err := repo.Restore(context.WithoutCancel(ctx), meta); err != nil {
				fmt.Fprintf(stderr, "Error: restoring HEAD: %v\n", err)
				a.exitCode = ExitFailure
			}
		}()
	}

	s := scan.New(repo, detect.New(cfg.Allowlist...), scan.Options{
		Root:           root,
		Exclude:        cfg.Exclude,
		SkipBinary:     cfg.SkipBinary,
		SkipUnreadable: cfg.SkipUnreadable,
	}, logger)

	started := time.Now()
	res, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fail(fmt.Errorf("scan interrupted: %w", err))
		}
		return fail(err)
	}

	if d := res.Detection; d != nil {
		fmt.Fprintln(stderr, d.Token)
		fmt.Fprintf(stderr, "ERROR %s\n", d.Message())
		a.exitCode = ExitFindings
	}
	logger.Info("scan finished",
		"refs", res.Stats.Refs,
		"commits", res.Stats.Commits,
		"inspected", res.Stats.Inspected,
		"cacheHits", res.Stats.CacheHits,
		"duration", res.Stats.Duration,
	)

	report := output.BuildReport(version, meta, res, started)
	if cfg.Redact {
		report = report.Redacted()
	}
	if err := output.WriteReport(report, cfg.Format, cfg.Out, cmd.OutOrStdout()); err != nil {
		return fail(fmt.Errorf("writing output: %w", err))
	}
	return nil
}
