package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Exit codes. A detection and a failure share code 1.
const (
	ExitSuccess  = 0
	ExitFindings = 1
	ExitFailure  = 1
)

// app carries state shared by one command tree invocation.
type app struct {
	dir        string
	configFile string
	exitCode   int
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "akscan",
		Short: "Scan the full git history for access keys",
		Long: "akscan walks every commit reachable from every branch and tag and stops at the\n" +
			"first file whose content looks like it holds an access-key ID or secret.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a)
		},
	}
	root.PersistentFlags().StringVar(&a.dir, "dir", ".", "Repository directory to scan")
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: .akscan.yaml in --dir, then user config)")
	addScanFlags(root)

	root.AddCommand(newScanCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newHookCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFailure
	}
	return a.exitCode
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print akscan version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "akscan version %s\n", version)
		},
	}
}

// newLogger returns a text logger on w at the named level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
