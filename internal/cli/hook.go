package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookName        = "pre-push"
	hookMarkerStart = "# >>> akscan pre-push hook >>>"
	hookMarkerEnd   = "# <<< akscan pre-push hook <<<"
)

func newHookCmd(a *app) *cobra.Command {
	var (
		hookFormat   string
		hookLogLevel string
	)

	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the git pre-push hook",
	}

	hookInstallCmd := &cobra.Command{
		Use:   "install",
		Short: "Install akscan as a git pre-push hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hookPath, err := getHookPath(a.dir)
			if err != nil {
				return err
			}

			section := generateHookScript(hookFormat, hookLogLevel)

			existing, err := os.ReadFile(hookPath)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("reading hook file: %w", err)
			}

			var content string
			if os.IsNotExist(err) || len(existing) == 0 {
				content = "#!/bin/sh\n" + section
			} else {
				content = replaceHookSection(string(existing), section)
			}

			if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
				return fmt.Errorf("creating hooks directory: %w", err)
			}
			if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
				return fmt.Errorf("writing hook file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Installed akscan %s hook at %s\n", hookName, hookPath)
			return nil
		},
	}
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Report format used by the hook (text, json, sarif)")
	hookInstallCmd.Flags().StringVar(&hookLogLevel, "log-level", "warn", "Log level used by the hook")

	hookUninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the akscan pre-push hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hookPath, err := getHookPath(a.dir)
			if err != nil {
				return err
			}

			existing, err := os.ReadFile(hookPath)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s hook found.\n", hookName)
					return nil
				}
				return fmt.Errorf("reading hook file: %w", err)
			}

			content := removeHookSection(string(existing))

			// If only shebang (and whitespace) remains, delete the file entirely
			trimmed := strings.TrimSpace(content)
			if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
				if err := os.Remove(hookPath); err != nil {
					return fmt.Errorf("removing hook file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed akscan %s hook at %s\n", hookName, hookPath)
				return nil
			}

			if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
				return fmt.Errorf("writing hook file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed akscan section from %s\n", hookPath)
			return nil
		},
	}

	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	return hookCmd
}

// getHookPath asks git where the pre-push hook lives, honoring core.hooksPath.
func getHookPath(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--git-path", "hooks/"+hookName)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-path failed)")
	}
	path := strings.TrimSpace(string(out))
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path, nil
}

// generateHookScript blocks the push on any non-zero exit. The scan checks
// commits out, so the hook always restores HEAD afterwards.
func generateHookScript(format, logLevel string) string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(fmt.Sprintf("akscan scan --restore-head --format %s --log-level %s\n", format, logLevel))
	b.WriteString("AKSCAN_EXIT=$?\n")
	b.WriteString("if [ $AKSCAN_EXIT -ne 0 ]; then\n")
	b.WriteString("  echo \"akscan: possible access key in history (or scan failed), push blocked\"\n")
	b.WriteString("  exit 1\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	// Trim leading newline from after to avoid double newlines
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}
