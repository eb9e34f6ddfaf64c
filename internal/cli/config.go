package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/akscan/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var local bool

	// target picks the file init and set write to.
	target := func() (string, error) {
		switch {
		case a.configFile != "":
			return a.configFile, nil
		case local:
			return filepath.Join(a.dir, config.LocalFile), nil
		default:
			return config.ConfigPath()
		}
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage akscan configuration",
	}
	configCmd.PersistentFlags().BoolVar(&local, "local", false, "Use "+config.LocalFile+" in --dir instead of the user config file")

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := target()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
				return nil
			}

			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
			return nil
		},
	}

	configSetCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := target()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			if err := config.SetField(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, used, err := config.Load(config.Options{File: a.configFile, Dir: a.dir})
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if used != "" {
				fmt.Fprintf(out, "# %s\n", used)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	return configCmd
}
