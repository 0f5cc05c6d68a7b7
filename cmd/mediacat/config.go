package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Locate, show and check the config file",
	}
	cmd.AddCommand(
		a.configPathCmd(),
		a.configShowCmd(),
		a.configCheckCmd(),
		a.configWriteCmd(),
	)
	return cmd
}

// noSetup marks config subcommands: they must run on a config that fails to load.
var noSetup = map[string]string{skipSetup: "true"}

func (a *app) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file in use and where it was searched for",
		Args:        cobra.NoArgs,
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configFile()
			if err != nil {
				return err
			}
			out := struct {
				Path   string   `json:"path"`
				Env    string   `json:"env"`
				Search []string `json:"search"`
			}{path, os.Getenv(config.EnvConfig), config.SearchPaths()}
			return a.output(cmd, out, func(w io.Writer) error {
				if path == "" {
					fmt.Fprintln(w, "No config file, using defaults.")
				} else {
					fmt.Fprintln(w, path)
				}
				fmt.Fprintf(w, "\n%s: %s\n", config.EnvConfig, orNone(out.Env))
				fmt.Fprintln(w, "Searched:")
				for _, p := range out.Search {
					fmt.Fprintf(w, "  %s\n", p)
				}
				return nil
			})
		},
	}
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective config with defaults filled in",
		Long:        "Print the effective config with defaults filled in. Invalid settings are shown as written; run 'config check' to list them.",
		Args:        cobra.NoArgs,
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.rawConfig()
			if err != nil {
				return err
			}
			cfg = cfg.Redacted()
			return a.output(cmd, cfg, cfg.Encode)
		},
	}
}

func (a *app) configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "check",
		Short:       "Validate the config file and list every problem",
		Args:        cobra.NoArgs,
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, path, err := a.rawConfig()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file, defaults are valid.")
				return nil
			}
			if _, err := config.Load(path); err != nil {
				var cfgErr *config.ConfigError
				if !errors.As(err, &cfgErr) {
					return err
				}
				w := cmd.OutOrStdout()
				for _, v := range cfgErr.Unset {
					fmt.Fprintf(w, "  %s\n", v)
				}
				for _, i := range cfgErr.Issues {
					fmt.Fprintf(w, "  %s\n", i)
				}
				return fmt.Errorf("%s: %d problem(s) in %s", path, len(cfgErr.Unset)+len(cfgErr.Issues), formatKeys(cfgErr.Keys()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
			return nil
		},
	}
}

func (a *app) configWriteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "write <path>",
		Short:       "Save the resolved config, variables substituted and defaults filled in",
		Args:        cobra.ExactArgs(1),
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]
			if _, err := os.Stat(dest); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", dest)
			}
			path, err := a.configFile()
			if err != nil {
				return err
			}
			cfg := config.Default()
			if path != "" {
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			if err := cfg.Write(dest); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", dest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// rawConfig loads the config file without validating it, or the defaults when there is none.
func (a *app) rawConfig() (*config.Config, string, error) {
	path, err := a.configFile()
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.LoadWithoutValidation(path)
	return cfg, path, err
}

func orNone(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func formatKeys(keys []string) string {
	if len(keys) == 0 {
		return "environment"
	}
	return fmt.Sprint(keys)
}
