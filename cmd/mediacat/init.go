package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/config"
)

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nSet TMDB_API_KEY to fetch metadata.\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the catalog database and report row counts per view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			counts, err := store.ViewCounts(cmd.Context())
			if err != nil {
				return err
			}
			out := struct {
				Database string `json:"database"`
				User     string `json:"user"`
				Views    any    `json:"views"`
			}{a.cfg.Database.Path, a.user, counts}
			return a.output(cmd, out, func(w io.Writer) error {
				fmt.Fprintf(w, "Database: %s\nUser:     %s\n\n", out.Database, out.User)
				tw := table(w, "VIEW", "ROWS")
				for _, c := range counts {
					row(tw, c.View, c.Rows)
				}
				return tw.Flush()
			})
		},
	}
}
