package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/clipstash/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect clipstash configuration",
		Long: `Inspect clipstash configuration:
  • Show the effective configuration
  • Show where configuration and data live
  • Reset the configuration file to defaults`,
	}
	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigPathCmd(a),
		newConfigResetCmd(a),
	)
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.useJSON {
				return writeJSON(out, a.cfg)
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration and data locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.cfg.SystemPaths
			if a.useJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"config":   p.ConfigFile,
					"data":     p.DataDir,
					"database": a.cfg.Storage.DBPath,
					"logs":     p.LogDir,
					"socket":   p.SocketPath,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:   %s\n", p.ConfigFile)
			fmt.Fprintf(out, "Data:     %s\n", p.DataDir)
			fmt.Fprintf(out, "Database: %s\n", a.cfg.Storage.DBPath)
			fmt.Fprintf(out, "Logs:     %s\n", p.LogDir)
			fmt.Fprintf(out, "Socket:   %s\n", p.SocketPath)
			return nil
		},
	}
}

func newConfigResetCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the configuration file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.SystemPaths.ConfigFile
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New("configuration exists, use --force to overwrite it")
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset at %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
