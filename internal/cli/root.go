// Package cli implements the clipstash command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/common"
	"github.com/berrythewa/clipstash/internal/config"
	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/pkg/format"
)

// Version information, set by main
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"
)

// app is the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger

	cfgFile string
	useJSON bool
	noColor bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "clipstash",
		Short: "Clipboard history manager",
		Long: `clipstash keeps a searchable history of what you copy:
  • Text, code, links and images, categorized on capture
  • Sensitive-looking entries flagged and expired after a day
  • Pinned entries that survive history limits
  • History encrypted at rest with a device-bound key`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is the platform config dir)")
	flags.String(config.KeyLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "log format (auto, json, console)")
	flags.String(config.KeySocket, "", "daemon socket path")
	flags.BoolVar(&a.useJSON, "json", false, "output in JSON format")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newDaemonCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration with env and flag overrides, then the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyOverrides(cfg, a.v); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := common.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	a.logger = logger
	return nil
}

// send issues one request to the daemon and decodes its payload into out.
func (a *app) send(ctx context.Context, command string, args, out any) (*ipc.Response, error) {
	req, err := ipc.NewRequest(command, args)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Sending request", zap.String("command", command), zap.String("socket", a.cfg.SystemPaths.SocketPath))
	resp, err := ipc.SendRequest(ctx, a.cfg.SystemPaths.SocketPath, req)
	if err != nil {
		return nil, fmt.Errorf("%w (is the daemon running? try 'clipstash daemon start')", err)
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	if out != nil {
		if err := resp.DecodeData(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}

func (a *app) formatOptions(w io.Writer) format.Options {
	opts := format.DefaultOptions()
	if a.noColor || !common.IsTTY(w) {
		opts.UseColors = false
	}
	return opts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
