package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/config"
	"github.com/berrythewa/clipstash/internal/daemon"
	"github.com/berrythewa/clipstash/internal/ipc"
)

func newDaemonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the clipstash daemon",
		Long: `Manage the daemon that watches the clipboard and keeps the history.

The daemon can be:
  • Started in the foreground or background
  • Stopped gracefully
  • Checked for status`,
	}
	cmd.AddCommand(
		newDaemonStartCmd(a),
		newDaemonStopCmd(a),
		newDaemonStatusCmd(a),
		newDaemonReloadCmd(a),
		newDaemonFlushCmd(a),
	)
	return cmd
}

func newDaemonStartCmd(a *app) *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long: `Start the daemon in the foreground, or in the background with --detach.

Examples:
  clipstash daemon start                       # run until Ctrl+C
  clipstash daemon start --detach              # run in the background
  clipstash daemon start --poll-interval 250ms # poll the clipboard faster`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := a.cfg.SystemPaths.DataDir
			if pid, err := daemon.RunningPID(dataDir); err == nil {
				return fmt.Errorf("daemon already running with PID %d", pid)
			}

			if detach {
				pid, err := daemon.Detach(os.Args[1:], a.cfg.LogFile())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "clipstash started in background (PID: %d)\n", pid)
				return nil
			}
			return runForeground(cmd.Context(), a)
		},
	}

	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run in background")
	cmd.Flags().Int(config.KeyMaxItems, 0, "history size (20, 30, 50 or 100)")
	cmd.Flags().Duration(config.KeyPollInterval, 0, "clipboard poll interval")
	cmd.Flags().Bool(config.KeyEncrypt, true, "encrypt history at rest")
	cmd.Flags().String(config.KeyDBPath, "", "history database path")
	return cmd
}

func runForeground(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pidFile := daemon.PIDFile(a.cfg.SystemPaths.DataDir)
	pid := os.Getpid()
	if err := daemon.WritePIDFile(pidFile, pid); err != nil {
		return err
	}
	defer daemon.RemovePIDFile(pidFile, pid)

	d, err := daemon.New(a.cfg, a.logger, daemon.Deps{})
	if err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	a.logger.Info("clipstash daemon running",
		zap.Int("pid", pid),
		zap.Bool("detached", daemon.IsDetached()),
		zap.String("socket", a.cfg.SystemPaths.SocketPath))
	return d.Run(ctx)
}

func newDaemonStopCmd(a *app) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := a.cfg.SystemPaths.DataDir
			pid, err := daemon.Stop(dataDir)
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "clipstash daemon is not running.")
				return nil
			}
			if err != nil {
				return err
			}

			deadline := time.Now().Add(wait)
			for time.Now().Before(deadline) {
				if _, err := daemon.RunningPID(dataDir); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "clipstash daemon stopped (PID %d).\n", pid)
					return nil
				}
				time.Sleep(100 * time.Millisecond)
			}
			return fmt.Errorf("daemon (PID %d) did not exit within %s", pid, wait)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "how long to wait for the daemon to exit")
	return cmd
}

func newDaemonStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st daemon.StatusReport
			if _, err := a.send(cmd.Context(), ipc.CmdStatus, nil, &st); err != nil {
				if a.useJSON {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "clipstash daemon is not reachable: %v\n", err)
				return nil
			}
			if a.useJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "clipstash daemon is running (PID %d)\n", st.PID)
			fmt.Fprintf(out, "  Uptime:    %s\n", st.Uptime)
			fmt.Fprintf(out, "  Backend:   %s (%s)\n", st.Monitor.Backend, st.Monitor.State)
			fmt.Fprintf(out, "  Captured:  %d, ignored %d, errors %d\n", st.Monitor.Captured, st.Monitor.Ignored, st.Monitor.ErrorCount)
			fmt.Fprintf(out, "  History:   %d entries, %d pinned\n", st.Items, st.Pinned)
			fmt.Fprintf(out, "  Encrypted: %t\n", st.Encrypted)
			fmt.Fprintf(out, "  Database:  %s\n", st.DBPath)
			if st.Monitor.LastError != "" {
				fmt.Fprintf(out, "  Last error: %s\n", st.Monitor.LastError)
			}
			return nil
		},
	}
}

func newDaemonReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Make the daemon re-read its configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.send(cmd.Context(), ipc.CmdConfigReload, nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newDaemonFlushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Wait until the history is written to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.send(cmd.Context(), ipc.CmdFlush, nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
