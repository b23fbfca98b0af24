package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DaemonEnv is set in the environment of a detached daemon.
const DaemonEnv = "CLIPSTASH_DAEMON"

// ErrNotRunning means no live daemon owns the PID file.
var ErrNotRunning = errors.New("daemon is not running")

// PIDFile returns the PID file location under dataDir.
func PIDFile(dataDir string) string {
	return filepath.Join(dataDir, "run", "clipstash.pid")
}

// WritePIDFile records pid, refusing when another live daemon holds the file.
func WritePIDFile(path string, pid int) error {
	if old, err := ReadPID(path); err == nil && old != pid && processAlive(old) {
		return fmt.Errorf("daemon already running with PID %d", old)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// RemovePIDFile deletes the file if it still names pid.
func RemovePIDFile(path string, pid int) {
	if cur, err := ReadPID(path); err == nil && cur == pid {
		_ = os.Remove(path)
	}
}

// ReadPID parses the PID file.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// RunningPID returns the PID of the live daemon, or ErrNotRunning.
func RunningPID(dataDir string) (int, error) {
	pid, err := ReadPID(PIDFile(dataDir))
	if err != nil {
		return 0, ErrNotRunning
	}
	if !processAlive(pid) {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Stop asks the daemon recorded under dataDir to exit.
func Stop(dataDir string) (int, error) {
	pid, err := RunningPID(dataDir)
	if err != nil {
		return 0, err
	}
	if err := terminate(pid); err != nil {
		return pid, fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}
	return pid, nil
}

// IsDetached reports whether this process was started by Detach.
func IsDetached() bool {
	return os.Getenv(DaemonEnv) == "1"
}

func withoutFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			continue
		}
		out = append(out, arg)
	}
	return out
}
