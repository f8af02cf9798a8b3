package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// SendSignalToPIDFile sends a signal to the process identified by the PID file
func SendSignalToPIDFile(pidFile string, sig unix.Signal) error {
	if pidFile == "" {
		return fmt.Errorf("PID file path is empty")
	}

	pid, err := readPIDFile(pidFile)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	if err := signalProcess(pid, sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}

func readPIDFile(pidFile string) (int, error) {
	raw, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID format in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID value: %d", pid)
	}
	return pid, nil
}

func signalProcess(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

// processAlive probes pid with the null signal
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
