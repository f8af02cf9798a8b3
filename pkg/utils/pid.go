package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrAlreadyRunning is returned when the PID file points at a live process
var ErrAlreadyRunning = errors.New("another instance is already running")

// PIDManager owns the PID file of a running server
type PIDManager struct {
	pidFile string
}

// NewPIDManager creates a new PIDManager instance
func NewPIDManager(pidFile string) *PIDManager {
	return &PIDManager{pidFile: pidFile}
}

// WritePID records the current process ID. A stale file left by a dead
// process is overwritten; a file naming a live process is not.
func (p *PIDManager) WritePID() error {
	if pid, err := readPIDFile(p.pidFile); err == nil && pid != os.Getpid() && processAlive(pid) {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	if err := os.MkdirAll(filepath.Dir(p.pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	return os.WriteFile(p.pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}

// RemovePID removes the PID file; a missing file is not an error
func (p *PIDManager) RemovePID() error {
	if err := os.Remove(p.pidFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetPIDFile returns the PID file path
func (p *PIDManager) GetPIDFile() string {
	return p.pidFile
}
