package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestProcessFunctions(t *testing.T) {
	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "test.pid")

	t.Run("SendSignalToPIDFile with empty path", func(t *testing.T) {
		err := SendSignalToPIDFile("", unix.SIGTERM)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "PID file path is empty")
	})

	t.Run("SendSignalToPIDFile with non-existent file", func(t *testing.T) {
		err := SendSignalToPIDFile(filepath.Join(tmpDir, "missing.pid"), unix.SIGTERM)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read PID file")
	})

	t.Run("readPIDFile with invalid content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(pidFile, []byte("invalid"), 0644))

		_, err := readPIDFile(pidFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid PID format")
	})

	t.Run("readPIDFile with invalid PID value", func(t *testing.T) {
		require.NoError(t, os.WriteFile(pidFile, []byte("0"), 0644))

		_, err := readPIDFile(pidFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid PID value")
	})

	t.Run("readPIDFile with valid PID", func(t *testing.T) {
		pid := os.Getpid()
		require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644))

		got, err := readPIDFile(pidFile)
		assert.NoError(t, err)
		assert.Equal(t, pid, got)
	})

	t.Run("null signal to self", func(t *testing.T) {
		require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644))
		assert.NoError(t, SendSignalToPIDFile(pidFile, unix.Signal(0)))
		assert.True(t, processAlive(os.Getpid()))
	})

	t.Run("signalProcess with non-existent PID", func(t *testing.T) {
		err := signalProcess(999999, unix.SIGTERM)
		assert.Error(t, err)
		assert.False(t, processAlive(999999))
	})
}
