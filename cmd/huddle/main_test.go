package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/amoylab/huddle/internal/common/cnst"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	f()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.SetArgs([]string{})
		configPath = cnst.HuddleYaml
		pidFile = ""
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "huddle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCmd_Version(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"version"})
	out := captureOutput(func() { _ = rootCmd.Execute() })
	assert.Contains(t, out, "huddle version")
}

func TestRootCmd_Help(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"--help"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("help should not error: %v", err)
	}
}

func TestTestCmd_ValidConfig(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, `
port: 9090
chat:
  max_message_length: 20
  idle_timeout: 30s
  announcements:
    joined: "{{ .Username | upper }} is here"
`)
	rootCmd.SetArgs([]string{"test", "--conf", path})

	var err error
	out := captureOutput(func() { err = rootCmd.Execute() })
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestTestCmd_BrokenTemplate(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, `
chat:
  announcements:
    left: "{{ .Username "
`)
	rootCmd.SetArgs([]string{"test", "--conf", path})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left announcement")
}

func TestTestCmd_InvalidValues(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, `
registry:
  type: etcd
`)
	rootCmd.SetArgs([]string{"test", "--conf", path})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is invalid")
}

func TestStopCmd_MissingPIDFile(t *testing.T) {
	resetFlags(t)
	missing := filepath.Join(t.TempDir(), "huddle.pid")
	rootCmd.SetArgs([]string{"stop", "--pid", missing})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read PID file")
}

func TestResolvePIDPath(t *testing.T) {
	resetFlags(t)

	pidFile = "/tmp/explicit.pid"
	assert.Equal(t, "/tmp/explicit.pid", resolvePIDPath())

	pidFile = ""
	configPath = writeConfig(t, "pid: /tmp/from-config.pid\n")
	assert.Equal(t, "/tmp/from-config.pid", resolvePIDPath())
}
