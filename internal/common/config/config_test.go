package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_A", "va")
	in := []byte("a: ${X_A:da}\nb: ${X_B:db}\nc: ${X_C}\n")
	out := resolveEnv(in)
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
	assert.Contains(t, string(out), "c: \n")
}

func TestLoadConfig_Huddle(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	_ = os.Chdir(tmp)
	t.Setenv("MAX_MESSAGE_LENGTH", "140")

	yaml := `
port: 9090
pid: ${X_PID:/tmp/huddle.pid}
chat:
  max_message_length: ${MAX_MESSAGE_LENGTH:5}
  idle_timeout: 30s
  announcements:
    joined: "{{ .Username }} is here"
registry:
  type: redis
  redis:
    addr: 127.0.0.1:6390
    prefix: test:presence
bus:
  type: memory
`
	file := filepath.Join(tmp, "huddle.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig("huddle.yaml")
	require.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/huddle.pid", cfg.PID)
	assert.Equal(t, 140, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 30*time.Second, cfg.Chat.IdleTimeout)
	assert.Equal(t, DefaultSystemName, cfg.Chat.SystemName)
	assert.Equal(t, "{{ .Username }} is here", cfg.Chat.Announcements.Joined)
	assert.Equal(t, DefaultLeftTemplate, cfg.Chat.Announcements.Left)
	assert.Equal(t, DefaultIdleTemplate, cfg.Chat.Announcements.Idle)

	assert.Equal(t, "redis", cfg.Registry.Type)
	assert.Equal(t, "127.0.0.1:6390", cfg.Registry.Redis.Addr)
	assert.Equal(t, "single", cfg.Registry.Redis.ClusterType)
	assert.Equal(t, "test:presence", cfg.Registry.Redis.Prefix)
	assert.Equal(t, "memory", cfg.Bus.Type)
	assert.Equal(t, "huddle:broadcast", cfg.Bus.Redis.Topic)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPIDFile, cfg.PID)
	assert.Equal(t, DefaultMaxMessageLength, cfg.Chat.MaxMessageLength)
	assert.Equal(t, DefaultIdleTimeout, cfg.Chat.IdleTimeout)
	assert.Equal(t, "System", cfg.Chat.SystemName)
	assert.Equal(t, "memory", cfg.Registry.Type)
	assert.Equal(t, "memory", cfg.Bus.Type)
	assert.Equal(t, "huddle", cfg.Metrics.Namespace)
	assert.Equal(t, "huddle", cfg.Tracing.ServiceName)
	assert.Equal(t, 256, cfg.Transport.SendBuffer)
	assert.Equal(t, int64(4096), cfg.Transport.MaxFrameSize)
	assert.Equal(t, 54*time.Second, cfg.Transport.PingPeriod())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("port: [1, 2"))
	assert.Error(t, err)
}
