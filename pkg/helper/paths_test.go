package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCfgPath(t *testing.T) {
	// panic on empty
	assert.Panics(t, func() { GetCfgPath("") })

	// absolute path returns as-is
	abs := "/tmp/test.yaml"
	assert.Equal(t, abs, GetCfgPath(abs))

	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })

	tmp := t.TempDir()
	_ = os.Chdir(tmp)

	// file in current directory
	f1 := "a.yaml"
	assert.NoError(t, os.WriteFile(f1, []byte("x"), 0o644))
	got := GetCfgPath(f1)
	exp, _ := filepath.EvalSymlinks(filepath.Join(tmp, f1))
	realGot, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, exp, realGot)

	// ./configs second
	_ = os.Remove(filepath.Join(tmp, f1))
	_ = os.MkdirAll("configs", 0o755)
	assert.NoError(t, os.WriteFile(filepath.Join("configs", f1), []byte("x"), 0o644))
	got = GetCfgPath(f1)
	exp, _ = filepath.EvalSymlinks(filepath.Join(tmp, "configs", f1))
	realGot, _ = filepath.EvalSymlinks(got)
	assert.Equal(t, exp, realGot)

	// fallback when not found
	_ = os.Remove(filepath.Join(tmp, "configs", f1))
	assert.Equal(t, filepath.Join("/etc/huddle", f1), GetCfgPath(f1))
}

func TestGetPIDPath(t *testing.T) {
	assert.Equal(t, "/var/run/huddle.pid", GetPIDPath(""))
	assert.Equal(t, "/tmp/x.pid", GetPIDPath("/tmp/x.pid"))

	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	tmp := t.TempDir()
	_ = os.Chdir(tmp)

	got := GetPIDPath("huddle.pid")
	realTmp, _ := filepath.EvalSymlinks(tmp)
	realDir, _ := filepath.EvalSymlinks(filepath.Dir(got))
	assert.Equal(t, realTmp, realDir)
	assert.Equal(t, "huddle.pid", filepath.Base(got))

	// parent directory missing
	assert.Equal(t, "/var/run/huddle.pid", GetPIDPath(filepath.Join("missing", "huddle.pid")))
}
