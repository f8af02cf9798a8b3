package helper

import (
	"os"
	"path/filepath"
)

const (
	// fallbackCfgDir is where configuration is looked up when neither ./ nor ./configs hold it
	fallbackCfgDir = "/etc/huddle"
	// fallbackPIDFile is used when the configured PID file's directory does not exist
	fallbackPIDFile = "/var/run/huddle.pid"
)

// GetCfgPath returns the path to the configuration file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. Check ./{filename} and ./configs/{filename}
// 3. Otherwise, fallback to /etc/huddle/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}
	if filepath.IsAbs(filename) {
		return filename
	}

	wd, err := os.Getwd()
	if err == nil && wd != "" {
		for _, candidate := range []string{
			filepath.Join(wd, filename),
			filepath.Join(wd, "configs", filename),
		} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
		}
	}

	return filepath.Join(fallbackCfgDir, filename)
}

// GetPIDPath returns the path to the PID file.
//
// Relative names resolve against the working directory as long as the target
// directory exists; anything else falls back to /var/run/huddle.pid.
func GetPIDPath(filename string) string {
	if filename == "" {
		return fallbackPIDFile
	}
	if filepath.IsAbs(filename) {
		return filename
	}

	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return fallbackPIDFile
	}
	abs, err := filepath.Abs(filepath.Join(wd, filename))
	if err != nil {
		return fallbackPIDFile
	}
	if _, err := os.Stat(filepath.Dir(abs)); err != nil {
		return fallbackPIDFile
	}
	return abs
}
