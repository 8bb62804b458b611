// Package sysinfo wraps the handful of ambient process/host queries armada
// needs: the invoking user, the process umask and timezone conversion.
package sysinfo

import (
	"fmt"
	"os"
	"os/user"
	"syscall"
	"time"
)

// Username returns the current username in a portable way.
func Username() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to look up current user: %w", err)
	}
	return u.Username, nil
}

// Hostname returns the host name, falling back to "unknown".
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// CurrentUmask reports the process file-creation mask using the set/restore
// trick. NOT safe to call while another goroutine creates files or mutates
// the mask; call it once during single-threaded startup and pass the value
// explicitly (atomicfile.Writer takes it as a parameter for this reason).
func CurrentUmask() os.FileMode {
	old := syscall.Umask(0022)
	syscall.Umask(old)
	return os.FileMode(old)
}

// LocalTimeFromUTC converts a UTC timestamp to the host's local timezone.
func LocalTimeFromUTC(utc time.Time) time.Time {
	return utc.UTC().In(time.Local)
}
