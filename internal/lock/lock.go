// Package lock serializes export runs on a single export directory. Two
// concurrent runs writing the same tree would interleave attachment copies
// and truncate each other's transcripts, so the second run must fail fast.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// HeldError is returned when another process is already exporting into the
// directory.
type HeldError struct {
	PID   int
	RunID string
	Path  string
}

func (e *HeldError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("export directory locked by PID %d, run %s (%s)", e.PID, e.RunID, e.Path)
	}
	return fmt.Sprintf("export directory locked by PID %d (%s)", e.PID, e.Path)
}

// Lock is an acquired export-directory lock.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive flock on <dir>/LOCK, creating dir as needed.
// The file records the owner's pid and run id for the HeldError of whoever
// loses the race.
func Acquire(dir, runID string) (*Lock, error) {
	lockPath := filepath.Join(dir, "LOCK")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		data, _ := os.ReadFile(lockPath)
		pid, owner := parseOwner(string(data))
		_ = f.Close()
		return nil, &HeldError{PID: pid, RunID: owner, Path: lockPath}
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	content := fmt.Sprintf("pid=%d\nrun=%s\nstarted=%s\n",
		os.Getpid(), runID, time.Now().UTC().Format(time.RFC3339))
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Lock{file: f, path: lockPath}, nil
}

// Release drops the lock and removes the file. Safe on nil and safe to call
// twice.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func parseOwner(content string) (pid int, runID string) {
	for _, line := range strings.Split(content, "\n") {
		if after, ok := strings.CutPrefix(line, "pid="); ok {
			pid, _ = strconv.Atoi(after)
		}
		if after, ok := strings.CutPrefix(line, "run="); ok {
			runID = after
		}
	}
	return pid, runID
}
