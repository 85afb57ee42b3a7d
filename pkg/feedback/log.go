package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/matzehuels/photobook/pkg/errors"
)

// lockRetry is the polling interval while waiting for the log lock.
const lockRetry = 50 * time.Millisecond

// Log appends feedback entries to a JSON-lines file. Writers in different
// processes are serialized with an advisory lock on path + ".lock", writers
// sharing a Log with its mutex.
type Log struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewLog returns a Log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Record validates e, stamps it when TS is zero and appends it as one line.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.Page < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "page must be >= 1, got %d", e.Page)
	}
	if !slices.Contains(Actions(), e.Action) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown action %q", e.Action)
	}
	if e.TS.IsZero() {
		e.TS = time.Now().UTC().Truncate(time.Second)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(l.path), err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, err := l.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", l.path)
	}
	defer l.lock.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	return f.Close()
}
