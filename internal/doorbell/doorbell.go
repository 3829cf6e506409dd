package doorbell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Suffix is appended to a mailbox name to form its doorbell file name.
const Suffix = ".bell"

// Ringer notifies a waiting consumer.
type Ringer interface {
	Ring() error
	Close() error
}

// Waiter blocks until rung or until a fallback interval elapses.
type Waiter interface {
	// Wait returns nil when rung or when fallback elapses, and ctx.Err()
	// when ctx is done first.
	Wait(ctx context.Context, fallback time.Duration) error
	Close() error
}

// Path returns the doorbell file path for the mailbox name in dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Suffix)
}

// Remove deletes the doorbell file for name. Missing files are not an error.
func Remove(dir, name string) error {
	if err := os.Remove(Path(dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("doorbell: remove: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// File-backed ringer
// -----------------------------------------------------------------------------

// FileRinger rings by rewriting the first byte of the doorbell file.
type FileRinger struct {
	mu    sync.Mutex
	file  *os.File
	count byte
}

// NewRinger opens (creating if needed) the doorbell file for name in dir.
func NewRinger(dir, name string) (*FileRinger, error) {
	f, err := os.OpenFile(Path(dir, name), os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("doorbell: open ringer: %w", err)
	}
	return &FileRinger{file: f}, nil
}

// Ring modifies the doorbell file, producing a write event for watchers.
func (r *FileRinger) Ring() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return fmt.Errorf("doorbell: ring on closed ringer")
	}
	r.count++
	if _, err := r.file.WriteAt([]byte{r.count}, 0); err != nil {
		return fmt.Errorf("doorbell: ring: %w", err)
	}
	return nil
}

// Close releases the doorbell file. Close is idempotent.
func (r *FileRinger) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// -----------------------------------------------------------------------------
// fsnotify-backed waiter
// -----------------------------------------------------------------------------

// Watcher waits for rings on one doorbell file.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  string
	rung    chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching the doorbell file for name in dir.
// The directory is watched rather than the file so the doorbell may be
// created after the watcher starts.
func NewWatcher(dir, name string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("doorbell: create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("doorbell: watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher: fw,
		target:  name + Suffix,
		rung:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.rung <- struct{}{}:
			default:
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Missed events only cost one fallback interval.
		}
	}
}

// Wait blocks until the doorbell rings, fallback elapses, or ctx is done.
func (w *Watcher) Wait(ctx context.Context, fallback time.Duration) error {
	timer := time.NewTimer(fallback)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.rung:
		return nil
	case <-timer.C:
		return nil
	}
}

// Close stops the watcher. Close is idempotent.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// -----------------------------------------------------------------------------
// Interval-only implementations
// -----------------------------------------------------------------------------

// Sleeper is a Waiter that only waits for the fallback interval. It is used
// when doorbells are disabled.
type Sleeper struct{}

// Wait sleeps for fallback or until ctx is done.
func (Sleeper) Wait(ctx context.Context, fallback time.Duration) error {
	timer := time.NewTimer(fallback)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close is a no-op.
func (Sleeper) Close() error { return nil }

// Silent is a Ringer that does nothing.
type Silent struct{}

// Ring is a no-op.
func (Silent) Ring() error { return nil }

// Close is a no-op.
func (Silent) Close() error { return nil }
