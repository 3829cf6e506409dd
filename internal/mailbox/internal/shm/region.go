//go:build darwin || linux

package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultDir is where regions live when no directory is configured.
const DefaultDir = "/dev/shm"

// Region is a shared memory mapping of a fixed-capacity file.
// Bytes returns the live mapping; it must not be used after Close.
//
// Every open region holds a shared flock on its file until Close, so
// InUse can tell a live region from one left behind by a crashed process.
type Region struct {
	name string
	path string
	fd   int
	data []byte

	mu     sync.Mutex
	closed bool
}

// Create creates a new region file of exactly capacity bytes and maps it.
// It fails if a file with the same name already exists, so two front ends
// can never share a region by accident. The new region is zero-filled.
func Create(dir, name string, capacity int) (*Region, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("shm: capacity must be positive, got %d", capacity)
	}
	path, err := regionPath(dir, name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: create %s: %w", path, err)
	}
	fail := func(format string, args ...any) (*Region, error) {
		_ = unix.Close(fd)
		_ = unix.Unlink(path)
		return nil, fmt.Errorf(format, args...)
	}

	if err := unix.Flock(fd, unix.LOCK_SH); err != nil {
		return fail("shm: lock %s: %w", path, err)
	}
	if err := unix.Ftruncate(fd, int64(capacity)); err != nil {
		return fail("shm: truncate %s to %d bytes: %w", path, capacity, err)
	}

	data, err := unix.Mmap(fd, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail("shm: mmap %s: %w", path, err)
	}

	return &Region{name: name, path: path, fd: fd, data: data}, nil
}

// Open maps an existing region. The capacity is taken from the file size.
func Open(dir, name string) (*Region, error) {
	path, err := regionPath(dir, name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	fail := func(format string, args ...any) (*Region, error) {
		_ = unix.Close(fd)
		return nil, fmt.Errorf(format, args...)
	}

	if err := unix.Flock(fd, unix.LOCK_SH); err != nil {
		return fail("shm: lock %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return fail("shm: stat %s: %w", path, err)
	}
	if stat.Size <= 0 {
		return fail("shm: region %s is empty", path)
	}

	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail("shm: mmap %s: %w", path, err)
	}

	return &Region{name: name, path: path, fd: fd, data: data}, nil
}

// Remove unlinks the backing file of a region. Existing mappings stay
// valid until they are closed.
func Remove(dir, name string) error {
	path, err := regionPath(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shm: remove %s: %w", path, err)
	}
	return nil
}

// InUse reports whether any process still has the region open. It fails
// if the region file does not exist.
func InUse(dir, name string) (bool, error) {
	path, err := regionPath(dir, name)
	if err != nil {
		return false, err
	}
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return false, fmt.Errorf("shm: open %s: %w", path, err)
	}
	defer unix.Close(fd)

	err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, unix.EWOULDBLOCK):
		return true, nil
	default:
		return false, fmt.Errorf("shm: probe %s: %w", path, err)
	}
}

// Name returns the identifier the region was opened with.
func (r *Region) Name() string {
	return r.name
}

// Path returns the backing file path.
func (r *Region) Path() string {
	return r.path
}

// Bytes returns the mapped memory. Panics if the region has been closed.
func (r *Region) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		panic("shm: use of closed region")
	}
	return r.data
}

// Len returns the region capacity in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Close unmaps the region. Close is idempotent.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	err := unix.Munmap(r.data)
	r.data = nil
	closeErr := unix.Close(r.fd)
	if err != nil {
		return fmt.Errorf("shm: munmap %s: %w", r.path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("shm: close %s: %w", r.path, closeErr)
	}
	return nil
}

// regionPath joins dir and name, rejecting names that would escape dir.
func regionPath(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("shm: invalid region name %q", name)
	}
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, name), nil
}
