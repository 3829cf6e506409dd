// Package cleanup removes mailbox regions and doorbell files left behind
// by editor sessions that ended without tearing down their channel, for
// example when the front end was killed.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/doorbell"
	"github.com/Iron-Ham/firefly/internal/logging"
	"github.com/Iron-Ham/firefly/internal/mailbox"
)

// DefaultMinAge keeps files that were touched recently. A front end holds
// its region lock only after creating the file, so a brand new region may
// briefly look unused.
const DefaultMinAge = time.Minute

// Kind is the type of a leftover file.
type Kind string

const (
	KindRegion   Kind = "region"
	KindDoorbell Kind = "doorbell"
)

// Stale is a leftover file that no running session uses.
type Stale struct {
	Name    string // mailbox name, without the doorbell suffix
	Path    string
	Kind    Kind
	ModTime time.Time
}

// Results contains the outcome of a cleanup run
type Results struct {
	Removed []Stale
	InUse   int
	Errors  []string
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithLogger sets the logger for removal messages
func WithLogger(logger *logging.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// WithMinAge overrides DefaultMinAge
func WithMinAge(d time.Duration) Option {
	return func(c *Cleaner) {
		c.minAge = d
	}
}

// Cleaner finds and removes stale firefly files in one mailbox directory.
type Cleaner struct {
	dir    string
	minAge time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// New creates a Cleaner for dir
func New(dir string, opts ...Option) *Cleaner {
	c := &Cleaner{
		dir:    dir,
		minAge: DefaultMinAge,
		logger: logging.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scan lists stale files without removing anything. The second result is
// the number of regions that are still open by some process.
//
// A region is stale when no process holds it open. A doorbell is stale
// when its region is stale or gone.
func (c *Cleaner) Scan() ([]Stale, int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	regions := make(map[string]os.DirEntry)
	var bells []os.DirEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, channel.NamePrefix) {
			continue
		}
		if strings.HasSuffix(name, doorbell.Suffix) {
			bells = append(bells, e)
			continue
		}
		regions[name] = e
	}

	var stale []Stale
	live := make(map[string]bool)
	var inUse int
	for name, e := range regions {
		used, err := mailbox.InUse(c.dir, name)
		if err != nil {
			// Removed by its owner since ReadDir.
			continue
		}
		if used {
			live[name] = true
			inUse++
			continue
		}
		if s, ok := c.stale(e, name, KindRegion); ok {
			stale = append(stale, s)
		} else {
			live[name] = true
		}
	}

	for _, e := range bells {
		name := strings.TrimSuffix(e.Name(), doorbell.Suffix)
		if live[name] {
			continue
		}
		if s, ok := c.stale(e, name, KindDoorbell); ok {
			stale = append(stale, s)
		}
	}

	slices.SortFunc(stale, func(a, b Stale) int {
		return strings.Compare(a.Path, b.Path)
	})
	return stale, inUse, nil
}

// stale builds a Stale entry when e is older than the minimum age.
func (c *Cleaner) stale(e os.DirEntry, name string, kind Kind) (Stale, bool) {
	info, err := e.Info()
	if err != nil {
		return Stale{}, false
	}
	if c.now().Sub(info.ModTime()) < c.minAge {
		return Stale{}, false
	}
	return Stale{
		Name:    name,
		Path:    filepath.Join(c.dir, e.Name()),
		Kind:    kind,
		ModTime: info.ModTime(),
	}, true
}

// Run scans the directory and removes every stale file. With dryRun set
// nothing is removed and Results.Removed lists what would have been.
func (c *Cleaner) Run(dryRun bool) (*Results, error) {
	stale, inUse, err := c.Scan()
	if err != nil {
		return nil, err
	}

	results := &Results{InUse: inUse}
	for _, s := range stale {
		if dryRun {
			results.Removed = append(results.Removed, s)
			continue
		}

		var err error
		switch s.Kind {
		case KindRegion:
			err = mailbox.Remove(c.dir, s.Name)
		case KindDoorbell:
			err = doorbell.Remove(c.dir, s.Name)
		}
		if err != nil {
			c.logger.Warn("remove stale file", "path", s.Path, "error", err.Error())
			results.Errors = append(results.Errors, fmt.Sprintf("%s: %v", s.Path, err))
			continue
		}
		c.logger.Info("removed stale file", "path", s.Path, "kind", string(s.Kind))
		results.Removed = append(results.Removed, s)
	}
	return results, nil
}
