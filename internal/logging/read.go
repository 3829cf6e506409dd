package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Process string         `json:"process,omitempty"`
	Channel string         `json:"channel,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	// Level keeps entries at or above this level.
	Level string

	// Process keeps entries from one process role.
	Process string

	// MessageContains keeps entries whose message contains the substring.
	MessageContains string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadEntries parses the named log files in dir and returns their entries
// merged in time order. Missing files are skipped; unparsable lines are
// dropped.
func ReadEntries(dir string, files ...string) ([]Entry, error) {
	var entries []Entry
	for _, name := range files {
		fileEntries, err := readFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Time.Compare(b.Time)
	})
	return entries, nil
}

func readFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if entry, err := parseEntry(line); err == nil {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file %s: %w", path, err)
	}
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var e Entry
	if s, ok := raw["time"].(string); ok {
		e.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	e.Level, _ = raw["level"].(string)
	e.Message, _ = raw["msg"].(string)
	e.Process, _ = raw["process"].(string)
	e.Channel, _ = raw["channel"].(string)

	for _, k := range []string{"time", "level", "msg", "process", "channel"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Attrs = raw
	}
	return e, nil
}

// FilterEntries returns the entries matching f.
func FilterEntries(entries []Entry, f Filter) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f Filter) matches(e Entry) bool {
	if f.Level != "" && levelOrder[strings.ToUpper(e.Level)] < levelOrder[ParseLevel(f.Level)] {
		return false
	}
	if f.Process != "" && e.Process != f.Process {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(e.Message, f.MessageContains) {
		return false
	}
	return true
}

// Format renders an entry as a single human-readable line.
func (e Entry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s", e.Time.Format("15:04:05.000"), e.Level)
	if e.Process != "" {
		fmt.Fprintf(&b, " [%s]", e.Process)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}
