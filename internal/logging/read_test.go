package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadEntries_MergesByTime(t *testing.T) {
	dir := t.TempDir()
	engine := `{"time":"2026-01-02T10:00:00.002Z","level":"INFO","msg":"engine started","process":"engine"}
not json
{"time":"2026-01-02T10:00:00.004Z","level":"WARN","msg":"decode failed","process":"engine","channel":"c-ui","size":3}
`
	front := `{"time":"2026-01-02T10:00:00.001Z","level":"INFO","msg":"channel created","process":"frontend"}

{"time":"2026-01-02T10:00:00.003Z","level":"DEBUG","msg":"submit","process":"frontend"}
`
	if err := os.WriteFile(filepath.Join(dir, EngineLogFile), []byte(engine), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FrontendLogFile), []byte(front), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadEntries(dir, EngineLogFile, FrontendLogFile, "missing.log")
	if err != nil {
		t.Fatalf("ReadEntries() error = %v", err)
	}

	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	want := []string{"channel created", "engine started", "submit", "decode failed"}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	last := entries[3]
	if last.Channel != "c-ui" || last.Process != "engine" {
		t.Errorf("last entry = %+v", last)
	}
	if diff := cmp.Diff(map[string]any{"size": float64(3)}, last.Attrs); diff != "" {
		t.Errorf("Attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []Entry{
		{Level: "DEBUG", Message: "submit", Process: "frontend"},
		{Level: "INFO", Message: "engine started", Process: "engine"},
		{Level: "WARN", Message: "decode failed", Process: "engine"},
		{Level: "ERROR", Message: "engine exited", Process: "frontend"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"submit", "engine started", "decode failed", "engine exited"}},
		{"warn and up", Filter{Level: "warn"}, []string{"decode failed", "engine exited"}},
		{"process", Filter{Process: "engine"}, []string{"engine started", "decode failed"}},
		{"message", Filter{MessageContains: "engine"}, []string{"engine started", "engine exited"}},
		{"combined", Filter{Level: LevelInfo, Process: "frontend"}, []string{"engine exited"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range FilterEntries(entries, tt.filter) {
				got = append(got, e.Message)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntry_Format(t *testing.T) {
	entries, _ := ReadEntries(t.TempDir(), EngineLogFile)
	if len(entries) != 0 {
		t.Fatalf("missing file should yield no entries, got %d", len(entries))
	}

	e, err := parseEntry(`{"time":"2026-01-02T10:00:00.5Z","level":"WARN","msg":"decode failed","process":"engine","b":2,"a":"x"}`)
	if err != nil {
		t.Fatal(err)
	}
	got := e.Format()
	if !strings.HasSuffix(got, "WARN  [engine] decode failed a=x b=2") {
		t.Errorf("Format() = %q", got)
	}
}
