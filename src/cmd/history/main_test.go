package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screen-region-capture/src/capture"
	"screen-region-capture/src/history"
	"screen-region-capture/src/screenshot"
)

func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.sqlite")
	j, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []capture.Record{
		{Path: "Notes_20240301_120000.png", Session: "Notes", Region: screenshot.Region{X: 10, Y: 20, Width: 300, Height: 200}, TakenAt: base, PNG: []byte{1, 2, 3}},
		{Path: "Chart_20240301_120100.png", Session: "Chart", Region: screenshot.Region{X: -1900, Y: 0, Width: 640, Height: 480}, TakenAt: base.Add(time.Minute), PNG: []byte{1}},
		{Path: "Notes_20240301_120200.png", Session: "Notes", Region: screenshot.Region{X: 0, Y: 0, Width: 50, Height: 60}, TakenAt: base.Add(2 * time.Minute), PNG: []byte{1, 2}},
	}
	for _, r := range records {
		if err := j.Saved(r); err != nil {
			t.Fatalf("Saved: %v", err)
		}
	}
	return path
}

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes single dash long flags",
			in:   []string{"capture-history", "-db", "h.sqlite", "-json"},
			out:  []string{"capture-history", "--db", "h.sqlite", "--json"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"capture-history", "-session=Notes", "-limit=5"},
			out:  []string{"capture-history", "--session=Notes", "--limit=5"},
		},
		{
			name: "Leaves short and unknown flags unchanged",
			in:   []string{"capture-history", "-v", "--json", "-dbx"},
			out:  []string{"capture-history", "-v", "--json", "-dbx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if strings.Join(got, " ") != strings.Join(tt.out, " ") {
				t.Fatalf("Expected %q, got %q", tt.out, got)
			}
		})
	}
}

func TestListJSONFiltersSession(t *testing.T) {
	path := seedJournal(t)
	var out bytes.Buffer
	if err := runWithArgs([]string{"capture-history", "--db", path, "--session", "Notes", "--json"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var got []captureResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 Notes captures, got %d", len(got))
	}
	if got[0].Path != "Notes_20240301_120200.png" {
		t.Errorf("expected newest first, got %q", got[0].Path)
	}
	if got[1].Width != 300 || got[1].Height != 200 || got[1].Size != 3 {
		t.Errorf("unexpected entry %+v", got[1])
	}
}

func TestListTableWithLimit(t *testing.T) {
	path := seedJournal(t)
	var out bytes.Buffer
	if err := runWithArgs([]string{"capture-history", "-db", path, "-limit=1"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and 1 row, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "TIME") || !strings.Contains(lines[1], "50x60+0+0") {
		t.Errorf("unexpected table %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	t.Setenv("HISTORY_DB", "")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"No database configured", []string{"capture-history"}, "no history database"},
		{"Missing database file", []string{"capture-history", "--db", filepath.Join(t.TempDir(), "none.sqlite")}, "none.sqlite"},
		{"Bad limit", []string{"capture-history", "--db", "x.sqlite", "--limit", "0"}, "--limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runWithArgs(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
