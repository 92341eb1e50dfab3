package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)

	tbl := w.NewTable("Name", "Area (μm²)")
	tbl.SetAlign(1, AlignRight)
	tbl.AddRow("c0", "16.0")
	tbl.AddRow("switch_long", "2.5")
	tbl.Render()

	want := strings.Join([]string{
		"Name        │ Area (μm²)",
		"────────────┼───────────",
		"c0          │       16.0",
		"switch_long │        2.5",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("table mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTablePadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewWriter(&buf, true).NewTable("A", "B", "C")
	tbl.AddRow("x")
	tbl.Render()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[2] != "x" {
		t.Errorf("row = %q, want trailing cells trimmed", lines[2])
	}
}

func TestVerbosity(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	w.SetVerbosity(0)
	w.Info("hidden")
	w.Debug("hidden")
	w.Warning("shown")

	if got := buf.String(); got != "⚠ shown\n" {
		t.Errorf("output = %q", got)
	}
}
