package app

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestRenderNoteBodyKeepsText(t *testing.T) {
	out := xansi.Strip(renderNoteBody("Meet at the **fountain**", 40))
	if !strings.Contains(out, "fountain") || strings.Contains(out, "**") {
		t.Fatalf("expected rendered markdown, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if xansi.StringWidth(line) > 40 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestRenderNoteBodyStripsEscapes(t *testing.T) {
	out := xansi.Strip(renderNoteBody("\x1b[31mred\x1b[0m alert", 40))
	if !strings.Contains(out, "red alert") {
		t.Fatalf("expected escapes removed, got %q", out)
	}
	if renderNoteBody("   ", 40) != "" {
		t.Fatalf("expected blank input to render nothing")
	}
}
