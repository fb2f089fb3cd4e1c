package app

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func stubClipboard(t *testing.T, system, osc func(string) error) {
	t.Helper()
	prevSystem, prevOSC := clipboardWriteAll, clipboardWriteOSC52
	clipboardWriteAll, clipboardWriteOSC52 = system, osc
	t.Cleanup(func() {
		clipboardWriteAll, clipboardWriteOSC52 = prevSystem, prevOSC
	})
}

func TestCopyTextToClipboardPrefersSystem(t *testing.T) {
	var got string
	stubClipboard(t,
		func(text string) error { got = text; return nil },
		func(string) error { t.Fatalf("osc52 should not be used"); return nil },
	)
	method, err := copyTextToClipboard("hello")
	if err != nil || method != clipboardMethodSystem || got != "hello" {
		t.Fatalf("unexpected result: method=%v err=%v got=%q", method, err, got)
	}
}

func TestCopyTextToClipboardFallsBackToOSC52(t *testing.T) {
	var got string
	stubClipboard(t,
		func(string) error { return errors.New("no xclip") },
		func(text string) error { got = text; return nil },
	)
	method, err := copyTextToClipboard("hello")
	if err != nil || method != clipboardMethodOSC52 || got != "hello" {
		t.Fatalf("unexpected result: method=%v err=%v got=%q", method, err, got)
	}
}

func TestCopyTextToClipboardReportsBothFailures(t *testing.T) {
	stubClipboard(t,
		func(string) error { return errors.New("no xclip") },
		func(string) error { return errors.New("no tty") },
	)
	_, err := copyTextToClipboard("hello")
	if err == nil || !strings.Contains(err.Error(), "no xclip") || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("expected both failures in error, got %v", err)
	}
}

func TestWriteOSC52SequenceEncodesText(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")
	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "note text"); err != nil {
		t.Fatalf("writeOSC52Sequence: %v", err)
	}
	if !strings.Contains(buf.String(), base64.StdEncoding.EncodeToString([]byte("note text"))) {
		t.Fatalf("expected base64 payload in %q", buf.String())
	}
}

func TestShouldAttemptOSC52(t *testing.T) {
	t.Setenv("TERM", "xterm")
	t.Setenv("GEONOTES_DISABLE_OSC52", "")
	if !shouldAttemptOSC52() {
		t.Fatalf("expected osc52 on a capable terminal")
	}
	t.Setenv("GEONOTES_DISABLE_OSC52", "true")
	if shouldAttemptOSC52() {
		t.Fatalf("expected env var to disable osc52")
	}
	t.Setenv("GEONOTES_DISABLE_OSC52", "")
	t.Setenv("TERM", "dumb")
	if shouldAttemptOSC52() {
		t.Fatalf("expected dumb terminal to skip osc52")
	}
}
