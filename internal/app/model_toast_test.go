package app

import (
	"context"
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestShowInfoToastSetsStatusAndToast(t *testing.T) {
	m := NewModel(context.Background(), Deps{})
	m.showInfoToast("note copied")

	if m.status != "note copied" {
		t.Fatalf("expected status to be set, got %q", m.status)
	}
	if m.toastLevel != toastLevelInfo {
		t.Fatalf("expected info toast level, got %v", m.toastLevel)
	}
	if !m.toastActive(time.Now()) {
		t.Fatalf("expected toast to be active")
	}
}

func TestHandleTickClearsExpiredToast(t *testing.T) {
	m := NewModel(context.Background(), Deps{})
	m.showWarningToast("slow down")

	m.handleTick(tickMsg(time.Now().Add(m.toastDuration + time.Millisecond)))
	if m.toastText != "" {
		t.Fatalf("expected toast to clear after expiry, got %q", m.toastText)
	}
	if m.toastLevel != toastLevelInfo {
		t.Fatalf("expected level reset after clear, got %v", m.toastLevel)
	}
}

func TestToastDurationFollowsConfig(t *testing.T) {
	m := NewModel(context.Background(), Deps{})
	if m.toastDuration != 3*time.Second {
		t.Fatalf("expected default message duration, got %v", m.toastDuration)
	}
}

func TestRenderShowsToast(t *testing.T) {
	m := NewModel(context.Background(), Deps{})
	m.resize(100, 20)
	m.showErrorToast("Failed to load notes")

	plain := xansi.Strip(m.render())
	if !strings.Contains(plain, "Failed to load notes") {
		t.Fatalf("expected toast text in view output: %q", plain)
	}
}

func TestNoticeMessagesBecomeToasts(t *testing.T) {
	notices := NewNotifier()
	m := NewModel(context.Background(), Deps{Notices: notices})
	notices.Error("Login failed. Please check your credentials.")

	msg := listenNoticesCmd(notices)()
	_, next := m.Update(msg)
	if m.toastText != "Login failed. Please check your credentials." || m.toastLevel != toastLevelError {
		t.Fatalf("unexpected toast: %q level=%v", m.toastText, m.toastLevel)
	}
	if next == nil {
		t.Fatalf("expected the model to keep listening for notices")
	}
}

func TestNotifierDropsWhenFull(t *testing.T) {
	notices := NewNotifier()
	for i := 0; i < noticeBuffer+5; i++ {
		notices.Info("hello")
	}
	if got := len(notices.ch); got != noticeBuffer {
		t.Fatalf("expected buffer to cap at %d, got %d", noticeBuffer, got)
	}
}
