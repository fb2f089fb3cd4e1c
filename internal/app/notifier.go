package app

import (
	tea "charm.land/bubbletea/v2"
)

const noticeBuffer = 32

// Notifier collects messages from the auth and notes services so the UI can
// show them as toasts. Sends never block; when the buffer is full the notice
// is dropped.
type Notifier struct {
	ch chan noticeMsg
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan noticeMsg, noticeBuffer)}
}

func (n *Notifier) Info(msg string) {
	n.send(noticeMsg{level: toastLevelInfo, text: msg})
}

func (n *Notifier) Error(msg string) {
	n.send(noticeMsg{level: toastLevelError, text: msg})
}

func (n *Notifier) send(msg noticeMsg) {
	if n == nil {
		return
	}
	select {
	case n.ch <- msg:
	default:
	}
}

func listenNoticesCmd(n *Notifier) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		return <-n.ch
	}
}
