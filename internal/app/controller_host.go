package app

import (
	tea "charm.land/bubbletea/v2"

	"geonotes/internal/dispatch"
)

// modalHost is what the dialog controllers need from the model. runAction is
// for backend calls and returns a command; runActionNow is for local state.
type modalHost interface {
	runAction(ev dispatch.Event) tea.Cmd
	runActionNow(ev dispatch.Event) error
	exitModal(status string)
}

const (
	minDialogWidth = 24
	formWidth      = 48
)

func fieldLine(label string, focused bool, value string) string {
	style := labelStyle
	marker := "  "
	if focused {
		style = focusedLabelStyle
		marker = "▸ "
	}
	return marker + style.Render(padToWidth(label, 10)) + " " + value
}
