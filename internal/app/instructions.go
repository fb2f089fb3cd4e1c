package app

import "strings"

var instructionLines = []string{
	"arrows pan the map • + / - zoom • r refresh",
	"j / k select a note • enter open it • n new note here",
	"p log in or register • L log out • ? hide this help • q quit",
}

func (m *Model) instructionsView(width int) string {
	if m.instructionsHidden || width < minDialogWidth {
		return ""
	}
	lines := make([]string, 0, len(instructionLines))
	for _, line := range instructionLines {
		lines = append(lines, truncateToWidth(line, max(1, width-4)))
	}
	return instructionsStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) toggleInstructions() {
	m.instructionsHidden = !m.instructionsHidden
	if m.instructionsHidden {
		m.status = "help hidden (? to show)"
	}
}
