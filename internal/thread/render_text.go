package thread

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/k3a/html2text"
)

const indentUnit = "  "

var htmlTagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)

var (
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	noteIDStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	bodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// TextRenderer lays a thread out for the terminal. Width zero disables
// wrapping.
type TextRenderer struct {
	Width int
}

func (r TextRenderer) Render(forest []*Node, opts Options) Rendered {
	entries, out := layout(forest, opts)
	lines := make([]string, 0, len(entries)*2)
	for _, e := range entries {
		prefix := strings.Repeat(indentUnit, e.Indent)
		header := prefix + authorStyle.Render(SafeLine(e.Author)) + " " + noteIDStyle.Render(fmt.Sprintf("#%d", e.ID))
		if opts.Authenticated {
			header += " " + hintStyle.Render("↩ reply")
		}
		lines = append(lines, header)
		for _, line := range r.body(e.Text, len(prefix)) {
			lines = append(lines, prefix+bodyStyle.Render(line))
		}
	}
	out.Markup = strings.Join(lines, "\n")
	return out
}

func (r TextRenderer) body(text string, indent int) []string {
	plain := PlainText(text)
	if plain == "" {
		return nil
	}
	if limit := r.Width - indent; r.Width > 0 && limit > 10 {
		plain = ansi.Wordwrap(plain, limit, " -")
	}
	return strings.Split(plain, "\n")
}

// PlainText reduces a note body to printable terminal text. Bodies without
// tags pass through as-is since html2text treats a bare "<" as markup.
func PlainText(text string) string {
	plain := stripControl(ansi.Strip(strings.ReplaceAll(text, "\r\n", "\n")))
	if htmlTagPattern.MatchString(plain) {
		plain = strings.ReplaceAll(html2text.HTML2Text(plain), "\r\n", "\n")
		plain = stripControl(ansi.Strip(plain))
	}
	return strings.TrimSpace(plain)
}

// SafeLine strips escape sequences and control characters from a single
// display value such as an author name.
func SafeLine(text string) string {
	return stripControl(ansi.Strip(text))
}

// stripControl drops control characters other than newlines and tabs so note
// bodies cannot drive the terminal.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
