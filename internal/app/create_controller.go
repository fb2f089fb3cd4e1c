package app

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"geonotes/internal/dispatch"
	"geonotes/internal/types"
)

const (
	createFocusText = iota
	createFocusPublic
	createFocusAudience
	createFocusCount
)

type CreateController struct {
	text     textarea.Model
	audience textinput.Model
	public   bool
	focus    int
	at       types.LatLng
}

func NewCreateController(width int) *CreateController {
	text := textarea.New()
	text.Placeholder = "What's here?"
	text.ShowLineNumbers = false
	text.SetWidth(width)
	text.SetHeight(5)

	audience := textinput.New()
	audience.Prompt = ""
	audience.Placeholder = "alice, bob"
	audience.SetWidth(width - 12)
	return &CreateController{text: text, audience: audience, public: true}
}

func (c *CreateController) Resize(width int) {
	c.text.SetWidth(width)
	c.audience.SetWidth(max(8, width-12))
}

func (c *CreateController) Enter(at types.LatLng) tea.Cmd {
	c.at = at
	c.public = true
	c.focus = createFocusText
	c.text.Reset()
	c.audience.SetValue("")
	c.audience.Blur()
	return c.text.Focus()
}

func (c *CreateController) Exit() {
	c.text.Reset()
	c.text.Blur()
	c.audience.SetValue("")
	c.audience.Blur()
	c.focus = createFocusText
}

func (c *CreateController) moveFocus(delta int) tea.Cmd {
	c.focus = (c.focus + delta + createFocusCount) % createFocusCount
	if c.public && c.focus == createFocusAudience {
		c.focus = (c.focus + delta + createFocusCount) % createFocusCount
	}
	c.text.Blur()
	c.audience.Blur()
	switch c.focus {
	case createFocusText:
		return c.text.Focus()
	case createFocusAudience:
		return c.audience.Focus()
	}
	return nil
}

func (c *CreateController) Update(msg tea.Msg, host modalHost) (bool, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			host.exitModal("")
			return true, nil
		case "tab":
			return true, c.moveFocus(1)
		case "shift+tab":
			return true, c.moveFocus(-1)
		case "ctrl+s":
			return true, host.runAction(c.submitEvent())
		case "space", " ", "enter":
			if c.focus == createFocusPublic {
				c.public = !c.public
				return true, nil
			}
		}
	}
	var cmd tea.Cmd
	switch c.focus {
	case createFocusText:
		c.text, cmd = c.text.Update(msg)
	case createFocusAudience:
		c.audience, cmd = c.audience.Update(msg)
	}
	return true, cmd
}

func (c *CreateController) submitEvent() dispatch.Event {
	audience := c.audience.Value()
	if c.public {
		audience = ""
	}
	return dispatch.Event{
		Action: dispatch.ActionCreateNote,
		Args: map[string]string{
			"text":          c.text.Value(),
			"public":        strconv.FormatBool(c.public),
			"allowed_users": audience,
		},
	}
}

func (c *CreateController) View() string {
	visibility := "[x] public"
	if !c.public {
		visibility = "[ ] public"
	}
	lines := []string{
		dialogHeaderStyle.Render(" New note "),
		helpStyle.Render(fmt.Sprintf("at %.5f, %.5f", c.at.Lat, c.at.Lng)),
		"",
		fieldLine("Text", c.focus == createFocusText, ""),
		c.text.View(),
		fieldLine("Visibility", c.focus == createFocusPublic, visibility),
	}
	if !c.public {
		lines = append(lines, fieldLine("Share with", c.focus == createFocusAudience, c.audience.View()))
	}
	lines = append(lines, "", helpStyle.Render("Ctrl+S to save • Tab to move • Space toggles public • Esc to cancel"))
	return modalBorderStyle.Render(strings.Join(lines, "\n"))
}

func (c *CreateController) Text() string {
	return strings.TrimSpace(c.text.Value())
}
