package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"geonotes/internal/auth"
	"geonotes/internal/dispatch"
)

type authField int

const (
	authFieldUsername authField = iota
	authFieldPassword
	authFieldEmail
	authFieldCode
)

// AuthController drives the login, register and verify forms. The current
// step comes from the auth manager; the controller only tracks focus.
type AuthController struct {
	step   auth.Step
	inputs map[authField]*textinput.Model
	focus  int
}

func NewAuthController(width int) *AuthController {
	c := &AuthController{step: auth.StepLogin, inputs: map[authField]*textinput.Model{}}
	for field, placeholder := range map[authField]string{
		authFieldUsername: "username",
		authFieldPassword: "password",
		authFieldEmail:    "you@example.com",
		authFieldCode:     "code from email",
	} {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = placeholder
		input.CharLimit = 256
		input.SetWidth(width)
		if field == authFieldPassword {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		c.inputs[field] = &input
	}
	return c
}

func (c *AuthController) Step() auth.Step {
	return c.step
}

// Enter opens the form at step, clearing fields when the step changes.
func (c *AuthController) Enter(step auth.Step) tea.Cmd {
	if step == "" {
		step = auth.StepLogin
	}
	if step != c.step {
		c.reset(step == auth.StepVerify)
	}
	c.step = step
	c.focus = 0
	return c.focusCurrent()
}

// SetStep follows the manager without clearing what has been typed.
func (c *AuthController) SetStep(step auth.Step) tea.Cmd {
	if step == "" || step == c.step {
		return nil
	}
	c.step = step
	c.focus = 0
	return c.focusCurrent()
}

func (c *AuthController) Exit() {
	c.reset(false)
	c.step = auth.StepLogin
	c.focus = 0
}

func (c *AuthController) reset(keepAccount bool) {
	for field, input := range c.inputs {
		input.Blur()
		if keepAccount && field != authFieldCode {
			continue
		}
		input.SetValue("")
	}
}

func (c *AuthController) fields() []authField {
	switch c.step {
	case auth.StepRegister:
		return []authField{authFieldUsername, authFieldPassword, authFieldEmail}
	case auth.StepVerify:
		return []authField{authFieldCode}
	default:
		return []authField{authFieldUsername, authFieldPassword}
	}
}

func (c *AuthController) focusCurrent() tea.Cmd {
	fields := c.fields()
	var cmd tea.Cmd
	for i, field := range fields {
		if i == c.focus {
			cmd = c.inputs[field].Focus()
			continue
		}
		c.inputs[field].Blur()
	}
	return cmd
}

func (c *AuthController) move(delta int) tea.Cmd {
	n := len(c.fields())
	c.focus = (c.focus + delta + n) % n
	return c.focusCurrent()
}

func (c *AuthController) value(field authField) string {
	return c.inputs[field].Value()
}

func (c *AuthController) Update(msg tea.Msg, host modalHost) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		input := c.inputs[c.fields()[c.focus]]
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return true, cmd
	}
	switch keyMsg.String() {
	case "esc":
		host.exitModal("")
		return true, nil
	case "tab", "down":
		return true, c.move(1)
	case "shift+tab", "up":
		return true, c.move(-1)
	case "ctrl+r":
		action := dispatch.ActionShowRegister
		if c.step != auth.StepLogin {
			action = dispatch.ActionShowLogin
		}
		_ = host.runActionNow(dispatch.Event{Action: action})
		return true, nil
	case "enter":
		if c.focus < len(c.fields())-1 {
			return true, c.move(1)
		}
		return true, host.runAction(c.submitEvent())
	}
	input := c.inputs[c.fields()[c.focus]]
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return true, cmd
}

func (c *AuthController) submitEvent() dispatch.Event {
	switch c.step {
	case auth.StepRegister:
		return dispatch.Event{Action: dispatch.ActionSendVerification, Args: map[string]string{
			"username": c.value(authFieldUsername),
			"password": c.value(authFieldPassword),
			"email":    c.value(authFieldEmail),
		}}
	case auth.StepVerify:
		return dispatch.Event{Action: dispatch.ActionVerify, Args: map[string]string{
			"code": c.value(authFieldCode),
		}}
	default:
		return dispatch.Event{Action: dispatch.ActionLogin, Args: map[string]string{
			"username": c.value(authFieldUsername),
			"password": c.value(authFieldPassword),
		}}
	}
}

func (c *AuthController) View() string {
	title, hint := "Log in", "Enter to log in • Ctrl+R to register • Esc to close"
	switch c.step {
	case auth.StepRegister:
		title, hint = "Register", "Enter to send a verification code • Ctrl+R to log in • Esc to close"
	case auth.StepVerify:
		title, hint = "Verify email", "Enter to finish registration • Ctrl+R to start over • Esc to close"
	}
	lines := []string{dialogHeaderStyle.Render(" " + title + " "), ""}
	labels := map[authField]string{
		authFieldUsername: "Username",
		authFieldPassword: "Password",
		authFieldEmail:    "Email",
		authFieldCode:     "Code",
	}
	for i, field := range c.fields() {
		lines = append(lines, fieldLine(labels[field], i == c.focus, c.inputs[field].View()))
	}
	if c.step == auth.StepVerify && c.value(authFieldEmail) != "" {
		lines = append(lines, "", helpStyle.Render("Code sent to "+c.value(authFieldEmail)))
	}
	lines = append(lines, "", helpStyle.Render(hint))
	return modalBorderStyle.Render(strings.Join(lines, "\n"))
}
