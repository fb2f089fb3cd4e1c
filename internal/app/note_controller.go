package app

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"geonotes/internal/dispatch"
	"geonotes/internal/notes"
	"geonotes/internal/thread"
)

type noteHost interface {
	modalHost
	actionBound(action string, noteID int) bool
	confirmDelete(noteID int)
}

// NoteController shows an open note and its reply thread. Reply targets are
// the root followed by replies in render order.
type NoteController struct {
	modal     *notes.Modal
	viewport  viewport.Model
	reply     textarea.Model
	targets   []int
	target    int
	replying  bool
	expanded  bool
	width     int
	height    int
	collapsed int
}

func NewNoteController(width, height int) *NoteController {
	reply := textarea.New()
	reply.Placeholder = "Write a reply…"
	reply.ShowLineNumbers = false
	reply.SetHeight(3)
	c := &NoteController{
		viewport:  viewport.New(viewport.WithWidth(width), viewport.WithHeight(height)),
		reply:     reply,
		collapsed: 3,
	}
	c.Resize(width, height)
	return c
}

func (c *NoteController) Resize(width, height int) {
	c.width = max(minDialogWidth, width)
	c.height = max(3, height)
	c.reply.SetWidth(c.width)
	c.viewport.SetWidth(c.width)
	c.viewport.SetHeight(c.bodyHeight())
	c.refresh()
}

// SetCollapsedLines is how many lines of a long note show before expanding.
func (c *NoteController) SetCollapsedLines(lines int) {
	if lines > 0 {
		c.collapsed = lines
	}
}

func (c *NoteController) bodyHeight() int {
	h := c.height - 2
	if c.replying {
		h -= c.reply.Height() + 1
	}
	return max(1, h)
}

func (c *NoteController) Open(modal *notes.Modal) {
	c.modal = modal
	c.targets = nil
	c.target = 0
	c.expanded = false
	c.stopReply()
	if modal != nil && modal.CanReply {
		c.targets = append([]int{modal.Root.ID}, modal.Rendered.Order...)
	}
	c.refresh()
	c.viewport.GotoTop()
}

func (c *NoteController) Close() {
	c.modal = nil
	c.targets = nil
	c.stopReply()
}

func (c *NoteController) IsOpen() bool {
	return c.modal != nil
}

func (c *NoteController) NoteID() int {
	if c.modal == nil {
		return 0
	}
	return c.modal.Root.ID
}

// Target is the note a reply would answer, or zero when replies are off.
func (c *NoteController) Target() int {
	if len(c.targets) == 0 {
		return 0
	}
	return c.targets[c.target]
}

func (c *NoteController) Replying() bool {
	return c.replying
}

func (c *NoteController) stopReply() {
	c.replying = false
	c.reply.Reset()
	c.reply.Blur()
	c.viewport.SetHeight(c.bodyHeight())
}

func (c *NoteController) Update(msg tea.Msg, host noteHost) (bool, tea.Cmd) {
	if c.modal == nil {
		return false, nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)
	if c.replying {
		if isKey {
			switch keyMsg.String() {
			case "esc":
				target := c.Target()
				if host.actionBound(dispatch.ActionReplyCancel, target) {
					_ = host.runActionNow(dispatch.Event{Action: dispatch.ActionReplyCancel, NoteID: target})
				}
				c.stopReply()
				return true, nil
			case "ctrl+s":
				return true, host.runAction(dispatch.Event{
					Action: dispatch.ActionReplySubmit,
					NoteID: c.Target(),
					Args:   map[string]string{"text": c.reply.Value()},
				})
			}
		}
		var cmd tea.Cmd
		c.reply, cmd = c.reply.Update(msg)
		return true, cmd
	}
	if !isKey {
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return true, cmd
	}

	switch keyMsg.String() {
	case "esc", "q":
		_ = host.runActionNow(dispatch.Event{Action: dispatch.ActionCloseNote, NoteID: c.NoteID()})
		host.exitModal("")
		return true, nil
	case "tab":
		c.cycle(1)
		return true, nil
	case "shift+tab":
		c.cycle(-1)
		return true, nil
	case "r":
		return true, c.startReply(host)
	case "d":
		if c.modal.CanDelete {
			host.confirmDelete(c.NoteID())
		}
		return true, nil
	case "y":
		_ = host.runActionNow(dispatch.Event{Action: dispatch.ActionCopyNote, NoteID: c.NoteID()})
		return true, nil
	case "m":
		if c.modal.Long {
			c.expanded = !c.expanded
			c.refresh()
		}
		return true, nil
	}
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return true, cmd
}

func (c *NoteController) cycle(delta int) {
	if len(c.targets) == 0 {
		return
	}
	c.target = (c.target + delta + len(c.targets)) % len(c.targets)
	c.refresh()
}

func (c *NoteController) startReply(host noteHost) tea.Cmd {
	target := c.Target()
	if target == 0 {
		return nil
	}
	if host.actionBound(dispatch.ActionReplyToggle, target) {
		_ = host.runActionNow(dispatch.Event{Action: dispatch.ActionReplyToggle, NoteID: target})
	}
	c.replying = true
	c.viewport.SetHeight(c.bodyHeight())
	return c.reply.Focus()
}

func (c *NoteController) refresh() {
	if c.modal == nil {
		c.viewport.SetContent("")
		return
	}
	c.viewport.SetContent(c.content())
}

func (c *NoteController) content() string {
	root := c.modal.Root
	var b strings.Builder
	visibility := "public"
	if !root.Public {
		visibility = "private"
		if len(root.AllowedUsers) > 0 {
			visibility += " • shared with " + strings.Join(root.AllowedUsers, ", ")
		}
	}
	b.WriteString(userStyle.Render(thread.SafeLine(root.UserID)))
	b.WriteString(" ")
	b.WriteString(helpStyle.Render(fmt.Sprintf("#%d • %s • %.5f, %.5f", root.ID, visibility, root.Latitude, root.Longitude)))
	b.WriteString("\n\n")

	body := renderNoteBody(root.Text, c.width)
	if c.modal.Long && !c.expanded {
		lines := strings.Split(body, "\n")
		if len(lines) > c.collapsed {
			body = strings.Join(lines[:c.collapsed], "\n") + "\n" + helpStyle.Render("… m to show more")
		}
	}
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(1, c.width))))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Replies (%d)", c.modal.ReplyCount)))
	if markup := c.modal.Rendered.Markup; markup != "" {
		b.WriteString("\n")
		b.WriteString(markup)
	}
	return b.String()
}

func (c *NoteController) View() string {
	if c.modal == nil {
		return ""
	}
	lines := []string{c.viewport.View()}
	if c.replying {
		lines = append(lines, replyTargetStyle.Render(fmt.Sprintf("Replying to #%d", c.Target())), c.reply.View())
	}
	lines = append(lines, c.actionsLine())
	return strings.Join(lines, "\n")
}

func (c *NoteController) actionsLine() string {
	parts := []string{}
	if c.replying {
		parts = append(parts, "ctrl+s send", "esc cancel")
		return helpStyle.Render(strings.Join(parts, " • "))
	}
	if target := c.Target(); target != 0 {
		parts = append(parts, replyTargetStyle.Render(fmt.Sprintf("→ #%d", target)), "r reply", "tab next")
	}
	if c.modal.CanDelete {
		parts = append(parts, deleteButtonStyle.Render("d delete"))
	}
	parts = append(parts, copyButtonStyle.Render("y copy"))
	if c.modal.Long {
		parts = append(parts, "m more")
	}
	parts = append(parts, "esc close")
	return helpStyle.Render(strings.Join(parts, " • "))
}
