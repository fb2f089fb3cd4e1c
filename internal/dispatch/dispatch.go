package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	ActionShowAuth           = "show-auth"
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionShowRegister       = "show-register"
	ActionShowLogin          = "show-login"
	ActionSendVerification   = "send-verification"
	ActionVerify             = "verify"
	ActionMoveMap            = "move-map"
	ActionFetchNotes         = "fetch-notes"
	ActionBeginCreate        = "begin-create"
	ActionCreateNote         = "create-note"
	ActionOpenNote           = "open-note"
	ActionCloseNote          = "close-note"
	ActionReplyToggle        = "reply-toggle"
	ActionReplyCancel        = "reply-cancel"
	ActionReplySubmit        = "reply-submit"
	ActionDeleteNote         = "delete-note"
	ActionToggleInstructions = "toggle-instructions"
	ActionCopyNote           = "copy-note"
)

var ErrUnhandled = errors.New("no handler for action")

// Event is a UI action. NoteID is zero for actions that are not scoped to a
// rendered note; Args carries free-form input such as form fields.
type Event struct {
	Action string
	NoteID int
	Args   map[string]string
}

func (e Event) Arg(key string) string {
	if e.Args == nil {
		return ""
	}
	return e.Args[key]
}

type Handler func(ctx context.Context, ev Event) error

type bindingKey struct {
	action string
	noteID int
}

// Table routes events to handlers. Scoped bindings win over global ones.
type Table struct {
	mu     sync.RWMutex
	global map[string]Handler
	scoped map[bindingKey]Handler
}

func NewTable() *Table {
	return &Table{
		global: map[string]Handler{},
		scoped: map[bindingKey]Handler{},
	}
}

func (t *Table) Register(action string, handler Handler) {
	action = strings.TrimSpace(action)
	if action == "" || handler == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.global[action] = handler
}

// Bind attaches a handler to one note's element. Binding the same action and
// note again replaces the previous handler.
func (t *Table) Bind(action string, noteID int, handler Handler) {
	action = strings.TrimSpace(action)
	if action == "" || handler == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scoped[bindingKey{action: action, noteID: noteID}] = handler
}

func (t *Table) Unbind(noteID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.scoped {
		if key.noteID == noteID {
			delete(t.scoped, key)
		}
	}
}

func (t *Table) UnbindAll(action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.scoped {
		if key.action == action {
			delete(t.scoped, key)
		}
	}
}

func (t *Table) Bound(action string, noteID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.scoped[bindingKey{action: action, noteID: noteID}]
	return ok
}

// Len reports the number of scoped bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.scoped)
}

func (t *Table) Actions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.global))
	for action := range t.global {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}

func (t *Table) Dispatch(ctx context.Context, ev Event) error {
	t.mu.RLock()
	handler, ok := t.scoped[bindingKey{action: ev.Action, noteID: ev.NoteID}]
	if !ok {
		handler, ok = t.global[ev.Action]
	}
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnhandled, ev.Action)
	}
	return handler(ctx, ev)
}
