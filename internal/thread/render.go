package thread

import (
	"fmt"

	"geonotes/internal/dispatch"
)

const DefaultMaxIndent = 3

type Options struct {
	// Authenticated adds reply, cancel and submit affordances.
	Authenticated bool
	MaxIndent     int
	// RootID, when set for an authenticated viewer, adds the top-level reply
	// form that answers the root note itself.
	RootID int
}

func (o Options) maxIndent() int {
	if o.MaxIndent <= 0 {
		return DefaultMaxIndent
	}
	return o.MaxIndent
}

// Affordance is one interactive element in rendered output.
type Affordance struct {
	Action    string
	NoteID    int
	ElementID string
	// TargetID names the input a submit affordance reads from.
	TargetID string
}

type Rendered struct {
	Markup string
	// Order lists note ids in emission order.
	Order       []int
	Affordances map[int][]Affordance
}

type Renderer interface {
	Render(forest []*Node, opts Options) Rendered
}

type Binder interface {
	Bind(action string, noteID int, handler dispatch.Handler)
}

type Unbinder interface {
	Unbind(noteID int)
}

// Bind registers a handler per affordance, looked up by action. Binding the
// same Rendered twice leaves the table as it was after the first call.
func (r Rendered) Bind(table Binder, handlers map[string]dispatch.Handler) int {
	if table == nil {
		return 0
	}
	bound := 0
	for noteID, affordances := range r.Affordances {
		for _, affordance := range affordances {
			handler, ok := handlers[affordance.Action]
			if !ok {
				continue
			}
			table.Bind(affordance.Action, noteID, handler)
			bound++
		}
	}
	return bound
}

func (r Rendered) Unbind(table Unbinder) {
	if table == nil {
		return
	}
	for noteID := range r.Affordances {
		table.Unbind(noteID)
	}
}

// IndentLevel saturates depth at max. Depth zero is not indented.
func IndentLevel(depth, max int) int {
	if depth <= 0 {
		return 0
	}
	if depth > max {
		return max
	}
	return depth
}

type entry struct {
	ID     int
	Depth  int
	Indent int
	Author string
	Text   string
}

func layout(forest []*Node, opts Options) ([]entry, Rendered) {
	out := Rendered{Order: []int{}, Affordances: map[int][]Affordance{}}
	entries := []entry{}
	max := opts.maxIndent()
	Walk(forest, func(node *Node, depth int) {
		entries = append(entries, entry{
			ID:     node.Note.ID,
			Depth:  depth,
			Indent: IndentLevel(depth, max),
			Author: node.Note.UserID,
			Text:   node.Note.Text,
		})
		out.Order = append(out.Order, node.Note.ID)
		if opts.Authenticated {
			out.Affordances[node.Note.ID] = replyAffordances(node.Note.ID)
		}
	})
	if opts.Authenticated && opts.RootID > 0 {
		out.Affordances[opts.RootID] = append(out.Affordances[opts.RootID], Affordance{
			Action:    dispatch.ActionReplySubmit,
			NoteID:    opts.RootID,
			ElementID: fmt.Sprintf("reply-submit-%d", opts.RootID),
			TargetID:  TextareaID(opts.RootID),
		})
	}
	return entries, out
}

func replyAffordances(id int) []Affordance {
	return []Affordance{
		{Action: dispatch.ActionReplyToggle, NoteID: id, ElementID: fmt.Sprintf("reply-toggle-%d", id)},
		{Action: dispatch.ActionReplyCancel, NoteID: id, ElementID: fmt.Sprintf("reply-cancel-%d", id)},
		{Action: dispatch.ActionReplySubmit, NoteID: id, ElementID: fmt.Sprintf("reply-submit-%d", id), TargetID: TextareaID(id)},
	}
}

func FormID(id int) string {
	return fmt.Sprintf("reply-form-%d", id)
}

func TextareaID(id int) string {
	return fmt.Sprintf("reply-text-%d", id)
}
