package thread

import (
	"errors"
	"fmt"

	"geonotes/internal/types"
)

var ErrMalformedNote = errors.New("malformed note")

// Node is a reply plus the replies made to it, in input order.
type Node struct {
	Note     types.Note
	Children []*Node
}

// Build groups a flat reply set into the forest hanging off rootID. Replies
// whose parent is missing from the set are dropped. A malformed record
// rejects the whole batch.
func Build(replies []types.Note, rootID int) ([]*Node, error) {
	index := make(map[int]*Node, len(replies))
	for _, reply := range replies {
		if err := validate(reply); err != nil {
			return nil, err
		}
		if _, dup := index[reply.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedNote, reply.ID)
		}
		index[reply.ID] = &Node{Note: reply}
	}

	forest := []*Node{}
	for _, reply := range replies {
		node := index[reply.ID]
		if reply.ParentID == rootID {
			forest = append(forest, node)
			continue
		}
		parent, ok := index[reply.ParentID]
		if !ok || parent == node {
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return forest, nil
}

func validate(note types.Note) error {
	if note.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrMalformedNote, note.ID)
	}
	if note.ParentID < 0 {
		return fmt.Errorf("%w: note %d has parent %d", ErrMalformedNote, note.ID, note.ParentID)
	}
	return nil
}

// Count returns the number of nodes in forest.
func Count(forest []*Node) int {
	n := 0
	Walk(forest, func(*Node, int) { n++ })
	return n
}

// Walk visits forest depth-first in pre-order. A node already visited is not
// descended into again.
func Walk(forest []*Node, fn func(node *Node, depth int)) {
	seen := map[*Node]struct{}{}
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, node := range nodes {
			if _, ok := seen[node]; ok {
				continue
			}
			seen[node] = struct{}{}
			fn(node, depth)
			visit(node.Children, depth+1)
		}
	}
	visit(forest, 0)
}
