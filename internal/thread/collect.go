package thread

import "geonotes/internal/types"

// CollectReplies returns every note in all whose parent chain reaches rootID,
// in input order.
func CollectReplies(all []types.Note, rootID int) []types.Note {
	children := make(map[int][]int, len(all))
	for i, note := range all {
		children[note.ParentID] = append(children[note.ParentID], i)
	}

	keep := make([]bool, len(all))
	visited := map[int]struct{}{rootID: {}}
	queue := []int{rootID}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, i := range children[parent] {
			if keep[i] {
				continue
			}
			keep[i] = true
			id := all[i].ID
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	out := []types.Note{}
	for i, note := range all {
		if keep[i] {
			out = append(out, note)
		}
	}
	return out
}
