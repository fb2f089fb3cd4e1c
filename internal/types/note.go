package types

// RootParentID marks a note anchored on the map rather than replying to
// another note.
const RootParentID = 0

// Note is the record served by the notes backend. The "lattitude" spelling is
// part of the wire format.
type Note struct {
	ID           int      `json:"id"`
	ParentID     int      `json:"parent_id"`
	UserID       string   `json:"user_id"`
	Text         string   `json:"text"`
	Latitude     float64  `json:"lattitude"`
	Longitude    float64  `json:"longitude"`
	Public       bool     `json:"public"`
	AllowedUsers []string `json:"allowed_users,omitempty"`
}

func (n Note) IsRoot() bool {
	return n.ParentID == RootParentID
}

func (n Note) Position() LatLng {
	return LatLng{Lat: n.Latitude, Lng: n.Longitude}
}

// NoteDraft is the body of a create request. Replies carry a ParentID and a
// zero position.
type NoteDraft struct {
	Text         string   `json:"text"`
	Longitude    float64  `json:"longitude"`
	Latitude     float64  `json:"lattitude"`
	Public       bool     `json:"public"`
	AllowedUsers []string `json:"allowed_users"`
	ParentID     int      `json:"parent_id,omitempty"`
}

func NewReplyDraft(parentID int, text string) NoteDraft {
	return NoteDraft{
		Text:         text,
		Public:       false,
		AllowedUsers: []string{},
		ParentID:     parentID,
	}
}

func CloneNotes(notes []Note) []Note {
	if notes == nil {
		return nil
	}
	out := make([]Note, len(notes))
	for i, note := range notes {
		out[i] = note
		if note.AllowedUsers != nil {
			out[i].AllowedUsers = append([]string(nil), note.AllowedUsers...)
		}
	}
	return out
}
