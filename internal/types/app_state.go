package types

type AppState struct {
	InstructionsHidden bool      `json:"instructions_hidden"`
	Viewport           *Viewport `json:"viewport,omitempty"`
}
