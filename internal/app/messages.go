package app

import (
	"context"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"geonotes/internal/auth"
	"geonotes/internal/dispatch"
	"geonotes/internal/store"
	"geonotes/internal/types"
)

const tickInterval = 250 * time.Millisecond

type appStateMsg struct {
	state *types.AppState
	err   error
}

type appStateSavedMsg struct {
	err error
}

type authStatusMsg struct {
	loggedIn bool
	err      error
}

type actionResultMsg struct {
	action string
	noteID int
	err    error
}

type noticeMsg struct {
	level toastLevel
	text  string
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadAppStateCmd(ctx context.Context, states store.AppStateStore) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		state, err := states.Load(ctx)
		return appStateMsg{state: state, err: err}
	}
}

func saveAppStateCmd(ctx context.Context, states store.AppStateStore, state types.AppState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		return appStateSavedMsg{err: states.Save(ctx, &state)}
	}
}

func checkStatusCmd(ctx context.Context, manager *auth.Manager) tea.Cmd {
	if manager == nil {
		return nil
	}
	return func() tea.Msg {
		loggedIn, err := manager.CheckStatus(ctx)
		return authStatusMsg{loggedIn: loggedIn, err: err}
	}
}

// dispatchCmd runs an action off the UI goroutine. Use it for anything that
// talks to the backend.
func dispatchCmd(ctx context.Context, table *dispatch.Table, ev dispatch.Event) tea.Cmd {
	if table == nil {
		return nil
	}
	return func() tea.Msg {
		err := table.Dispatch(ctx, ev)
		return actionResultMsg{action: ev.Action, noteID: ev.NoteID, err: err}
	}
}

func boundsEvent(bounds types.Bounds) dispatch.Event {
	return dispatch.Event{
		Action: dispatch.ActionMoveMap,
		Args: map[string]string{
			"north": formatCoord(bounds.North),
			"south": formatCoord(bounds.South),
			"east":  formatCoord(bounds.East),
			"west":  formatCoord(bounds.West),
		},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
