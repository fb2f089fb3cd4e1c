package app

import (
	"context"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"geonotes/internal/auth"
	"geonotes/internal/client"
	"geonotes/internal/dispatch"
	"geonotes/internal/notes"
	"geonotes/internal/store"
	"geonotes/internal/thread"
	"geonotes/internal/types"
)

type fakeAuthAPI struct {
	mu        sync.Mutex
	logins    []string
	logouts   int
	checkUser string
}

func (f *fakeAuthAPI) Login(ctx context.Context, username, password string) (*client.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, username)
	return &client.LoginResponse{User: username}, nil
}

func (f *fakeAuthAPI) SendEmailVerification(ctx context.Context, email string) error { return nil }

func (f *fakeAuthAPI) Register(ctx context.Context, req client.RegisterRequest) error { return nil }

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeAuthAPI) CheckSession(ctx context.Context) (*client.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkUser == "" {
		return nil, &client.APIError{StatusCode: 401, Message: "unauthorized"}
	}
	return &client.SessionStatus{User: f.checkUser}, nil
}

func (f *fakeAuthAPI) Session() *types.Session        { return nil }
func (f *fakeAuthAPI) Restore(session *types.Session) {}

type fakeNotesAPI struct {
	mu      sync.Mutex
	notes   []types.Note
	created []types.NoteDraft
	deleted []int
	bounds  []types.Bounds
}

func (f *fakeNotesAPI) GetNotes(ctx context.Context, bounds types.Bounds) ([]types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bounds = append(f.bounds, bounds)
	return types.CloneNotes(f.notes), nil
}

func (f *fakeNotesAPI) CreateNote(ctx context.Context, draft types.NoteDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, draft)
	return nil
}

func (f *fakeNotesAPI) DeleteNote(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type testHarness struct {
	model    *Model
	authAPI  *fakeAuthAPI
	notesAPI *fakeNotesAPI
	manager  *auth.Manager
	view     *notes.View
	repo     store.Repository
}

func newTestHarness(t *testing.T, seed []types.Note) *testHarness {
	t.Helper()
	repo := store.NewMemoryRepository()
	table := dispatch.NewTable()
	authAPI := &fakeAuthAPI{}
	notesAPI := &fakeNotesAPI{notes: seed}
	manager := auth.NewManager(authAPI, repo.Session())
	manager.RegisterActions(table)
	view := notes.NewView(notesAPI, manager, notes.NewLayer(), table, notes.WithRenderer(thread.TextRenderer{}))
	view.RegisterActions()
	manager.Subscribe(func(auth.State) { view.Refresh(context.Background()) })
	m := NewModel(context.Background(), Deps{
		Auth:     manager,
		Notes:    view,
		Table:    table,
		AppState: repo.AppState(),
	})
	m.resize(100, 30)
	return &testHarness{model: m, authAPI: authAPI, notesAPI: notesAPI, manager: manager, view: view, repo: repo}
}

func (h *testHarness) login(t *testing.T, user string) {
	t.Helper()
	if err := h.manager.Login(context.Background(), user, "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

// drain runs cmd and feeds the results the model produces back into Update.
// Timer driven messages such as cursor blinks are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, next := range msg {
			drain(t, m, next)
		}
	case actionResultMsg, appStateMsg, appStateSavedMsg, authStatusMsg:
		_, next := m.Update(msg)
		drain(t, m, next)
	}
}

func press(t *testing.T, m *Model, key string) {
	t.Helper()
	drain(t, m, m.handleKey(keyPress(key)))
}

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	}
	r := []rune(key)[0]
	return tea.KeyPressMsg{Code: r, Text: key}
}

func keyPressCtrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}
