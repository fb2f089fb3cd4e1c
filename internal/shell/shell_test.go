package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"geonotes/internal/auth"
	"geonotes/internal/client"
	"geonotes/internal/dispatch"
	"geonotes/internal/notes"
	"geonotes/internal/store"
	"geonotes/internal/thread"
	"geonotes/internal/types"
)

type fakeAuthAPI struct{}

func (fakeAuthAPI) Login(ctx context.Context, username, password string) (*client.LoginResponse, error) {
	return &client.LoginResponse{User: username}, nil
}
func (fakeAuthAPI) SendEmailVerification(ctx context.Context, email string) error  { return nil }
func (fakeAuthAPI) Register(ctx context.Context, req client.RegisterRequest) error { return nil }
func (fakeAuthAPI) Logout(ctx context.Context) error                               { return nil }
func (fakeAuthAPI) CheckSession(ctx context.Context) (*client.SessionStatus, error) {
	return &client.SessionStatus{}, nil
}
func (fakeAuthAPI) Session() *types.Session        { return nil }
func (fakeAuthAPI) Restore(session *types.Session) {}

type fakeNotesAPI struct {
	notes   []types.Note
	created []types.NoteDraft
	deleted []int
}

func (f *fakeNotesAPI) GetNotes(ctx context.Context, bounds types.Bounds) ([]types.Note, error) {
	return types.CloneNotes(f.notes), nil
}

func (f *fakeNotesAPI) CreateNote(ctx context.Context, draft types.NoteDraft) error {
	f.created = append(f.created, draft)
	return nil
}

func (f *fakeNotesAPI) DeleteNote(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type scriptReader struct {
	lines   []string
	prompts []string
	closed  bool
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (r *scriptReader) SetPrompt(prompt string) { r.prompts = append(r.prompts, prompt) }
func (r *scriptReader) Close() error            { r.closed = true; return nil }

type fixture struct {
	shell    *Shell
	out      *bytes.Buffer
	notesAPI *fakeNotesAPI
	manager  *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out := &bytes.Buffer{}
	notifier := NewNotifier(out)
	table := dispatch.NewTable()
	manager := auth.NewManager(fakeAuthAPI{}, store.NewMemoryRepository().Session(), auth.WithNotifier(notifier))
	manager.RegisterActions(table)
	notesAPI := &fakeNotesAPI{notes: []types.Note{
		{ID: 1, UserID: "alice", Text: "Bench with a view", Latitude: 51.5, Longitude: -0.1, Public: true},
		{ID: 2, ParentID: 1, UserID: "bob", Text: "Lovely"},
		{ID: 3, UserID: "carol", Text: "Hidden", Latitude: 51.51, Longitude: -0.11},
	}}
	view := notes.NewView(notesAPI, manager, notes.NewLayer(), table,
		notes.WithNotifier(notifier), notes.WithRenderer(thread.TextRenderer{}))
	view.RegisterActions()
	sh := New(table, manager, view, out, WithViewport(types.Viewport{Center: types.LatLng{Lat: 51.5, Lng: -0.1}, Zoom: 13}))
	return &fixture{shell: sh, out: out, notesAPI: notesAPI, manager: manager}
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`create "coffee and cake" --private "bob, carol"`)
	if err != nil {
		t.Fatalf("splitArgs: %v", err)
	}
	want := []string{"create", "coffee and cake", "--private", "bob, carol"}
	if strings.Join(args, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected args: %q", args)
	}
	if args, _ := splitArgs(`reply 1 ""`); len(args) != 3 || args[2] != "" {
		t.Fatalf("expected empty quoted arg, got %q", args)
	}
	if _, err := splitArgs(`create "oops`); err == nil {
		t.Fatalf("expected unterminated quote error")
	}
}

func TestLoginChangesPrompt(t *testing.T) {
	f := newFixture(t)
	if f.shell.Prompt() != "geonotes> " {
		t.Fatalf("unexpected prompt: %q", f.shell.Prompt())
	}
	if err := f.shell.Exec(context.Background(), "login alice secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if f.shell.Prompt() != "alice@geonotes> " {
		t.Fatalf("unexpected prompt after login: %q", f.shell.Prompt())
	}
	if !strings.Contains(f.out.String(), "✓ "+auth.MsgLoginSuccess) {
		t.Fatalf("expected login notice, got %q", f.out.String())
	}
}

func TestGotoListsNotes(t *testing.T) {
	f := newFixture(t)
	if err := f.shell.Exec(context.Background(), "goto 51.5 -0.1 14"); err != nil {
		t.Fatalf("goto: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "#1") || !strings.Contains(out, "Bench with a view") || !strings.Contains(out, "(private)") {
		t.Fatalf("expected listed markers, got %q", out)
	}
	if strings.Contains(out, "Lovely") {
		t.Fatalf("replies should not be listed as markers: %q", out)
	}
	if f.shell.viewport.Zoom != 14 {
		t.Fatalf("expected zoom to update, got %d", f.shell.viewport.Zoom)
	}
}

func TestOpenAndReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, line := range []string{"login bob pw", "goto 51.5 -0.1", "open 1"} {
		if err := f.shell.Exec(ctx, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	if !strings.Contains(f.out.String(), "Replies (1)") {
		t.Fatalf("expected thread output, got %q", f.out.String())
	}
	if err := f.shell.Exec(ctx, `reply 2 "me too"`); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if len(f.notesAPI.created) != 1 || f.notesAPI.created[0].ParentID != 2 || f.notesAPI.created[0].Text != "me too" {
		t.Fatalf("unexpected reply: %#v", f.notesAPI.created)
	}
}

func TestReplyOutsideOpenThread(t *testing.T) {
	f := newFixture(t)
	err := f.shell.Exec(context.Background(), "reply 9 hello")
	if err == nil || !strings.Contains(err.Error(), "open") {
		t.Fatalf("expected hint to open the note first, got %v", err)
	}
}

func TestCreateUsesViewportCenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.shell.Exec(ctx, "login alice pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.shell.Exec(ctx, `create "secret bench" --private bob`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(f.notesAPI.created) != 1 {
		t.Fatalf("expected a created note")
	}
	draft := f.notesAPI.created[0]
	if draft.Text != "secret bench" || draft.Public || len(draft.AllowedUsers) != 1 || draft.Latitude != 51.5 || draft.Longitude != -0.1 {
		t.Fatalf("unexpected draft: %#v", draft)
	}
}

func TestCreateEmptyTextReportsNotice(t *testing.T) {
	f := newFixture(t)
	err := f.shell.Exec(context.Background(), "create")
	if err == nil {
		t.Fatalf("expected empty message error")
	}
	if !strings.Contains(f.out.String(), "✗") {
		t.Fatalf("expected an error notice, got %q", f.out.String())
	}
}

func TestRunHandlesInterruptAndDeleteConfirmation(t *testing.T) {
	f := newFixture(t)
	reader := &scriptReader{lines: []string{"^C", "delete 1", "n", "delete 1", "yes", "bogus", "exit", "whoami"}}
	if err := f.shell.Run(context.Background(), reader); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "Use 'exit'") || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(f.notesAPI.deleted) != 1 || f.notesAPI.deleted[0] != 1 {
		t.Fatalf("expected one confirmed delete, got %v", f.notesAPI.deleted)
	}
	if !strings.Contains(out, `unknown command "bogus"`) {
		t.Fatalf("expected unknown command error: %q", out)
	}
	if len(reader.lines) != 1 || !reader.closed {
		t.Fatalf("expected exit to stop before the last line and close the reader")
	}
	found := false
	for _, prompt := range reader.prompts {
		if prompt == "Delete note #1? [y/N] " {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected confirmation prompt, got %q", reader.prompts)
	}
}

func TestHelp(t *testing.T) {
	f := newFixture(t)
	if err := f.shell.Exec(context.Background(), "help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(f.out.String(), "goto <lat> <lng> [zoom]") {
		t.Fatalf("expected command list: %q", f.out.String())
	}
	f.out.Reset()
	_ = f.shell.Exec(context.Background(), "help delete")
	if !strings.Contains(f.out.String(), "Delete one of your notes.") {
		t.Fatalf("expected command help: %q", f.out.String())
	}
}
