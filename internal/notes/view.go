package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"geonotes/internal/config"
	"geonotes/internal/dispatch"
	"geonotes/internal/logging"
	"geonotes/internal/thread"
	"geonotes/internal/types"
)

const (
	MsgNoteCreated      = "Note created successfully!"
	MsgNoteCreateFailed = "Failed to create note. Please try again."
	MsgReplyAdded       = "Reply added!"
	MsgReplyFailed      = "Failed to add reply"
	MsgNoteDeleted      = "Note deleted successfully!"
	MsgNoteDeleteFailed = "Failed to delete note. Please try again."
	MsgFetchFailed      = "Failed to load notes"
)

var (
	ErrEmptyMessage = errors.New("note text is required")
	ErrNoLocation   = errors.New("no location selected")
	ErrEmptyReply   = errors.New("reply text is required")
	ErrNoteNotFound = errors.New("note not found")
	ErrNoBounds     = errors.New("map bounds not set")
)

// Message maps a view error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyMessage):
		return "Please enter a message"
	case errors.Is(err, ErrNoLocation):
		return "No location selected"
	case errors.Is(err, ErrEmptyReply):
		return "Please enter a reply message"
	default:
		return err.Error()
	}
}

type API interface {
	GetNotes(ctx context.Context, bounds types.Bounds) ([]types.Note, error)
	CreateNote(ctx context.Context, draft types.NoteDraft) error
	DeleteNote(ctx context.Context, id int) error
}

type Session interface {
	IsLoggedIn() bool
	CurrentUser() string
}

type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Modal is the open note with its rendered thread.
type Modal struct {
	Root       types.Note
	Replies    []types.Note
	Forest     []*thread.Node
	ReplyCount int
	Rendered   thread.Rendered
	Long       bool
	CanReply   bool
	CanDelete  bool
}

type Config struct {
	Note      config.NoteConfig
	MaxIndent int
}

type View struct {
	api      API
	session  Session
	layer    MarkerLayer
	notifier Notifier
	table    *dispatch.Table
	renderer thread.Renderer
	logger   logging.Logger
	cfg      Config

	mu         sync.Mutex
	bounds     types.Bounds
	hasBounds  bool
	notes      []types.Note
	selected   *types.LatLng
	modal      *Modal
	replyForms map[int]bool
	drafts     map[int]string
}

type Option func(*View)

func WithNotifier(notifier Notifier) Option {
	return func(v *View) {
		if notifier != nil {
			v.notifier = notifier
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger.With(logging.F("component", "notes"))
		}
	}
}

func WithRenderer(renderer thread.Renderer) Option {
	return func(v *View) {
		if renderer != nil {
			v.renderer = renderer
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(v *View) {
		v.cfg = cfg
	}
}

func NewView(api API, session Session, layer MarkerLayer, table *dispatch.Table, opts ...Option) *View {
	if layer == nil {
		layer = NewLayer()
	}
	if table == nil {
		table = dispatch.NewTable()
	}
	v := &View{
		api:        api,
		session:    session,
		layer:      layer,
		notifier:   nopNotifier{},
		table:      table,
		renderer:   thread.NewHTMLRenderer(),
		logger:     logging.Nop(),
		cfg:        Config{Note: config.Default().Note, MaxIndent: thread.DefaultMaxIndent},
		replyForms: map[int]bool{},
		drafts:     map[int]string{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *View) Layer() MarkerLayer {
	return v.layer
}

func (v *View) Bounds() (types.Bounds, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds, v.hasBounds
}

func (v *View) Notes() []types.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	return types.CloneNotes(v.notes)
}

// Move records the visible bounds and refetches.
func (v *View) Move(ctx context.Context, bounds types.Bounds) error {
	v.mu.Lock()
	v.bounds = bounds
	v.hasBounds = true
	v.mu.Unlock()
	return v.FetchNotes(ctx)
}

// FetchNotes replaces the marker layer with the root notes inside the current
// bounds. Whichever fetch completes last wins.
func (v *View) FetchNotes(ctx context.Context) error {
	bounds, ok := v.Bounds()
	if !ok {
		return ErrNoBounds
	}
	notes, err := v.api.GetNotes(ctx, bounds)
	if err != nil {
		v.logger.Warn("fetch notes failed", logging.Err(err))
		v.notifier.Error(MsgFetchFailed)
		return fmt.Errorf("fetch notes: %w", err)
	}

	markers := make([]Marker, 0, len(notes))
	for _, note := range notes {
		if !note.IsRoot() {
			continue
		}
		markers = append(markers, Marker{
			NoteID:   note.ID,
			Position: note.Position(),
			Author:   note.UserID,
			Preview:  preview(note.Text),
			Long:     v.IsLongNote(note.Text),
			Public:   note.Public,
		})
	}

	v.mu.Lock()
	v.notes = notes
	v.layer.Replace(markers)
	v.mu.Unlock()
	v.logger.Debug("fetched notes", logging.F("count", len(notes)), logging.F("markers", len(markers)))
	return nil
}

// BeginCreate selects the location a new note will be placed at.
func (v *View) BeginCreate(at types.LatLng) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = &at
}

func (v *View) SelectedLocation() (types.LatLng, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return types.LatLng{}, false
	}
	return *v.selected, true
}

func (v *View) CreateNote(ctx context.Context, text string, public bool, allowedUsers string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		v.notifier.Error(Message(ErrEmptyMessage))
		return ErrEmptyMessage
	}
	at, ok := v.SelectedLocation()
	if !ok {
		v.notifier.Error(Message(ErrNoLocation))
		return ErrNoLocation
	}
	draft := types.NoteDraft{
		Text:         text,
		Latitude:     at.Lat,
		Longitude:    at.Lng,
		Public:       public,
		AllowedUsers: SplitAllowedUsers(allowedUsers),
	}
	if err := v.api.CreateNote(ctx, draft); err != nil {
		v.logger.Warn("create note failed", logging.Err(err))
		v.notifier.Error(MsgNoteCreateFailed)
		return fmt.Errorf("create note: %w", err)
	}
	v.mu.Lock()
	v.selected = nil
	v.mu.Unlock()
	v.notifier.Info(MsgNoteCreated)
	v.Refresh(ctx)
	return nil
}

// SplitAllowedUsers parses a comma separated audience list.
func SplitAllowedUsers(raw string) []string {
	users := []string{}
	for _, part := range strings.Split(raw, ",") {
		if user := strings.TrimSpace(part); user != "" {
			users = append(users, user)
		}
	}
	return users
}

func (v *View) OpenNote(ctx context.Context, id int) (*Modal, error) {
	v.mu.Lock()
	var root *types.Note
	for i := range v.notes {
		if v.notes[i].ID == id {
			note := v.notes[i]
			root = &note
			break
		}
	}
	all := types.CloneNotes(v.notes)
	v.mu.Unlock()
	if root == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoteNotFound, id)
	}

	replies := thread.CollectReplies(all, id)
	forest, err := thread.Build(replies, id)
	if err != nil {
		v.logger.Error("build thread failed", logging.F("note", id), logging.Err(err))
		return nil, err
	}

	loggedIn := v.session != nil && v.session.IsLoggedIn()
	opts := thread.Options{Authenticated: loggedIn, MaxIndent: v.cfg.MaxIndent}
	if loggedIn {
		opts.RootID = id
	}
	rendered := v.renderer.Render(forest, opts)

	modal := &Modal{
		Root:       *root,
		Replies:    replies,
		Forest:     forest,
		ReplyCount: len(replies),
		Rendered:   rendered,
		Long:       v.IsLongNote(root.Text),
		CanReply:   loggedIn,
		CanDelete:  loggedIn && root.UserID == v.session.CurrentUser(),
	}

	v.mu.Lock()
	previous := v.modal
	v.modal = modal
	v.replyForms = map[int]bool{}
	v.drafts = map[int]string{}
	v.mu.Unlock()
	if previous != nil {
		previous.Rendered.Unbind(v.table)
	}
	rendered.Bind(v.table, v.threadHandlers())
	return modal, nil
}

func (v *View) Modal() *Modal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modal
}

func (v *View) CloseNote() {
	v.mu.Lock()
	modal := v.modal
	v.modal = nil
	v.replyForms = map[int]bool{}
	v.drafts = map[int]string{}
	v.mu.Unlock()
	if modal != nil {
		modal.Rendered.Unbind(v.table)
	}
}

func (v *View) ToggleReplyForm(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replyForms[id] = !v.replyForms[id]
	return v.replyForms[id]
}

func (v *View) HideReplyForm(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.replyForms, id)
	delete(v.drafts, id)
}

func (v *View) ReplyFormOpen(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.replyForms[id]
}

func (v *View) SetReplyDraft(id int, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drafts[id] = text
}

func (v *View) ReplyDraft(id int) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drafts[id]
}

// Reply answers parentID, then refetches and closes the open note.
func (v *View) Reply(ctx context.Context, parentID int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		v.notifier.Error(Message(ErrEmptyReply))
		return ErrEmptyReply
	}
	if err := v.api.CreateNote(ctx, types.NewReplyDraft(parentID, text)); err != nil {
		v.logger.Warn("reply failed", logging.F("parent", parentID), logging.Err(err))
		v.notifier.Error(MsgReplyFailed)
		return fmt.Errorf("reply: %w", err)
	}
	v.notifier.Info(MsgReplyAdded)
	v.HideReplyForm(parentID)
	v.Refresh(ctx)
	v.CloseNote()
	return nil
}

// DeleteNote removes a note. Confirmation is up to the caller.
func (v *View) DeleteNote(ctx context.Context, id int) error {
	if err := v.api.DeleteNote(ctx, id); err != nil {
		v.logger.Warn("delete note failed", logging.F("note", id), logging.Err(err))
		v.notifier.Error(MsgNoteDeleteFailed)
		return fmt.Errorf("delete note: %w", err)
	}
	v.notifier.Info(MsgNoteDeleted)
	v.CloseNote()
	v.Refresh(ctx)
	return nil
}

func (v *View) IsLongNote(text string) bool {
	return v.cfg.Note.IsLongNote(text)
}

// Refresh refetches notes once bounds are known.
func (v *View) Refresh(ctx context.Context) {
	if _, ok := v.Bounds(); !ok {
		return
	}
	_ = v.FetchNotes(ctx)
}

func (v *View) threadHandlers() map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		dispatch.ActionReplyToggle: func(ctx context.Context, ev dispatch.Event) error {
			v.ToggleReplyForm(ev.NoteID)
			return nil
		},
		dispatch.ActionReplyCancel: func(ctx context.Context, ev dispatch.Event) error {
			v.HideReplyForm(ev.NoteID)
			return nil
		},
		dispatch.ActionReplySubmit: func(ctx context.Context, ev dispatch.Event) error {
			text := ev.Arg("text")
			if text == "" {
				text = v.ReplyDraft(ev.NoteID)
			}
			return v.Reply(ctx, ev.NoteID, text)
		},
	}
}

type nopNotifier struct{}

func (nopNotifier) Info(string)  {}
func (nopNotifier) Error(string) {}
