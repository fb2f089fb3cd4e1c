package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"geonotes/internal/auth"
	"geonotes/internal/config"
	"geonotes/internal/dispatch"
	"geonotes/internal/logging"
	"geonotes/internal/notes"
	"geonotes/internal/store"
	"geonotes/internal/types"
)

type uiMode int

const (
	uiModeMap uiMode = iota
	uiModeAuth
	uiModeCreate
	uiModeNote
)

const (
	minWidth  = 40
	minHeight = 12
	panStep   = 0.25
)

const (
	msgLoginRequired = "Log in to add notes"
	msgCopied        = "Note copied to clipboard"
	msgCopiedOSC52   = "Note copied (OSC52)"
)

// Deps are the services the UI drives. Any of them may be left zero in tests.
type Deps struct {
	Auth     *auth.Manager
	Notes    *notes.View
	Table    *dispatch.Table
	AppState store.AppStateStore
	Notices  *Notifier
	Config   config.Config
	Logger   logging.Logger
}

type Model struct {
	ctx     context.Context
	auth    *auth.Manager
	notes   *notes.View
	table   *dispatch.Table
	states  store.AppStateStore
	notices *Notifier
	logger  logging.Logger

	viewport    types.Viewport
	selected    int
	mode        uiMode
	stateLoaded bool
	width       int
	height      int

	authForm   *AuthController
	createForm *CreateController
	noteView   *NoteController
	confirm    *ConfirmController

	instructionsHidden bool
	status             string
	toastText          string
	toastLevel         toastLevel
	toastUntil         time.Time
	toastDuration      time.Duration
	now                func() time.Time
}

func NewModel(ctx context.Context, deps Deps) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Table == nil {
		deps.Table = dispatch.NewTable()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	cfg := deps.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	m := &Model{
		ctx:     ctx,
		auth:    deps.Auth,
		notes:   deps.Notes,
		table:   deps.Table,
		states:  deps.AppState,
		notices: deps.Notices,
		logger:  deps.Logger.With(logging.F("component", "ui")),
		viewport: types.Viewport{
			Center: types.LatLng{Lat: cfg.Map.DefaultLat, Lng: cfg.Map.DefaultLng},
			Zoom:   cfg.DefaultZoom(),
		},
		width:         minWidth,
		height:        minHeight,
		authForm:      NewAuthController(formWidth - 12),
		createForm:    NewCreateController(formWidth),
		noteView:      NewNoteController(minWidth, minHeight-2),
		confirm:       NewConfirmController(),
		toastDuration: cfg.MessageDuration(),
		now:           time.Now,
	}
	m.noteView.SetCollapsedLines(cfg.Note.LongNoteLines)
	m.registerActions()
	return m
}

func Run(ctx context.Context, deps Deps) error {
	model := NewModel(ctx, deps)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// registerActions installs the handlers that only touch UI state. They run
// on the update goroutine.
func (m *Model) registerActions() {
	m.table.Register(dispatch.ActionShowAuth, func(ctx context.Context, ev dispatch.Event) error {
		m.openAuth()
		return nil
	})
	m.table.Register(dispatch.ActionToggleInstructions, func(ctx context.Context, ev dispatch.Event) error {
		m.toggleInstructions()
		return nil
	})
	m.table.Register(dispatch.ActionCopyNote, func(ctx context.Context, ev dispatch.Event) error {
		return m.copyNote(ev.NoteID)
	})
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		loadAppStateCmd(m.ctx, m.states),
		checkStatusCmd(m.ctx, m.auth),
		listenNoticesCmd(m.notices),
		tickCmd(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.stateLoaded {
			return m, m.moveCmd()
		}
		return m, nil
	case appStateMsg:
		return m, m.applyAppState(msg)
	case appStateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save app state failed", logging.Err(msg.err))
		}
		return m, nil
	case authStatusMsg:
		if msg.err != nil {
			m.logger.Warn("session check failed", logging.Err(msg.err))
			m.showWarningToast("Could not restore session")
		}
		return m, nil
	case noticeMsg:
		m.showToast(msg.level, msg.text)
		return m, listenNoticesCmd(m.notices)
	case tickMsg:
		m.handleTick(msg)
		return m, tickCmd()
	case actionResultMsg:
		return m, m.handleActionResult(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.forwardToModal(msg)
}

func (m *Model) handleTick(msg tickMsg) {
	if m.toastText != "" && !m.toastActive(time.Time(msg)) {
		m.clearToast()
	}
}

func (m *Model) resize(width, height int) {
	m.width = max(minWidth, width)
	m.height = max(minHeight, height)
	m.createForm.Resize(min(formWidth, m.width-4))
	m.noteView.Resize(m.width-4, m.height-4)
}

func (m *Model) applyAppState(msg appStateMsg) tea.Cmd {
	m.stateLoaded = true
	if msg.err != nil {
		m.logger.Warn("load app state failed", logging.Err(msg.err))
	} else if msg.state != nil {
		m.instructionsHidden = msg.state.InstructionsHidden
		if msg.state.Viewport != nil {
			m.viewport = *msg.state.Viewport
			m.viewport.Zoom = m.viewport.ZoomBy(0).Zoom
		}
	}
	return m.moveCmd()
}

func (m *Model) appState() types.AppState {
	vp := m.viewport
	return types.AppState{InstructionsHidden: m.instructionsHidden, Viewport: &vp}
}

func (m *Model) saveStateCmd() tea.Cmd {
	return saveAppStateCmd(m.ctx, m.states, m.appState())
}

func (m *Model) moveCmd() tea.Cmd {
	return m.runAction(boundsEvent(m.bounds()))
}

func (m *Model) runAction(ev dispatch.Event) tea.Cmd {
	return dispatchCmd(m.ctx, m.table, ev)
}

func (m *Model) runActionNow(ev dispatch.Event) error {
	err := m.table.Dispatch(m.ctx, ev)
	if err != nil {
		m.logger.Debug("action failed", logging.F("action", ev.Action), logging.F("note", ev.NoteID), logging.Err(err))
	}
	return err
}

func (m *Model) actionBound(action string, noteID int) bool {
	return m.table.Bound(action, noteID)
}

func (m *Model) exitModal(status string) {
	switch m.mode {
	case uiModeAuth:
		m.authForm.Exit()
	case uiModeCreate:
		m.createForm.Exit()
	case uiModeNote:
		m.noteView.Close()
	}
	m.mode = uiModeMap
	if status != "" {
		m.status = status
	}
}

func (m *Model) confirmDelete(noteID int) {
	m.confirm.Open("Delete note", "Are you sure you want to delete this note?", "Delete", "Cancel", noteID)
}

func (m *Model) loggedIn() bool {
	return m.auth != nil && m.auth.IsLoggedIn()
}

func (m *Model) markers() []notes.Marker {
	if m.notes == nil {
		return nil
	}
	return m.notes.Layer().Markers()
}

func (m *Model) clampSelection() {
	n := len(m.markers())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) handleActionResult(msg actionResultMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Debug("action failed", logging.F("action", msg.action), logging.F("note", msg.noteID), logging.Err(msg.err))
		if errors.Is(msg.err, dispatch.ErrUnhandled) {
			m.showErrorToast(msg.err.Error())
		}
	}
	defer m.clampSelection()

	switch msg.action {
	case dispatch.ActionLogin, dispatch.ActionVerify, dispatch.ActionSendVerification:
		if m.mode != uiModeAuth {
			return nil
		}
		if msg.err == nil && m.loggedIn() {
			m.exitModal("")
			return nil
		}
		return m.syncAuthStep()
	case dispatch.ActionCreateNote:
		if msg.err == nil && m.mode == uiModeCreate {
			m.exitModal("")
		}
	case dispatch.ActionOpenNote:
		if msg.err != nil {
			if text := notes.Message(msg.err); text != "" {
				m.showErrorToast(text)
			}
			return nil
		}
		if m.notes == nil {
			return nil
		}
		if modal := m.notes.Modal(); modal != nil && modal.Root.ID == msg.noteID {
			m.noteView.Open(modal)
			m.mode = uiModeNote
		}
	case dispatch.ActionReplySubmit, dispatch.ActionDeleteNote:
		if msg.err == nil && m.mode == uiModeNote {
			m.exitModal("")
		}
	}
	return nil
}

func (m *Model) syncAuthStep() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	return m.authForm.SetStep(m.auth.State().Step)
}

func (m *Model) openAuth() {
	if m.loggedIn() {
		m.showInfoToast("Logged in as " + m.auth.CurrentUser())
		return
	}
	step := auth.StepLogin
	if m.auth != nil {
		step = m.auth.State().Step
	}
	m.authForm.Enter(step)
	m.mode = uiModeAuth
}

func (m *Model) copyNote(noteID int) error {
	if m.notes == nil {
		return notes.ErrNoteNotFound
	}
	modal := m.notes.Modal()
	if modal == nil || (noteID != 0 && modal.Root.ID != noteID) {
		return notes.ErrNoteNotFound
	}
	method, err := copyTextToClipboard(modal.Root.Text)
	if err != nil {
		m.showErrorToast("Copy failed: " + err.Error())
		return err
	}
	if method == clipboardMethodOSC52 {
		m.showInfoToast(msgCopiedOSC52)
	} else {
		m.showInfoToast(msgCopied)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.confirm.IsOpen() {
		_, choice := m.confirm.HandleKey(msg)
		switch choice {
		case confirmChoiceConfirm:
			id := m.confirm.NoteID()
			m.confirm.Close()
			return m.runAction(dispatch.Event{Action: dispatch.ActionDeleteNote, NoteID: id})
		case confirmChoiceCancel:
			m.confirm.Close()
		}
		return nil
	}

	switch m.mode {
	case uiModeAuth:
		_, cmd := m.authForm.Update(msg, m)
		if m.mode == uiModeAuth {
			return tea.Batch(cmd, m.syncAuthStep())
		}
		return cmd
	case uiModeCreate:
		_, cmd := m.createForm.Update(msg, m)
		return cmd
	case uiModeNote:
		_, cmd := m.noteView.Update(msg, m)
		return cmd
	}
	return m.handleMapKey(msg)
}

func (m *Model) handleMapKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up":
		return m.pan(panStep, 0)
	case "down":
		return m.pan(-panStep, 0)
	case "left":
		return m.pan(0, -panStep)
	case "right":
		return m.pan(0, panStep)
	case "+", "=":
		return m.zoom(1)
	case "-":
		return m.zoom(-1)
	case "j", "tab":
		m.moveSelection(1)
	case "k", "shift+tab":
		m.moveSelection(-1)
	case "enter":
		markers := m.markers()
		if m.selected < len(markers) {
			return m.runAction(dispatch.Event{Action: dispatch.ActionOpenNote, NoteID: markers[m.selected].NoteID})
		}
	case "n":
		return m.beginCreate()
	case "p":
		_ = m.runActionNow(dispatch.Event{Action: dispatch.ActionShowAuth})
	case "L":
		if m.loggedIn() {
			return m.runAction(dispatch.Event{Action: dispatch.ActionLogout})
		}
	case "r":
		return m.moveCmd()
	case "?":
		_ = m.runActionNow(dispatch.Event{Action: dispatch.ActionToggleInstructions})
		return m.saveStateCmd()
	}
	return nil
}

func (m *Model) pan(dLat, dLng float64) tea.Cmd {
	w, h := m.mapPixels()
	m.viewport = m.viewport.Pan(dLat, dLng, w, h)
	return tea.Batch(m.moveCmd(), m.saveStateCmd())
}

func (m *Model) zoom(delta int) tea.Cmd {
	next := m.viewport.ZoomBy(delta)
	if next.Zoom == m.viewport.Zoom {
		return nil
	}
	m.viewport = next
	return tea.Batch(m.moveCmd(), m.saveStateCmd())
}

func (m *Model) moveSelection(delta int) {
	n := len(m.markers())
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected = (m.selected + delta + n) % n
}

// beginCreate places a new note at the selected marker, or at the map center
// when nothing is selected.
func (m *Model) beginCreate() tea.Cmd {
	if !m.loggedIn() {
		m.showWarningToast(msgLoginRequired)
		return nil
	}
	at := m.viewport.Center
	ev := dispatch.Event{Action: dispatch.ActionBeginCreate, Args: map[string]string{
		"lat": formatCoord(at.Lat),
		"lng": formatCoord(at.Lng),
	}}
	if err := m.runActionNow(ev); err != nil {
		m.showErrorToast(err.Error())
		return nil
	}
	m.mode = uiModeCreate
	return m.createForm.Enter(at)
}

func (m *Model) forwardToModal(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case uiModeAuth:
		_, cmd = m.authForm.Update(msg, m)
	case uiModeCreate:
		_, cmd = m.createForm.Update(msg, m)
	case uiModeNote:
		_, cmd = m.noteView.Update(msg, m)
	}
	return cmd
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	header := m.headerLine()
	footer := m.footerLine()
	help := ""
	if m.mode == uiModeMap {
		help = m.instructionsView(m.width)
	}
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if help != "" {
		bodyHeight -= lipgloss.Height(help)
	}
	bodyHeight = max(1, bodyHeight)

	var body string
	switch m.mode {
	case uiModeAuth:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.authForm.View())
	case uiModeCreate:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.createForm.View())
	case uiModeNote:
		body = indentBlock(m.noteView.View(), 2)
	default:
		body = m.mapBody(bodyHeight)
	}
	if m.confirm.IsOpen() {
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View(m.width-4))
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	parts := []string{header, body}
	if help != "" {
		parts = append(parts, help)
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}

func (m *Model) mapBody(height int) string {
	markers := m.markers()
	rows := min(m.gridRows(), max(2, height-4))
	grid := m.renderGrid(markers, m.width, rows)
	listRows := height - lipgloss.Height(grid) - 1
	list := m.renderMarkerList(markers, m.width, listRows)
	return grid + "\n" + list
}

func (m *Model) headerLine() string {
	title := headerStyle.Render("GeoNotes")
	where := helpStyle.Render(fmt.Sprintf(" %.4f, %.4f z%d", m.viewport.Center.Lat, m.viewport.Center.Lng, m.viewport.Zoom))
	user := helpStyle.Render("not logged in")
	if m.loggedIn() {
		user = userStyle.Render("● " + m.auth.CurrentUser())
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(where) - lipgloss.Width(user)
	return title + where + strings.Repeat(" ", max(1, gap)) + user
}

func (m *Model) footerLine() string {
	if toast := m.toastLine(m.width); toast != "" {
		return toast
	}
	count := fmt.Sprintf("%d notes", len(m.markers()))
	status := m.status
	if status == "" {
		status = count
	} else {
		status = count + " • " + status
	}
	return statusStyle.Render(truncateToWidth(status, m.width))
}
