package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"geonotes/internal/dispatch"
	"geonotes/internal/thread"
	"geonotes/internal/types"
)

const (
	shellMapWidthPx  = 1024
	shellMapHeightPx = 768
)

func builtinCommands() map[string]command {
	cmds := map[string]command{
		"help": {usage: "help [command]", help: "Show commands or details for one command.", run: runHelp},
		"exit": {usage: "exit", help: "Leave the shell.", run: runExit},
		"quit": {usage: "quit", help: "Leave the shell.", run: runExit},
		"login": {usage: "login <username> <password>", help: "Log in.", run: func(ctx context.Context, s *Shell, args []string) error {
			if len(args) != 2 {
				return errors.New("usage: login <username> <password>")
			}
			return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionLogin, Args: map[string]string{"username": args[0], "password": args[1]}})
		}},
		"logout": {usage: "logout", help: "Log out.", run: func(ctx context.Context, s *Shell, args []string) error {
			return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionLogout})
		}},
		"register": {usage: "register <username> <password> <email>", help: "Send a verification code to start registering.", run: runRegister},
		"verify": {usage: "verify <code>", help: "Finish registering with the emailed code.", run: func(ctx context.Context, s *Shell, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: verify <code>")
			}
			return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionVerify, Args: map[string]string{"code": args[0]}})
		}},
		"whoami": {usage: "whoami", help: "Show the logged in user.", run: runWhoami},
		"goto":   {usage: "goto <lat> <lng> [zoom]", help: "Move the map and fetch notes in view.", run: runGoto},
		"bounds": {usage: "bounds <north> <south> <east> <west>", help: "Fetch notes inside an explicit rectangle.", run: runBounds},
		"fetch": {usage: "fetch", help: "Refetch notes for the current view.", run: func(ctx context.Context, s *Shell, args []string) error {
			if err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionFetchNotes}); err != nil {
				return err
			}
			return runList(ctx, s, nil)
		}},
		"list": {usage: "list", help: "List notes on the map.", run: runList},
		"open": {usage: "open <id>", help: "Show a note and its replies.", run: runOpen},
		"close": {usage: "close", help: "Close the open note.", run: func(ctx context.Context, s *Shell, args []string) error {
			return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionCloseNote})
		}},
		"reply":  {usage: "reply <id> <text>", help: "Reply to a note in the open thread.", run: runReply},
		"create": {usage: "create <text> [--private user1,user2]", help: "Add a note at the map center.", run: runCreate},
		"delete": {usage: "delete <id>", help: "Delete one of your notes.", run: runDelete},
	}
	return cmds
}

func completionItems() []readline.PrefixCompleterInterface {
	names := []string{"help", "exit", "quit", "login", "logout", "register", "verify", "whoami", "goto", "bounds", "fetch", "list", "open", "close", "reply", "create", "delete"}
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	return items
}

func runHelp(ctx context.Context, s *Shell, args []string) error {
	name := ""
	if len(args) > 0 {
		name = strings.ToLower(args[0])
	}
	s.printHelp(name)
	return nil
}

func runExit(ctx context.Context, s *Shell, args []string) error {
	return errExit
}

func runRegister(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: register <username> <password> <email>")
	}
	if err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionShowRegister}); err != nil {
		return err
	}
	err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionSendVerification, Args: map[string]string{
		"username": args[0],
		"password": args[1],
		"email":    args[2],
	}})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Run 'verify <code>' with the code from your email.")
	return nil
}

func runWhoami(ctx context.Context, s *Shell, args []string) error {
	if s.session == nil || !s.session.IsLoggedIn() {
		fmt.Fprintln(s.out, "not logged in")
		return nil
	}
	fmt.Fprintln(s.out, s.session.CurrentUser())
	return nil
}

func runGoto(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: goto <lat> <lng> [zoom]")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("lng: %w", err)
	}
	vp := s.viewport
	vp.Center = types.LatLng{Lat: lat, Lng: lng}
	if len(args) == 3 {
		zoom, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("zoom: %w", err)
		}
		vp.Zoom = zoom
	}
	s.viewport = vp.ZoomBy(0)
	return s.move(ctx, s.viewport.Bounds(shellMapWidthPx, shellMapHeightPx))
}

func runBounds(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: bounds <north> <south> <east> <west>")
	}
	values := make([]float64, 4)
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bound %d: %w", i+1, err)
		}
		values[i] = v
	}
	bounds := types.Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}
	s.viewport.Center = bounds.Center()
	return s.move(ctx, bounds)
}

func (s *Shell) move(ctx context.Context, bounds types.Bounds) error {
	err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionMoveMap, Args: map[string]string{
		"north": strconv.FormatFloat(bounds.North, 'f', -1, 64),
		"south": strconv.FormatFloat(bounds.South, 'f', -1, 64),
		"east":  strconv.FormatFloat(bounds.East, 'f', -1, 64),
		"west":  strconv.FormatFloat(bounds.West, 'f', -1, 64),
	}})
	if err != nil {
		return err
	}
	return runList(ctx, s, nil)
}

func runList(ctx context.Context, s *Shell, args []string) error {
	if s.notes == nil {
		return errors.New("notes are unavailable")
	}
	markers := s.notes.Layer().Markers()
	if len(markers) == 0 {
		fmt.Fprintln(s.out, "No notes in view.")
		return nil
	}
	for _, marker := range markers {
		visibility := ""
		if !marker.Public {
			visibility = " (private)"
		}
		fmt.Fprintf(s.out, "#%-5d %-12s %s%s\n", marker.NoteID, marker.Author, marker.Preview, visibility)
	}
	return nil
}

func runOpen(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <id>")
	}
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}
	if err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionOpenNote, NoteID: id}); err != nil {
		return err
	}
	modal := s.notes.Modal()
	if modal == nil {
		return nil
	}
	fmt.Fprintf(s.out, "#%d by %s\n%s\n\nReplies (%d)\n", modal.Root.ID, thread.SafeLine(modal.Root.UserID), thread.PlainText(modal.Root.Text), modal.ReplyCount)
	if modal.Rendered.Markup != "" {
		fmt.Fprintln(s.out, modal.Rendered.Markup)
	}
	return nil
}

func runReply(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reply <id> <text>")
	}
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}
	ev := dispatch.Event{Action: dispatch.ActionReplySubmit, NoteID: id, Args: map[string]string{"text": strings.Join(args[1:], " ")}}
	if err := s.dispatch(ctx, ev); err != nil {
		if errors.Is(err, dispatch.ErrUnhandled) {
			return fmt.Errorf("note %d is not in the open thread; run 'open' first", id)
		}
		return err
	}
	return nil
}

func runCreate(ctx context.Context, s *Shell, args []string) error {
	var text []string
	public, allowed := true, ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--private" {
			public = false
			if i+1 < len(args) {
				allowed = args[i+1]
				i++
			}
			continue
		}
		text = append(text, args[i])
	}
	center := s.viewport.Center
	err := s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionBeginCreate, Args: map[string]string{
		"lat": strconv.FormatFloat(center.Lat, 'f', -1, 64),
		"lng": strconv.FormatFloat(center.Lng, 'f', -1, 64),
	}})
	if err != nil {
		return err
	}
	return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionCreateNote, Args: map[string]string{
		"text":          strings.Join(text, " "),
		"public":        strconv.FormatBool(public),
		"allowed_users": allowed,
	}})
}

func runDelete(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := parseNoteID(args[0])
	if err != nil {
		return err
	}
	if !s.confirm(fmt.Sprintf("Delete note #%d?", id)) {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	return s.dispatch(ctx, dispatch.Event{Action: dispatch.ActionDeleteNote, NoteID: id})
}
