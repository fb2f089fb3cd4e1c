package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"geonotes/internal/dispatch"
	"geonotes/internal/logging"
	"geonotes/internal/notes"
	"geonotes/internal/types"
)

var errExit = errors.New("exit requested")

// LineReader is the part of a readline instance the shell uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

type Session interface {
	IsLoggedIn() bool
	CurrentUser() string
}

// Notes is what the shell reads back after dispatching note actions.
type Notes interface {
	Layer() notes.MarkerLayer
	Modal() *notes.Modal
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, s *Shell, args []string) error
}

type Shell struct {
	table    *dispatch.Table
	session  Session
	notes    Notes
	out      io.Writer
	logger   logging.Logger
	reader   LineReader
	viewport types.Viewport
	commands map[string]command
}

type Option func(*Shell)

func WithLogger(logger logging.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithViewport sets where goto-less commands such as create and fetch look.
func WithViewport(vp types.Viewport) Option {
	return func(s *Shell) {
		s.viewport = vp
	}
}

func New(table *dispatch.Table, session Session, notesView Notes, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		table:    table,
		session:  session,
		notes:    notesView,
		out:      out,
		logger:   logging.Nop(),
		viewport: types.Viewport{Zoom: 13},
		commands: builtinCommands(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReader opens a readline instance that keeps history at historyPath.
func NewReader(historyPath string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:            "geonotes> ",
		HistoryFile:       historyPath,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      readline.NewPrefixCompleter(completionItems()...),
	})
}

func (s *Shell) Prompt() string {
	if s.session != nil && s.session.IsLoggedIn() {
		return s.session.CurrentUser() + "@geonotes> "
	}
	return "geonotes> "
}

// Run reads commands until exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, reader LineReader) error {
	s.reader = reader
	defer reader.Close()
	fmt.Fprintln(s.out, "GeoNotes shell. Type 'help' for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		reader.SetPrompt(s.Prompt())
		line, err := reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Fprintln(s.out, "Use 'exit' or 'quit' to leave.")
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
	s.logger.Debug("shell command", logging.F("cmd", name), logging.F("args", len(args)-1))
	return cmd.run(ctx, s, args[1:])
}

func (s *Shell) dispatch(ctx context.Context, ev dispatch.Event) error {
	if s.table == nil {
		return dispatch.ErrUnhandled
	}
	return s.table.Dispatch(ctx, ev)
}

// confirm asks a yes/no question on the reader. Without a reader the answer
// is no.
func (s *Shell) confirm(question string) bool {
	if s.reader == nil {
		return false
	}
	s.reader.SetPrompt(question + " [y/N] ")
	defer s.reader.SetPrompt(s.Prompt())
	answer, err := s.reader.Readline()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *Shell) printHelp(name string) {
	if name != "" {
		cmd, ok := s.commands[name]
		if !ok {
			fmt.Fprintf(s.out, "Unknown command: %s\n", name)
			return
		}
		fmt.Fprintf(s.out, "%s\n  %s\n", cmd.usage, cmd.help)
		return
	}
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(s.out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(s.out, "  %-40s %s\n", s.commands[name].usage, s.commands[name].help)
	}
}

// splitArgs splits on whitespace, keeping double quoted runs together.
func splitArgs(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuotes, started := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}

func parseNoteID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", raw)
	}
	return id, nil
}
