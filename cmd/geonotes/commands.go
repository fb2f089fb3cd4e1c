package main

import (
	"context"
	"io"
	"os"

	"github.com/chzyer/readline"

	"geonotes/internal/app"
	"geonotes/internal/shell"
)

type commandRunner interface {
	Run(args []string) error
}

// prompter asks the user for values that were not passed as flags.
type prompter interface {
	Line(prompt string) (string, error)
	Secret(prompt string) (string, error)
}

type readlinePrompter struct{}

func (readlinePrompter) Line(prompt string) (string, error) {
	return readline.Line(prompt)
}

func (readlinePrompter) Secret(prompt string) (string, error) {
	secret, err := readline.Password(prompt)
	return string(secret), err
}

type commandWiring struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	prompt      prompter
	runUI       func(ctx context.Context, deps app.Deps) error
	newReader   func(historyPath string) (shell.LineReader, error)
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		prompt:      readlinePrompter{},
		runUI:       app.Run,
		newReader:   newShellReader,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"login":    NewLoginCommand(wiring.stdout, wiring.stderr, wiring.newServices, wiring.prompt),
		"logout":   NewLogoutCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"register": NewRegisterCommand(wiring.stdout, wiring.stderr, wiring.newServices, wiring.prompt),
		"verify":   NewVerifyCommand(wiring.stdout, wiring.stderr, wiring.newServices, wiring.prompt),
		"whoami":   NewWhoamiCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"notes":    NewNotesCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"thread":   NewThreadCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"create":   NewCreateCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"reply":    NewReplyCommand(wiring.stdout, wiring.stderr, wiring.newServices),
		"delete":   NewDeleteCommand(wiring.stdout, wiring.stderr, wiring.newServices, wiring.prompt),
		"ui":       NewUICommand(wiring.stderr, wiring.newServices, wiring.runUI),
		"shell":    NewShellCommand(wiring.stdout, wiring.stderr, wiring.newServices, wiring.newReader),
		"config":   NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}

func newShellReader(historyPath string) (shell.LineReader, error) {
	reader, err := shell.NewReader(historyPath)
	if err != nil {
		return nil, err
	}
	return reader, nil
}
