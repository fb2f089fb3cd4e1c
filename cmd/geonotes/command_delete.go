package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"geonotes/internal/dispatch"
	"geonotes/internal/shell"
)

var errNotOwner = errors.New("you can only delete your own notes")

type DeleteCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
	prompt      prompter
}

func NewDeleteCommand(stdout, stderr io.Writer, newServices servicesFactory, prompt prompter) *DeleteCommand {
	return &DeleteCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
		prompt:      prompt,
	}
}

func (c *DeleteCommand) Run(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(reorderFlags(args)); err != nil {
		return err
	}
	id, _, err := noteArgs(fs.Args(), false)
	if err != nil {
		return err
	}

	svc, err := c.newServices(serviceOptions{notifier: shell.NewNotifier(c.stderr)})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if err := svc.requireLogin(ctx); err != nil {
		return err
	}
	note, err := svc.client.GetNoteByID(ctx, id)
	if err != nil {
		return err
	}
	if note.UserID != svc.auth.CurrentUser() {
		return errNotOwner
	}
	if !*yes {
		answer, err := c.prompt.Line(fmt.Sprintf("Delete note #%d? [y/N] ", id))
		if err != nil {
			return err
		}
		if !isYes(answer) {
			fmt.Fprintln(c.stdout, "Cancelled.")
			return nil
		}
	}
	return svc.table.Dispatch(ctx, dispatch.Event{Action: dispatch.ActionDeleteNote, NoteID: id})
}
