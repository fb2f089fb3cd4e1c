package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"strconv"
	"strings"

	"geonotes/internal/dispatch"
	"geonotes/internal/shell"
)

type CreateCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewCreateCommand(stdout, stderr io.Writer, newServices servicesFactory) *CreateCommand {
	return &CreateCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *CreateCommand) Run(args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var lat, lng optionalFloat
	var allowed stringList
	fs.Var(&lat, "lat", "latitude (default from config)")
	fs.Var(&lng, "lng", "longitude (default from config)")
	private := fs.Bool("private", false, "only visible to you and --allow users")
	fs.Var(&allowed, "allow", "user allowed to see a private note (repeatable, comma separated)")
	if err := fs.Parse(reorderFlags(args)); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("text is required")
	}
	if len(allowed) > 0 && !*private {
		return errors.New("--allow only applies to --private notes")
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
	center := svc.defaultViewport().Center
	if err := svc.table.Dispatch(ctx, dispatch.Event{
		Action: dispatch.ActionBeginCreate,
		Args: map[string]string{
			"lat": strconv.FormatFloat(lat.or(center.Lat), 'f', -1, 64),
			"lng": strconv.FormatFloat(lng.or(center.Lng), 'f', -1, 64),
		},
	}); err != nil {
		return err
	}
	return svc.table.Dispatch(ctx, dispatch.Event{
		Action: dispatch.ActionCreateNote,
		Args: map[string]string{
			"text":          text,
			"public":        strconv.FormatBool(!*private),
			"allowed_users": allowed.String(),
		},
	})
}

type ReplyCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewReplyCommand(stdout, stderr io.Writer, newServices servicesFactory) *ReplyCommand {
	return &ReplyCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *ReplyCommand) Run(args []string) error {
	fs := flag.NewFlagSet("reply", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, text, err := noteArgs(fs.Args(), true)
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
	return svc.notes.Reply(ctx, id, text)
}
