package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"geonotes/internal/thread"
	"geonotes/internal/types"
)

const (
	threadFormatText = "text"
	threadFormatHTML = "html"

	maxThreadDepth = 64
)

type ThreadCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewThreadCommand(stdout, stderr io.Writer, newServices servicesFactory) *ThreadCommand {
	return &ThreadCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *ThreadCommand) Run(args []string) error {
	fs := flag.NewFlagSet("thread", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", threadFormatText, "output format: text|html")
	if err := fs.Parse(reorderFlags(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: geonotes thread <id> [--format text|html]")
	}
	id, err := parseNoteID(fs.Arg(0))
	if err != nil {
		return err
	}

	var renderer thread.Renderer
	*format = strings.ToLower(strings.TrimSpace(*format))
	switch *format {
	case threadFormatText:
		renderer = thread.TextRenderer{}
	case threadFormatHTML:
		renderer = thread.NewHTMLRenderer()
	default:
		return errors.New("invalid format: must be text or html")
	}

	svc, err := c.newServices(serviceOptions{renderer: renderer})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.restore(ctx); err != nil {
		return err
	}
	root, err := findRoot(ctx, svc, id)
	if err != nil {
		return err
	}

	// The thread is assembled from whatever the backend serves around the
	// root, so ask for a tight rectangle at the highest zoom.
	vp := types.Viewport{Center: root.Position(), Zoom: types.MaxZoom}
	if err := svc.notes.Move(ctx, vp.Bounds(viewportWidthPx, viewportHeightPx)); err != nil {
		return err
	}
	modal, err := svc.notes.OpenNote(ctx, root.ID)
	if err != nil {
		return err
	}
	defer svc.notes.CloseNote()

	if *format == threadFormatHTML {
		fmt.Fprintln(c.stdout, modal.Rendered.Markup)
		return nil
	}
	fmt.Fprintf(c.stdout, "#%d by %s (%s)\n", modal.Root.ID, thread.SafeLine(modal.Root.UserID), visibility(modal.Root))
	fmt.Fprintln(c.stdout, thread.PlainText(modal.Root.Text))
	fmt.Fprintln(c.stdout)
	fmt.Fprintf(c.stdout, "Replies (%d)\n", modal.ReplyCount)
	if markup := strings.TrimRight(modal.Rendered.Markup, "\n"); markup != "" {
		fmt.Fprintln(c.stdout, markup)
	}
	return nil
}

// findRoot walks parent links up to the note anchored on the map.
func findRoot(ctx context.Context, svc *services, id int) (*types.Note, error) {
	note, err := svc.client.GetNoteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for depth := 0; !note.IsRoot(); depth++ {
		if depth >= maxThreadDepth {
			return nil, fmt.Errorf("note %d: reply chain too deep", id)
		}
		if note, err = svc.client.GetNoteByID(ctx, note.ParentID); err != nil {
			return nil, err
		}
	}
	return note, nil
}
