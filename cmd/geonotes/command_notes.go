package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"geonotes/internal/types"
)

// viewportWidthPx and viewportHeightPx size the rectangle the CLI asks for
// around a center point.
const (
	viewportWidthPx  = 1024
	viewportHeightPx = 768
)

type NotesCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	newServices servicesFactory
}

func NewNotesCommand(stdout, stderr io.Writer, newServices servicesFactory) *NotesCommand {
	return &NotesCommand{
		stdout:      stdout,
		stderr:      stderr,
		newServices: newServices,
	}
}

func (c *NotesCommand) Run(args []string) error {
	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var lat, lng, north, south, east, west optionalFloat
	fs.Var(&lat, "lat", "center latitude (default from config)")
	fs.Var(&lng, "lng", "center longitude (default from config)")
	zoom := fs.Int("zoom", 0, "zoom level (default from config)")
	fs.Var(&north, "north", "north edge of explicit bounds")
	fs.Var(&south, "south", "south edge of explicit bounds")
	fs.Var(&east, "east", "east edge of explicit bounds")
	fs.Var(&west, "west", "west edge of explicit bounds")
	user := fs.String("user", "", "list every note by this user instead")
	jsonOut := fs.Bool("json", false, "print notes as JSON")
	replies := fs.Bool("replies", false, "include replies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	explicit := north.set || south.set || east.set || west.set
	if explicit && !(north.set && south.set && east.set && west.set) {
		return errors.New("--north, --south, --east and --west must be given together")
	}

	svc, err := c.newServices(serviceOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.restore(ctx); err != nil {
		return err
	}

	var notes []types.Note
	if *user != "" {
		notes, err = svc.client.GetNotesByUser(ctx, *user)
		if err != nil {
			return err
		}
	} else {
		var bounds types.Bounds
		if explicit {
			bounds = types.Bounds{North: north.value, South: south.value, East: east.value, West: west.value}
		} else {
			vp := svc.defaultViewport()
			vp.Center = types.LatLng{Lat: lat.or(vp.Center.Lat), Lng: lng.or(vp.Center.Lng)}
			if *zoom > 0 {
				vp.Zoom = *zoom
			}
			bounds = vp.Bounds(viewportWidthPx, viewportHeightPx)
		}
		if err := svc.notes.Move(ctx, bounds); err != nil {
			return err
		}
		notes = svc.notes.Notes()
	}
	if !*replies {
		notes = rootNotes(notes)
	}

	if *jsonOut {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(notes)
	}
	if len(notes) == 0 {
		fmt.Fprintln(c.stdout, "No notes found.")
		return nil
	}
	printNotes(c.stdout, notes)
	return nil
}
