package notes

import (
	"context"
	"fmt"
	"strconv"

	"geonotes/internal/dispatch"
	"geonotes/internal/types"
)

// RegisterActions installs the map and note handlers on the view's table.
func (v *View) RegisterActions() {
	v.table.Register(dispatch.ActionFetchNotes, func(ctx context.Context, ev dispatch.Event) error {
		return v.FetchNotes(ctx)
	})
	v.table.Register(dispatch.ActionMoveMap, func(ctx context.Context, ev dispatch.Event) error {
		var bounds types.Bounds
		var err error
		if bounds.North, err = floatArg(ev, "north"); err != nil {
			return err
		}
		if bounds.South, err = floatArg(ev, "south"); err != nil {
			return err
		}
		if bounds.East, err = floatArg(ev, "east"); err != nil {
			return err
		}
		if bounds.West, err = floatArg(ev, "west"); err != nil {
			return err
		}
		return v.Move(ctx, bounds)
	})
	v.table.Register(dispatch.ActionBeginCreate, func(ctx context.Context, ev dispatch.Event) error {
		lat, err := floatArg(ev, "lat")
		if err != nil {
			return err
		}
		lng, err := floatArg(ev, "lng")
		if err != nil {
			return err
		}
		v.BeginCreate(types.LatLng{Lat: lat, Lng: lng})
		return nil
	})
	v.table.Register(dispatch.ActionCreateNote, func(ctx context.Context, ev dispatch.Event) error {
		public := true
		if raw := ev.Arg("public"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("public: %w", err)
			}
			public = parsed
		}
		return v.CreateNote(ctx, ev.Arg("text"), public, ev.Arg("allowed_users"))
	})
	v.table.Register(dispatch.ActionOpenNote, func(ctx context.Context, ev dispatch.Event) error {
		_, err := v.OpenNote(ctx, ev.NoteID)
		return err
	})
	v.table.Register(dispatch.ActionCloseNote, func(ctx context.Context, ev dispatch.Event) error {
		v.CloseNote()
		return nil
	})
	v.table.Register(dispatch.ActionDeleteNote, func(ctx context.Context, ev dispatch.Event) error {
		return v.DeleteNote(ctx, ev.NoteID)
	})
}

func floatArg(ev dispatch.Event, key string) (float64, error) {
	raw := ev.Arg(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
