package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"geonotes/internal/thread"
	"geonotes/internal/types"
)

const noteTextWidth = 48

func printNotes(output io.Writer, notes []types.Note) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tAUTHOR\tVISIBILITY\tLAT\tLNG\tTEXT")
	for _, note := range notes {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%.5f\t%.5f\t%s\n",
			note.ID, thread.SafeLine(note.UserID), visibility(note), note.Latitude, note.Longitude, oneLine(note.Text))
	}
	_ = writer.Flush()
}

func visibility(note types.Note) string {
	if note.Public {
		return "public"
	}
	if len(note.AllowedUsers) > 0 {
		return "shared:" + strings.Join(note.AllowedUsers, ",")
	}
	return "private"
}

func oneLine(text string) string {
	line := strings.Join(strings.Fields(thread.PlainText(text)), " ")
	return runewidth.Truncate(line, noteTextWidth, "…")
}

func rootNotes(notes []types.Note) []types.Note {
	out := make([]types.Note, 0, len(notes))
	for _, note := range notes {
		if note.IsRoot() {
			out = append(out, note)
		}
	}
	return out
}

func parseNoteID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", raw)
	}
	return id, nil
}

// noteArgs splits "<id> <text...>" positional arguments.
func noteArgs(args []string, needText bool) (int, string, error) {
	if len(args) == 0 {
		return 0, "", errors.New("note id is required")
	}
	id, err := parseNoteID(args[0])
	if err != nil {
		return 0, "", err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if needText && text == "" {
		return 0, "", errors.New("text is required")
	}
	return id, text, nil
}

// reorderFlags moves flags ahead of positional arguments so "thread 42
// --format html" parses like "thread --format html -- 42".
func reorderFlags(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case looksLikeFlag(arg):
			flags = append(flags, arg)
			if !strings.Contains(arg, "=") && i+1 < len(args) && !looksLikeFlag(args[i+1]) && !isBoolFlag(arg) {
				flags = append(flags, args[i+1])
				i++
			}
		default:
			positional = append(positional, arg)
		}
	}
	return append(append(flags, "--"), positional...)
}

var boolFlags = map[string]struct{}{
	"yes":     {},
	"json":    {},
	"private": {},
	"replies": {},
	"default": {},
	"no-wait": {},
}

func isBoolFlag(arg string) bool {
	_, ok := boolFlags[strings.TrimLeft(arg, "-")]
	return ok
}

// looksLikeFlag treats negative numbers as values so coordinates such as
// -0.09 survive reordering.
func looksLikeFlag(arg string) bool {
	if len(arg) < 2 || !strings.HasPrefix(arg, "-") {
		return false
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err != nil
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// optionalFloat is a float flag that remembers whether it was given.
type optionalFloat struct {
	value float64
	set   bool
}

func (f *optionalFloat) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *optionalFloat) Set(raw string) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return err
	}
	f.value = value
	f.set = true
	return nil
}

func (f optionalFloat) or(fallback float64) float64 {
	if f.set {
		return f.value
	}
	return fallback
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
