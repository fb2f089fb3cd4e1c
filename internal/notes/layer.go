package notes

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"geonotes/internal/types"
)

const previewWidth = 48

// Marker is a root note placed on the map.
type Marker struct {
	NoteID   int
	Position types.LatLng
	Author   string
	Preview  string
	Long     bool
	Public   bool
}

type MarkerLayer interface {
	Replace(markers []Marker)
	Markers() []Marker
}

// Layer is an in-memory MarkerLayer.
type Layer struct {
	mu      sync.RWMutex
	markers []Marker
}

func NewLayer() *Layer {
	return &Layer{}
}

func (l *Layer) Replace(markers []Marker) {
	next := append([]Marker(nil), markers...)
	l.mu.Lock()
	l.markers = next
	l.mu.Unlock()
}

func (l *Layer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Marker(nil), l.markers...)
}

func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.markers)
}

func preview(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i]) + " …"
	}
	return runewidth.Truncate(line, previewWidth, "…")
}
