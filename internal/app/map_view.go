package app

import (
	"fmt"
	"strings"

	"geonotes/internal/notes"
	"geonotes/internal/types"
)

const (
	cellWidthPx  = 8
	cellHeightPx = 16
	maxGridRows  = 14
)

// markerGlyph labels the first nine markers with their list position so they
// can be picked out on the grid.
func markerGlyph(index int) string {
	if index < 9 {
		return fmt.Sprintf("%d", index+1)
	}
	return "•"
}

func (m *Model) renderGrid(markers []notes.Marker, width, rows int) string {
	if width < 4 || rows < 2 {
		return ""
	}
	cols := width - 2
	bounds := m.bounds()
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	for i, marker := range markers {
		row, col, ok := project(bounds, marker.Position, rows, cols)
		if !ok {
			continue
		}
		glyph := markerGlyph(i)
		style := markerStyle
		if !marker.Public {
			style = markerPrivateStyle
		}
		if i == m.selected {
			style = selectedStyle
		}
		grid[row][col] = style.Render(glyph)
	}
	center := bounds.Center()
	if row, col, ok := project(bounds, center, rows, cols); ok && grid[row][col] == " " {
		grid[row][col] = dividerStyle.Render("+")
	}

	lines := make([]string, 0, rows+2)
	lines = append(lines, dividerStyle.Render("┌"+strings.Repeat("─", cols)+"┐"))
	for _, row := range grid {
		lines = append(lines, dividerStyle.Render("│")+strings.Join(row, "")+dividerStyle.Render("│"))
	}
	lines = append(lines, dividerStyle.Render("└"+strings.Repeat("─", cols)+"┘"))
	return strings.Join(lines, "\n")
}

func project(bounds types.Bounds, p types.LatLng, rows, cols int) (int, int, bool) {
	latSpan := bounds.North - bounds.South
	lngSpan := bounds.East - bounds.West
	if latSpan <= 0 || lngSpan <= 0 || !bounds.Contains(p) {
		return 0, 0, false
	}
	row := int((bounds.North - p.Lat) / latSpan * float64(rows))
	col := int((p.Lng - bounds.West) / lngSpan * float64(cols))
	return min(row, rows-1), min(col, cols-1), true
}

func (m *Model) renderMarkerList(markers []notes.Marker, width, rows int) string {
	if rows <= 0 {
		return ""
	}
	if len(markers) == 0 {
		hint := "No notes in view."
		if m.loggedIn() {
			hint += " Press n to add one."
		}
		return helpStyle.Render(hint)
	}
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := min(len(markers), start+rows)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		marker := markers[i]
		prefix := "  "
		if i == m.selected {
			prefix = "▸ "
		}
		lock := ""
		if !marker.Public {
			lock = " ⊘"
		}
		line := fmt.Sprintf("%s%s %s%s  %s", prefix, markerGlyph(i), marker.Author, lock, marker.Preview)
		line = padToWidth(truncateToWidth(line, width), width)
		switch {
		case i == m.selected:
			line = selectedStyle.Render(line)
		case !marker.Public:
			line = markerPrivateStyle.Render(line)
		default:
			line = markerStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) bounds() types.Bounds {
	w, h := m.mapPixels()
	return m.viewport.Bounds(w, h)
}

func (m *Model) mapPixels() (int, int) {
	return max(1, m.width-2) * cellWidthPx, max(1, m.gridRows()) * cellHeightPx
}

func (m *Model) gridRows() int {
	return max(2, min(maxGridRows, (m.height-4)/2))
}
