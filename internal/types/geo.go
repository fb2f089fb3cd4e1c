package types

import "math"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a viewport rectangle. It marshals to the field names the
// get_within_square endpoint expects.
type Bounds struct {
	North float64 `json:"upper_lattitude"`
	South float64 `json:"lower_lattitude"`
	East  float64 `json:"upper_longitude"`
	West  float64 `json:"lower_longitude"`
}

func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

func (b Bounds) Contains(p LatLng) bool {
	return p.Lat > b.South && p.Lat < b.North && p.Lng > b.West && p.Lng < b.East
}

// Viewport is a map center and zoom level using web-mercator tile semantics.
type Viewport struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

const (
	MinZoom = 1
	MaxZoom = 19
)

// Bounds approximates the visible rectangle for a viewport of the given size
// in pixels.
func (v Viewport) Bounds(widthPx, heightPx int) Bounds {
	if widthPx <= 0 {
		widthPx = 1024
	}
	if heightPx <= 0 {
		heightPx = 768
	}
	zoom := clampZoom(v.Zoom)
	degPerPx := 360.0 / (256.0 * math.Pow(2, float64(zoom)))
	halfW := degPerPx * float64(widthPx) / 2
	halfH := degPerPx * float64(heightPx) / 2 * math.Cos(v.Center.Lat*math.Pi/180)
	return Bounds{
		North: clampLat(v.Center.Lat + halfH),
		South: clampLat(v.Center.Lat - halfH),
		East:  v.Center.Lng + halfW,
		West:  v.Center.Lng - halfW,
	}
}

// Pan moves the center by a fraction of the visible span.
func (v Viewport) Pan(dLat, dLng float64, widthPx, heightPx int) Viewport {
	b := v.Bounds(widthPx, heightPx)
	next := v
	next.Center.Lat = clampLat(v.Center.Lat + dLat*(b.North-b.South))
	next.Center.Lng = v.Center.Lng + dLng*(b.East-b.West)
	return next
}

func (v Viewport) ZoomBy(delta int) Viewport {
	next := v
	next.Zoom = clampZoom(v.Zoom + delta)
	return next
}

func clampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

func clampLat(lat float64) float64 {
	return math.Max(-85, math.Min(85, lat))
}
