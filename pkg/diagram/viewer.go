// Package diagram renders mermaid diagrams and tracks the zoom and pan state
// of the diagram viewer.
package diagram

import "math"

// Zoom limits for the viewer.
const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// Size is a width and height in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Fit returns the scale that fits intrinsic inside avail without enlarging
// it. Degenerate sizes fit at 1.
func Fit(avail, intrinsic Size) float64 {
	if intrinsic.Width <= 0 || intrinsic.Height <= 0 || avail.Width <= 0 || avail.Height <= 0 {
		return 1
	}
	return math.Min(1, math.Min(avail.Width/intrinsic.Width, avail.Height/intrinsic.Height))
}

// Viewer holds the zoom and pan of one open diagram. The zero value is not
// ready; use NewViewer.
type Viewer struct {
	fit  float64
	zoom float64
	panX float64
	panY float64
}

// NewViewer creates a viewer for a diagram of the given intrinsic size shown
// in avail.
func NewViewer(avail, intrinsic Size) *Viewer {
	return &Viewer{fit: Fit(avail, intrinsic), zoom: 1}
}

// Zoom returns the user zoom factor.
func (v *Viewer) Zoom() float64 { return v.zoom }

// Offset returns the pan offset.
func (v *Viewer) Offset() (float64, float64) { return v.panX, v.panY }

// Scale returns the effective scale, fit times zoom.
func (v *Viewer) Scale() float64 { return v.fit * v.zoom }

// Resize recomputes the fit for a new available size.
func (v *Viewer) Resize(avail, intrinsic Size) {
	v.fit = Fit(avail, intrinsic)
}

// ZoomIn increases zoom by one step.
func (v *Viewer) ZoomIn() { v.SetZoom(v.zoom + ZoomStep) }

// ZoomOut decreases zoom by one step.
func (v *Viewer) ZoomOut() { v.SetZoom(v.zoom - ZoomStep) }

// SetZoom sets zoom, rounded to a step and clamped to [MinZoom, MaxZoom].
// Dropping back to 1 or below re-centers the diagram.
func (v *Viewer) SetZoom(zoom float64) {
	zoom = math.Round(zoom/ZoomStep) / math.Round(1/ZoomStep)
	v.zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	if v.zoom <= 1 {
		v.panX, v.panY = 0, 0
	}
}

// Pan moves the diagram. It reports false and does nothing unless the
// diagram is zoomed in.
func (v *Viewer) Pan(dx, dy float64) bool {
	if v.zoom <= 1 {
		return false
	}
	v.panX += dx
	v.panY += dy
	return true
}

// Reset restores zoom 1 with no pan.
func (v *Viewer) Reset() {
	v.zoom = 1
	v.panX, v.panY = 0, 0
}
