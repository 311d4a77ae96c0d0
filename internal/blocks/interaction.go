package blocks

import (
	"math"
	"strconv"
	"sync"
	"time"
)

// CopyResetDelay is how long the copy confirmation stays visible.
const CopyResetDelay = 2 * time.Second

// Copy control labels.
const (
	CopyLabel   = "COPIAR"
	CopiedLabel = "COPIADO"
)

// CopyFeedback tracks the confirmation state of one code block's copy control.
// Triggering again before the delay elapses restarts the delay.
type CopyFeedback struct {
	mu       sync.Mutex
	now      func() time.Time
	copiedAt time.Time
}

// NewCopyFeedback returns feedback state driven by clock; nil uses time.Now.
func NewCopyFeedback(clock func() time.Time) *CopyFeedback {
	if clock == nil {
		clock = time.Now
	}
	return &CopyFeedback{now: clock}
}

// Trigger records a successful copy.
func (c *CopyFeedback) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copiedAt = c.now()
}

// Copied reports whether the confirmation is currently shown.
func (c *CopyFeedback) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copiedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.copiedAt) < CopyResetDelay
}

// Label returns the control label for the current state.
func (c *CopyFeedback) Label() string {
	if c.Copied() {
		return CopiedLabel
	}
	return CopyLabel
}

// Zoom bounds for the enlarged image view.
const (
	MinScale  = 1.0
	MaxScale  = 4.0
	ScaleStep = 0.5
)

// ClampScale bounds s to [MinScale, MaxScale]. NaN maps to MinScale.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return MinScale
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ZoomIn returns the next larger scale.
func ZoomIn(s float64) float64 { return ClampScale(s + ScaleStep) }

// ZoomOut returns the next smaller scale.
func ZoomOut(s float64) float64 { return ClampScale(s - ScaleStep) }

// ParseScale reads a scale query value, snapping to the step grid. Invalid input yields MinScale.
func ParseScale(raw string) float64 {
	s, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return MinScale
	}
	return ClampScale(math.Round(s/ScaleStep) * ScaleStep)
}

// ScalePercent formats a scale for display, e.g. 1.5 as 150.
func ScalePercent(s float64) int {
	return int(math.Round(s * 100))
}

// Viewer is the enlarged-image state of one rendered body. At most one image
// is open; opening another closes the current one, and closing resets the scale.
type Viewer struct {
	mu    sync.Mutex
	open  int
	scale float64
}

// NewViewer returns a closed viewer.
func NewViewer() *Viewer {
	return &Viewer{open: -1, scale: MinScale}
}

// Open enlarges the image at index.
func (v *Viewer) Open(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.open == index {
		return
	}
	v.open = index
	v.scale = MinScale
}

// Close hides the enlarged view and resets the scale.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = -1
	v.scale = MinScale
}

// ZoomIn increases the scale of the open image. It is a no-op when closed.
func (v *Viewer) ZoomIn() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.open >= 0 {
		v.scale = ZoomIn(v.scale)
	}
}

// ZoomOut decreases the scale of the open image. It is a no-op when closed.
func (v *Viewer) ZoomOut() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.open >= 0 {
		v.scale = ZoomOut(v.scale)
	}
}

// Current returns the open index and its scale; ok is false when closed.
func (v *Viewer) Current() (index int, scale float64, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open, v.scale, v.open >= 0
}
