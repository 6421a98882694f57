package calibration

// Default display geometry
const (
	DefaultDisplayWidth  = 1024
	DefaultDisplayHeight = 768
	DefaultMarkerSize    = 128
	DefaultBoundX        = 1600
	DefaultBoundY        = 1200
)

// Config holds the display geometry used for projection.
type Config struct {
	// DisplayWidth and DisplayHeight define the target rectangle.
	DisplayWidth  float64
	DisplayHeight float64

	// MarkerSize insets the target rectangle on every side.
	MarkerSize float64

	// Projected coordinates outside (0, BoundX) or (0, BoundY) fall back to
	// CenterX or CenterY on that axis.
	BoundX  float64
	BoundY  float64
	CenterX float64
	CenterY float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		DisplayWidth:  DefaultDisplayWidth,
		DisplayHeight: DefaultDisplayHeight,
		MarkerSize:    DefaultMarkerSize,
		BoundX:        DefaultBoundX,
		BoundY:        DefaultBoundY,
		CenterX:       DefaultBoundX / 2,
		CenterY:       DefaultBoundY / 2,
	}
}

// Target returns the margin-inset target rectangle of this configuration.
func (c Config) Target() [NumPoints]Point {
	return Target(c.DisplayWidth, c.DisplayHeight, c.MarkerSize)
}

// Fallback replaces an out-of-range coordinate with the center on that axis.
func (c Config) Fallback(x, y float64) (float64, float64) {
	if !(x > 0 && x < c.BoundX) {
		x = c.CenterX
	}
	if !(y > 0 && y < c.BoundY) {
		y = c.CenterY
	}
	return x, y
}

// Projector owns the point set and the transform derived from it.
type Projector struct {
	config    Config
	points    PointSet
	transform Transform
	ready     bool
	dirty     bool
}

// NewProjector creates a Projector with no recorded points.
func NewProjector(config Config) *Projector {
	return &Projector{config: config}
}

// Config returns the projection geometry.
func (p *Projector) Config() Config {
	return p.config
}

// Record stores a reference point. The transform is refreshed by the next
// Update.
func (p *Projector) Record(id int, x, y float64) bool {
	if !p.points.Record(id, x, y) {
		return false
	}
	p.dirty = true
	return true
}

// Reset forgets all points and the transform.
func (p *Projector) Reset() {
	p.points.Reset()
	p.transform = Transform{}
	p.ready = false
	p.dirty = false
}

// Update recomputes the transform if the points changed since the last call
// and all four are set. A degenerate set keeps the previous transform.
func (p *Projector) Update() error {
	if !p.dirty || !p.points.AllSet() {
		return nil
	}
	p.dirty = false

	t, err := ComputeTransform(p.points.Points(), p.config.Target())
	if err != nil {
		return err
	}
	p.transform = t
	p.ready = true
	return nil
}

// Ready reports whether a transform is available.
func (p *Projector) Ready() bool {
	return p.ready
}

// Points returns the current point set.
func (p *Projector) Points() PointSet {
	return p.points
}

// Transform returns the current transform and whether it is valid.
func (p *Projector) Transform() (Transform, bool) {
	return p.transform, p.ready
}

// Project maps a raw coordinate into display space, falling back to the
// configured center on any axis that leaves the bounds. Without a transform
// the input is returned unchanged.
func (p *Projector) Project(x, y float64) (float64, float64) {
	if !p.ready {
		return x, y
	}
	px, py, ok := p.transform.Apply(x, y)
	if !ok {
		return p.config.CenterX, p.config.CenterY
	}
	return p.config.Fallback(px, py)
}
