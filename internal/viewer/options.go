// Package viewer implements the STL preview component: declarative
// per-container options, asynchronous mesh loading, placement
// normalization, camera auto-framing, and a visibility-gated render
// loop, with one independent instance per discovered container.
package viewer

import (
	"errors"
	gomath "math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/openairframe/stlview/internal/page"
)

// ErrMissingSource is the single fatal configuration error: a container
// without a data-src attribute gets a status message and nothing else.
var ErrMissingSource = errors.New("viewer: missing data-src")

// Declarative attribute defaults.
const (
	DefaultGridSize        = float32(1000)
	DefaultGridDivisions   = 20
	DefaultGridOffset      = float32(-0.001)
	DefaultMetalness       = float32(0.1)
	DefaultRoughness       = float32(0.7)
	DefaultOffsetX         = float32(-10)
	DefaultAutoRotateSpeed = float32(0.5) // radians per second
)

// Default colors: a neutral mesh gray and two grid grays.
var (
	DefaultMeshColor  = mgl32.Vec3{0.565, 0.565, 0.565} // #909090
	DefaultGridColor1 = mgl32.Vec3{0.267, 0.267, 0.267} // #444444
	DefaultGridColor2 = mgl32.Vec3{0.533, 0.533, 0.533} // #888888
)

// Options is the resolved configuration for one viewer instance.
// Every field holds either the parsed attribute value or its default;
// nothing is left unset.
type Options struct {
	Source string

	Transparent     bool
	BackgroundColor mgl32.Vec3

	ShowGrid      bool
	GridSize      float32
	GridDivisions int
	GridColor1    mgl32.Vec3
	GridColor2    mgl32.Vec3
	GridOffset    float32

	AutoRotate      bool
	AutoRotateSpeed float32

	MeshColor mgl32.Vec3
	Metalness float32
	Roughness float32

	// OffsetX is the cosmetic horizontal shift applied after grounding.
	OffsetX float32
}

// ParseOptions resolves a container's data attributes. Malformed values
// fall back to their defaults; only a missing data-src is fatal, and
// even then the returned error never aborts sibling containers.
func ParseOptions(c *page.Container, fallbackBackground mgl32.Vec3) (Options, error) {
	opts := Options{
		BackgroundColor: fallbackBackground,
		GridSize:        DefaultGridSize,
		GridDivisions:   DefaultGridDivisions,
		GridColor1:      DefaultGridColor1,
		GridColor2:      DefaultGridColor2,
		GridOffset:      DefaultGridOffset,
		AutoRotateSpeed: DefaultAutoRotateSpeed,
		MeshColor:       DefaultMeshColor,
		Metalness:       DefaultMetalness,
		Roughness:       DefaultRoughness,
		OffsetX:         DefaultOffsetX,
	}

	opts.Source = strings.TrimSpace(c.Attr("data-src"))
	if opts.Source == "" {
		return opts, ErrMissingSource
	}

	if bg := c.Attr("data-background"); bg != "" {
		if strings.EqualFold(bg, "transparent") {
			opts.Transparent = true
		} else {
			opts.BackgroundColor = parseColor(bg, fallbackBackground)
		}
	}

	opts.ShowGrid = parseBool(c.Attr("data-grid"), false)
	if opts.ShowGrid {
		opts.GridSize = parseFloat(c.Attr("data-grid-size"), DefaultGridSize)
		opts.GridDivisions = parseInt(c.Attr("data-grid-divisions"), DefaultGridDivisions)
		opts.GridColor1 = parseColor(c.Attr("data-grid-color1"), DefaultGridColor1)
		opts.GridColor2 = parseColor(c.Attr("data-grid-color2"), DefaultGridColor2)
		opts.GridOffset = parseFloat(c.Attr("data-grid-offset"), DefaultGridOffset)
	}

	opts.AutoRotate = parseBool(c.Attr("data-auto-rotate"), false)
	opts.AutoRotateSpeed = parseFloat(c.Attr("data-auto-rotate-speed"), DefaultAutoRotateSpeed)

	opts.MeshColor = parseColor(c.Attr("data-color"), DefaultMeshColor)
	opts.Metalness = parseFloat(c.Attr("data-metalness"), DefaultMetalness)
	opts.Roughness = parseFloat(c.Attr("data-roughness"), DefaultRoughness)
	opts.OffsetX = parseFloat(c.Attr("data-offset-x"), DefaultOffsetX)

	return opts, nil
}

// parseFloat is the NaN-safe numeric fallback: empty, unparsable, and
// non-finite values all resolve to the default.
func parseFloat(s string, def float32) float32 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return def
	}
	return float32(f)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// ParseHexColor converts a hex color string to an RGB vector,
// returning def when the string is not a valid color. Exposed for the
// shell's theme configuration.
func ParseHexColor(s string, def mgl32.Vec3) mgl32.Vec3 {
	return parseColor(s, def)
}

// parseColor accepts "#rgb" and "#rrggbb" (the hash is optional).
func parseColor(s string, def mgl32.Vec3) mgl32.Vec3 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return mgl32.Vec3{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}
}
