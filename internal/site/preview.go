package site

import (
	"image/color"

	"github.com/fogleman/gg"

	"galaxy-forge/internal/galaxy"
)

// Preview renders a layout snapshot to a PNG galaxy map.
// The static site embeds the image and the dashboard serves it live.
type Preview struct {
	width  int
	height int
}

// NewPreview creates a renderer for the given canvas size.
func NewPreview(width, height int) *Preview {
	return &Preview{width: width, height: height}
}

// RenderPNG draws the snapshot and writes it to path.
func (p *Preview) RenderPNG(snap *galaxy.LayoutSnapshot, path string) error {
	dc := gg.NewContext(p.width, p.height)

	p.drawBackground(dc)
	p.drawOrbits(dc, snap.Entities)
	for _, e := range snap.Entities {
		p.drawEntity(dc, e)
	}

	return dc.SavePNG(path)
}

func (p *Preview) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.DrawRectangle(0, 0, float64(p.width), float64(p.height))
	dc.Fill()

	// Sparse starfield; deterministic positions so rebuilds diff cleanly
	dc.SetColor(color.RGBA{255, 255, 255, 180})
	for i := 0; i < 60; i++ {
		x := float64((i * 131) % p.width)
		y := float64((i * 73) % p.height)
		dc.DrawCircle(x, y, 1)
		dc.Fill()
	}
}

// drawOrbits draws the orbit ring of every child around its parent.
func (p *Preview) drawOrbits(dc *gg.Context, entities []galaxy.EntitySnapshot) {
	byID := make(map[string]galaxy.EntitySnapshot, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	dc.SetColor(color.RGBA{80, 90, 120, 70})
	dc.SetLineWidth(1)
	for _, e := range entities {
		if e.Parent == "" || e.OrbitRadius <= 0 {
			continue
		}
		parent, ok := byID[e.Parent]
		if !ok {
			continue
		}
		dc.DrawCircle(parent.X, parent.Y, e.OrbitRadius)
		dc.Stroke()
	}
}

func (p *Preview) drawEntity(dc *gg.Context, e galaxy.EntitySnapshot) {
	body := hexColor(e.Color)

	// Importance glow
	if e.Importance == galaxy.ImportanceHigh {
		glow := body
		glow.A = 60
		dc.SetColor(glow)
		dc.DrawCircle(e.X, e.Y, e.Radius+8)
		dc.Fill()
	}

	dc.SetColor(body)
	dc.DrawCircle(e.X, e.Y, e.Radius)
	dc.Fill()

	// Border weight follows priority
	dc.SetColor(color.RGBA{255, 255, 255, 200})
	dc.SetLineWidth(1 + e.Priority/6)
	dc.DrawCircle(e.X, e.Y, e.Radius)
	dc.Stroke()

	if e.Title != "" {
		dc.SetColor(color.RGBA{220, 225, 235, 255})
		dc.DrawStringAnchored(e.Title, e.X, e.Y+e.Radius+12, 0.5, 0.5)
	}
}

// hexColor parses "#rrggbb" into an opaque RGBA; bad input falls back to a
// neutral grey rather than failing the render.
func hexColor(s string) color.RGBA {
	fallback := color.RGBA{144, 164, 174, 255}
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexVal(s[1+i*2])
		lo, ok2 := hexVal(s[2+i*2])
		if !ok1 || !ok2 {
			return fallback
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 255}
}

func hexVal(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
