// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// Gradient definitions and per-point color resolution. The geometry core
// only carries gradient references in Paint values; a rendering
// collaborator looks the definition up by id and calls Interpolate per
// vertex.

package svgmesh

import (
	"image/color"
	"math"
	"sort"
	"strings"
)

const (
	// ObjectBoundingBox gradient coordinates are fractions of the filled
	// shape's bounding box; UserSpaceOnUse coordinates are document units.
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

type (
	SpreadMethod  byte
	GradientUnits byte

	// GradStop is one color stop along a gradient.
	GradStop struct {
		Color   color.NRGBA
		Offset  float64
		Opacity float64
	}

	// Gradient is a linear or radial gradient definition registered under
	// its element id. points holds x1,y1,x2,y2 for linear gradients and
	// cx,cy,fx,fy,r for radial ones, as bounding-box fractions.
	Gradient struct {
		points   [5]float64
		stops    []GradStop
		bounds   struct{ X, Y, W, H float64 }
		matrix   Matrix2D
		spread   SpreadMethod
		units    GradientUnits
		isRadial bool
	}
)

// Stops returns the gradient's color stops in offset order.
func (g *Gradient) Stops() []GradStop {
	return g.stops
}

// Units reports whether the gradient geometry is bound to the shape's
// bounding box or to user space.
func (g *Gradient) Units() GradientUnits {
	return g.units
}

// IsRadial reports whether this is a radial rather than linear gradient.
func (g *Gradient) IsRadial() bool {
	return g.isRadial
}

// SetBounds rebinds an objectBoundingBox gradient to the extent of the
// shape being filled. The initial bounds are the document's.
func (g *Gradient) SetBounds(x, y, w, h float64) {
	g.bounds.X, g.bounds.Y = x, y
	g.bounds.W, g.bounds.H = w, h
}

// tColor maps the parameterized position t along the stop list to a color,
// honoring the gradient's spread method.
func (g *Gradient) tColor(t float64) color.NRGBA {
	switch len(g.stops) {
	case 0:
		// A gradient without stops still has to produce something
		// visible; magenta makes the authoring error obvious.
		return color.NRGBA{255, 0, 255, 255}
	case 1:
		return g.stopColor(0)
	}
	switch g.spread {
	case RepeatSpread:
		t -= math.Floor(t)
	case ReflectSpread:
		t = math.Mod(t, 2)
		if t < 0 {
			t += 2
		}
		if t > 1 {
			t = 2 - t
		}
	default: // PadSpread
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	if t <= g.stops[0].Offset {
		return g.stopColor(0)
	}
	last := len(g.stops) - 1
	if t >= g.stops[last].Offset {
		return g.stopColor(last)
	}
	place := 1
	for place < last && t > g.stops[place].Offset {
		place++
	}
	return g.blendStops(t, g.stops[place-1], g.stops[place])
}

func (g *Gradient) stopColor(i int) color.NRGBA {
	s := g.stops[i]
	return scaleAlpha(s.Color, s.Opacity)
}

func (g *Gradient) blendStops(t float64, s1, s2 GradStop) color.NRGBA {
	if s2.Offset == s1.Offset {
		return scaleAlpha(s2.Color, s2.Opacity)
	}
	tp := (t - s1.Offset) / (s2.Offset - s1.Offset)
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-tp) + float64(b)*tp + 0.5)
	}
	c := color.NRGBA{
		lerp(s1.Color.R, s2.Color.R),
		lerp(s1.Color.G, s2.Color.G),
		lerp(s1.Color.B, s2.Color.B),
		0xFF}
	return scaleAlpha(c, s1.Opacity*(1-tp)+s2.Opacity*tp)
}

// Interpolate resolves the gradient color at the document-space point pt.
func (g *Gradient) Interpolate(pt Point) color.NRGBA {
	w, h := g.bounds.W, g.bounds.H
	if w == 0 || h == 0 {
		return g.tColor(0)
	}
	x, y := pt.X, pt.Y
	if gradT, err := g.unitTransform().Invert(); err == nil {
		x, y = gradT.Transform(x, y)
	}
	if g.isRadial {
		cx := g.bounds.X + w*g.points[0]
		cy := g.bounds.Y + h*g.points[1]
		// An offset focus shifts the sample center.
		if g.points[2] != g.points[0] || g.points[3] != g.points[1] {
			cx = g.bounds.X + w*g.points[2]
			cy = g.bounds.Y + h*g.points[3]
		}
		rx := w * g.points[4]
		ry := h * g.points[4]
		dx := x - cx
		dy := y - cy
		return g.tColor(math.Sqrt(dx*dx/(rx*rx) + dy*dy/(ry*ry)))
	}
	p1x := g.bounds.X + w*g.points[0]
	p1y := g.bounds.Y + h*g.points[1]
	p2x := g.bounds.X + w*g.points[2]
	p2y := g.bounds.Y + h*g.points[3]
	dx := p2x - p1x
	dy := p2y - p1y
	d := dx*dx + dy*dy
	if d == 0 {
		return g.tColor(0)
	}
	return g.tColor((dx*(x-p1x) + dy*(y-p1y)) / d)
}

// unitTransform applies the gradientTransform about the gradient's bounds
// so that transforms authored in unit space land in document space.
func (g *Gradient) unitTransform() Matrix2D {
	w, h := g.bounds.W, g.bounds.H
	oriX, oriY := g.bounds.X, g.bounds.Y
	return Identity.Translate(oriX, oriY).Scale(w, h).
		Mult(g.matrix).Scale(1/w, 1/h).Translate(-oriX, -oriY)
}

// parseGradient registers a linearGradient or radialGradient element into
// the document's gradient registry instead of emitting a path.
func (p *parser) parseGradient(e *element, ctx drawContext, radial bool) error {
	id := e.attr("id")
	if id == "" {
		return p.report("gradient without id", zeroLengthIdError)
	}
	g := &Gradient{matrix: Identity, isRadial: radial}
	g.bounds.W, g.bounds.H = p.doc.Width, p.doc.Height
	if radial {
		g.points = [5]float64{0.5, 0.5, 0.5, 0.5, 0.5}
	} else {
		g.points = [5]float64{0, 0, 1, 0, 0}
	}

	var err error
	setFx, setFy := false, false
	for name, v := range e.attrs {
		switch name {
		case "x1":
			if !radial {
				g.points[0], err = readFraction(v)
			}
		case "y1":
			if !radial {
				g.points[1], err = readFraction(v)
			}
		case "x2":
			if !radial {
				g.points[2], err = readFraction(v)
			}
		case "y2":
			if !radial {
				g.points[3], err = readFraction(v)
			}
		case "cx":
			if radial {
				g.points[0], err = readFraction(v)
			}
		case "cy":
			if radial {
				g.points[1], err = readFraction(v)
			}
		case "fx":
			if radial {
				setFx = true
				g.points[2], err = readFraction(v)
			}
		case "fy":
			if radial {
				setFy = true
				g.points[3], err = readFraction(v)
			}
		case "r":
			if radial {
				g.points[4], err = readFraction(v)
			}
		case "gradientTransform":
			g.matrix, err = ParseTransform(v)
		case "gradientUnits":
			switch strings.TrimSpace(v) {
			case "userSpaceOnUse":
				g.units = UserSpaceOnUse
			case "objectBoundingBox":
				g.units = ObjectBoundingBox
			}
		case "spreadMethod":
			switch strings.TrimSpace(v) {
			case "pad":
				g.spread = PadSpread
			case "reflect":
				g.spread = ReflectSpread
			case "repeat":
				g.spread = RepeatSpread
			}
		}
		if err != nil {
			return p.report("bad gradient attribute "+name, err)
		}
	}
	if radial {
		if !setFx { // fx defaults to cx
			g.points[2] = g.points[0]
		}
		if !setFy {
			g.points[3] = g.points[1]
		}
	}

	for _, ce := range e.children {
		if ce.name != "stop" {
			continue
		}
		stop := GradStop{Color: blackColor, Opacity: 1}
		for name, v := range ce.attrs {
			switch name {
			case "offset":
				stop.Offset, err = readFraction(v)
			case "stop-color":
				var paint Paint
				paint, err = ParsePaint(v, NoPaint)
				if err == nil && paint.Kind == PaintSolid {
					stop.Color = paint.Color
				}
			case "stop-opacity":
				stop.Opacity, err = parseFloat(v)
			}
			if err != nil {
				if rerr := p.report("bad stop attribute "+name, err); rerr != nil {
					return rerr
				}
				err = nil
			}
		}
		g.stops = append(g.stops, stop)
	}
	sort.SliceStable(g.stops, func(i, j int) bool {
		return g.stops[i].Offset < g.stops[j].Offset
	})

	p.doc.gradients[id] = g
	return nil
}
