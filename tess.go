// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// Polygon tessellation under the non-zero winding rule. The algorithm is a
// scanline trapezoid decomposition: event rows are placed at every vertex
// and at every edge crossing, each band between consecutive rows is swept
// left to right accumulating signed winding, and every span where the
// winding is nonzero is emitted as two triangles. Crossing edges get their
// vertices synthesized at the event rows by linear interpolation, so
// self-intersecting input needs no special casing.

package svgmesh

import (
	"errors"
	"math"
	"sort"
)

var tessellationError = errors.New("degenerate fill region")

// tessEps merges event rows closer than this; bands thinner than it carry
// no area worth triangulating.
const tessEps = 1e-9

// tessEdge is a non-horizontal input edge normalized to point downward
// (y0 < y1). dir keeps the original orientation for winding accumulation.
type tessEdge struct {
	x0, y0, x1, y1 float64
	dir            int
}

func (e tessEdge) xAt(y float64) float64 {
	return e.x0 + (e.x1-e.x0)*(y-e.y0)/(e.y1-e.y0)
}

// Triangulate fills the region enclosed by loops under the non-zero
// winding rule and returns the triangle mesh as a flat point list, three
// points per triangle. Open loops are closed implicitly; multiple contours
// may be passed in one call, with holes wound opposite their outer
// boundary. Degenerate input (fewer than three distinct points, or
// non-finite coordinates) is reported as an error so the caller can drop
// the fill and keep the stroke.
func Triangulate(loops []Loop) ([]Point, error) {
	var edges []tessEdge
	points := 0
	for _, loop := range loops {
		n := len(loop)
		points += n
		for i := 0; i < n; i++ {
			a := loop[i]
			b := loop[(i+1)%n]
			if math.IsNaN(a.X+a.Y) || math.IsInf(a.X, 0) || math.IsInf(a.Y, 0) {
				return nil, tessellationError
			}
			if a.Y == b.Y {
				continue // horizontal edges never cross a band
			}
			if a.Y < b.Y {
				edges = append(edges, tessEdge{a.X, a.Y, b.X, b.Y, 1})
			} else {
				edges = append(edges, tessEdge{b.X, b.Y, a.X, a.Y, -1})
			}
		}
	}
	if points < 3 || len(edges) < 2 {
		return nil, tessellationError
	}

	events := make([]float64, 0, 2*len(edges))
	for _, e := range edges {
		events = append(events, e.y0, e.y1)
	}
	for i := 0; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			if y, ok := crossingY(edges[i], edges[j]); ok {
				events = append(events, y)
			}
		}
	}
	sort.Float64s(events)

	type slab struct {
		x0, x1, xm float64
		dir        int
	}
	var tris []Point
	var slabs []slab
	for k := 0; k+1 < len(events); k++ {
		y0, y1 := events[k], events[k+1]
		if y1-y0 <= tessEps {
			continue
		}
		ymid := (y0 + y1) / 2
		slabs = slabs[:0]
		for _, e := range edges {
			// Events include every endpoint and crossing, so an edge
			// covering the band midpoint spans the whole band.
			if e.y0 >= ymid || e.y1 <= ymid {
				continue
			}
			sx0, sx1 := e.xAt(y0), e.xAt(y1)
			slabs = append(slabs, slab{sx0, sx1, (sx0 + sx1) / 2, e.dir})
		}
		sort.Slice(slabs, func(i, j int) bool { return slabs[i].xm < slabs[j].xm })

		winding := 0
		var openX0, openX1 float64
		for _, s := range slabs {
			was := winding
			winding += s.dir
			if was == 0 && winding != 0 {
				openX0, openX1 = s.x0, s.x1
			} else if was != 0 && winding == 0 {
				a := Point{openX0, y0}
				b := Point{s.x0, y0}
				c := Point{s.x1, y1}
				d := Point{openX1, y1}
				tris = appendTriangle(tris, a, b, c)
				tris = appendTriangle(tris, a, c, d)
			}
		}
	}
	return tris, nil
}

// appendTriangle adds a triangle unless it is degenerate.
func appendTriangle(tris []Point, a, b, c Point) []Point {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(area) < 2*tessEps {
		return tris
	}
	return append(tris, a, b, c)
}

// crossingY reports the y coordinate of a proper interior crossing of two
// edges, used to split scan bands where the edge ordering changes.
func crossingY(a, b tessEdge) (float64, bool) {
	rx, ry := a.x1-a.x0, a.y1-a.y0
	sx, sy := b.x1-b.x0, b.y1-b.y0
	denom := rx*sy - ry*sx
	if math.Abs(denom) < tessEps {
		return 0, false // parallel or collinear
	}
	qpx, qpy := b.x0-a.x0, b.y0-a.y0
	t := (qpx*sy - qpy*sx) / denom
	u := (qpx*ry - qpy*rx) / denom
	if t <= 0 || t >= 1 || u <= 0 || u >= 1 {
		return 0, false
	}
	return a.y0 + t*ry, true
}

// TriangleArea returns the total unsigned area of a triangle list as
// produced by Triangulate.
func TriangleArea(tris []Point) float64 {
	var area float64
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := tris[i], tris[i+1], tris[i+2]
		area += math.Abs((b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X)) / 2
	}
	return area
}
