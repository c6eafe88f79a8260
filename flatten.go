// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// Flattening of cubic Bezier segments and elliptical arcs into line
// segments. Arc conversion follows the SVG arc implementation notes:
// http://www.w3.org/TR/2003/REC-SVG11-20030114/implnote.html#ArcImplementationNotes

package svgmesh

import "math"

// maxArcSegments bounds the sample count of a single arc so pathological
// sweep values cannot balloon the point budget.
const maxArcSegments = 1024

// bezierCoefficients precomputes segs+1 samples of the cubic Bernstein
// basis for t evenly spaced in [0, 1].
func bezierCoefficients(segs int) [][4]float64 {
	if segs < 1 {
		segs = 1
	}
	coefs := make([][4]float64, 0, segs+1)
	for i := 0; i <= segs; i++ {
		t := float64(i) / float64(segs)
		mt := 1 - t
		coefs = append(coefs, [4]float64{
			mt * mt * mt,
			3 * t * mt * mt,
			3 * t * t * mt,
			t * t * t,
		})
	}
	return coefs
}

// curveTo flattens a cubic Bezier from the current point through control
// points (x1,y1), (x2,y2) to (x,y), and records the second control point
// for shorthand continuation.
func (c *pathCursor) curveTo(x1, y1, x2, y2, x, y float64) {
	if c.bezierCoefs == nil {
		c.bezierCoefs = bezierCoefficients(c.bezierSegs)
	}
	c.cntlPtX, c.cntlPtY = x2, y2
	x0, y0 := c.placeX, c.placeY
	for _, t := range c.bezierCoefs {
		px := t[0]*x0 + t[1]*x1 + t[2]*x2 + t[3]*x
		py := t[0]*y0 + t[1]*y1 + t[2]*y2 + t[3]*y
		c.loop = append(c.loop, Point{px, py})
	}
	c.placeX, c.placeY = x, y
}

// vectorAngle returns the signed angle from vector u to vector v.
func vectorAngle(ux, uy, vx, vy float64) float64 {
	d := (ux*vx + uy*vy) / math.Sqrt((ux*ux+uy*uy)*(vx*vx+vy*vy))
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	a := math.Acos(d)
	if ux*vy > uy*vx {
		return a
	}
	return -a
}

// arcTo flattens an elliptical arc from the current point to (x, y) with
// radii rx, ry and x-axis rotation phiDeg degrees. The center is derived by
// the endpoint-to-center parameterization; a negative radicand (radii too
// small for the chord) is clamped to zero, treating the arc as tangent
// rather than failing. The sample density is proportional to the angular
// sweep and the configured circle segment count.
func (c *pathCursor) arcTo(rx, ry, phiDeg float64, largeArc, sweep bool, x, y float64) {
	if rx == 0 || ry == 0 {
		// A zero radius collapses the arc to a straight segment.
		c.lineTo(x, y)
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	x1, y1 := c.placeX, c.placeY
	if x1 == x && y1 == y {
		return
	}
	phi := phiDeg * math.Pi / 180
	cp, sp := math.Cos(phi), math.Sin(phi)

	// Chord midpoint in the ellipse's local frame.
	dx, dy := 0.5*(x1-x), 0.5*(y1-y)
	xp := cp*dx + sp*dy
	yp := -sp*dx + cp*dy

	denom := (rx*yp)*(rx*yp) + (ry*xp)*(ry*xp)
	if denom == 0 {
		c.lineTo(x, y)
		return
	}
	r2 := ((rx*ry)*(rx*ry) - denom) / denom
	if r2 < 0 {
		r2 = 0 // known-lossy fallback for malformed radii
	}
	r := math.Sqrt(r2)
	if largeArc == sweep {
		r = -r
	}
	cxp := r * rx * yp / ry
	cyp := -r * ry * xp / rx
	cx := cp*cxp - sp*cyp + 0.5*(x1+x)
	cy := sp*cxp + cp*cyp + 0.5*(y1+y)

	psi := vectorAngle(1, 0, (xp-cxp)/rx, (yp-cyp)/ry)
	delta := vectorAngle((xp-cxp)/rx, (yp-cyp)/ry, (-xp-cxp)/rx, (-yp-cyp)/ry)
	// sweep=1 always advances the angle positively, sweep=0 negatively.
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	}
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	n := int(math.Abs(float64(c.circleSegs) * delta / (2 * math.Pi)))
	if n < 1 {
		n = 1
	}
	if n > maxArcSegments {
		n = maxArcSegments
	}
	for i := 0; i <= n; i++ {
		if i == n {
			// Land on the endpoint exactly; no roundoff error.
			c.lineTo(x, y)
			break
		}
		theta := psi + float64(i)*delta/float64(n)
		ct, st := math.Cos(theta), math.Sin(theta)
		c.lineTo(cp*rx*ct-sp*ry*st+cx, sp*rx*ct+cp*ry*st+cy)
	}
}
