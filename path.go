// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// path.go interprets SVG path data and the basic shape elements into loops
// of points. Curved segments are flattened by curveTo and arcTo in
// flatten.go.

package svgmesh

import (
	"log"
	"math"
	"strconv"
)

// ErrorMode selects how recoverable parse problems are surfaced.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips anything unrecognized.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs unrecognized input and carries on.
	WarnErrorMode
	// StrictErrorMode turns recoverable problems into errors.
	StrictErrorMode
)

// mergeTolerance is the squared distance under which adjacent loop points
// are merged when a path is finalized.
const mergeTolerance = 0.001

const (
	defaultBezierSegments = 20
	defaultCircleSegments = 24
)

// pathCursor walks path data and shape primitives, accumulating loops of
// points. It holds the current point, the last cubic control point for
// shorthand continuation, and the in-progress loop.
type pathCursor struct {
	placeX, placeY   float64
	cntlPtX, cntlPtY float64
	lastKey          byte
	loop             Loop
	loops            []Loop
	bezierSegs       int
	circleSegs       int
	bezierCoefs      [][4]float64
	errorMode        ErrorMode
}

func newPathCursor(bezierSegs, circleSegs int, mode ErrorMode) *pathCursor {
	return &pathCursor{
		bezierSegs: bezierSegs,
		circleSegs: circleSegs,
		errorMode:  mode,
	}
}

func (c *pathCursor) init() {
	c.placeX = 0
	c.placeY = 0
	c.lastKey = ' '
	c.loop = nil
	c.loops = nil
}

// report handles a recoverable diagnostic according to the cursor's error
// mode. It returns a non-nil error only in strict mode.
func (c *pathCursor) report(msg string, err error) error {
	switch c.errorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		log.Println("svgmesh: " + msg)
	}
	return nil
}

func (c *pathCursor) setPosition(x, y float64) {
	c.placeX = x
	c.placeY = y
	c.loop = append(c.loop, Point{x, y})
}

func (c *pathCursor) lineTo(x, y float64) {
	c.setPosition(x, y)
}

// closePath duplicates the loop's first point onto its end and moves the
// finished loop into the loop list.
func (c *pathCursor) closePath() {
	if len(c.loop) == 0 {
		return
	}
	c.loop = append(c.loop, c.loop[0])
	c.loops = append(c.loops, c.loop)
	c.loop = nil
}

// finish closes out the in-progress loop and returns all loops with
// adjacent points merged under mergeTolerance. The merge is idempotent.
func (c *pathCursor) finish() []Loop {
	if len(c.loop) > 0 {
		c.loops = append(c.loops, c.loop)
		c.loop = nil
	}
	var merged []Loop
	for _, orig := range c.loops {
		if len(orig) == 0 {
			continue
		}
		merged = append(merged, mergeAdjacent(orig))
	}
	c.loops = nil
	return merged
}

func mergeAdjacent(orig Loop) Loop {
	loop := Loop{orig[0]}
	for _, pt := range orig {
		last := loop[len(loop)-1]
		dx, dy := pt.X-last.X, pt.Y-last.Y
		if dx*dx+dy*dy > mergeTolerance {
			loop = append(loop, pt)
		}
	}
	return loop
}

func isCommand(t string) bool {
	if len(t) != 1 {
		return false
	}
	b := t[0]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// compilePath interprets an SVG path data string. An opcode persists across
// numeric groups until a new letter token appears. Unknown opcodes are
// reported and their parameters skipped; malformed numbers abort the
// element.
func (c *pathCursor) compilePath(data string) error {
	tokens := tokenize(data)
	i := 0
	next := func() (float64, error) {
		if i >= len(tokens) || isCommand(tokens[i]) {
			return 0, paramMismatchError
		}
		f, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return 0, paramMismatchError
		}
		i++
		return f, nil
	}
	pnext := func() (x, y float64, err error) {
		if x, err = next(); err != nil {
			return
		}
		y, err = next()
		return
	}

	var opcode byte
	for i < len(tokens) {
		if isCommand(tokens[i]) {
			opcode = tokens[i][0]
			i++
			if opcode == 'Z' || opcode == 'z' {
				c.closePath()
				c.lastKey = opcode
				continue
			}
		}
		var err error
		switch opcode {
		case 'M':
			var x, y float64
			if x, y, err = pnext(); err == nil {
				c.setPosition(x, y)
			}
		case 'm':
			var dx, dy float64
			if dx, dy, err = pnext(); err == nil {
				c.setPosition(c.placeX+dx, c.placeY+dy)
			}
		case 'L':
			var x, y float64
			if x, y, err = pnext(); err == nil {
				c.lineTo(x, y)
			}
		case 'l':
			var dx, dy float64
			if dx, dy, err = pnext(); err == nil {
				c.lineTo(c.placeX+dx, c.placeY+dy)
			}
		case 'H':
			var x float64
			if x, err = next(); err == nil {
				c.lineTo(x, c.placeY)
			}
		case 'h':
			var dx float64
			if dx, err = next(); err == nil {
				c.lineTo(c.placeX+dx, c.placeY)
			}
		case 'V':
			var y float64
			if y, err = next(); err == nil {
				c.lineTo(c.placeX, y)
			}
		case 'v':
			var dy float64
			if dy, err = next(); err == nil {
				c.lineTo(c.placeX, c.placeY+dy)
			}
		case 'C':
			var x1, y1, x2, y2, x, y float64
			if x1, y1, err = pnext(); err != nil {
				break
			}
			if x2, y2, err = pnext(); err != nil {
				break
			}
			if x, y, err = pnext(); err != nil {
				break
			}
			c.curveTo(x1, y1, x2, y2, x, y)
		case 'c':
			mx, my := c.placeX, c.placeY
			var x1, y1, x2, y2, x, y float64
			if x1, y1, err = pnext(); err != nil {
				break
			}
			if x2, y2, err = pnext(); err != nil {
				break
			}
			if x, y, err = pnext(); err != nil {
				break
			}
			c.curveTo(mx+x1, my+y1, mx+x2, my+y2, mx+x, my+y)
		case 'S':
			x1, y1 := c.reflectedControl()
			var x2, y2, x, y float64
			if x2, y2, err = pnext(); err != nil {
				break
			}
			if x, y, err = pnext(); err != nil {
				break
			}
			c.curveTo(x1, y1, x2, y2, x, y)
		case 's':
			mx, my := c.placeX, c.placeY
			x1, y1 := c.reflectedControl()
			var x2, y2, x, y float64
			if x2, y2, err = pnext(); err != nil {
				break
			}
			if x, y, err = pnext(); err != nil {
				break
			}
			c.curveTo(x1, y1, mx+x2, my+y2, mx+x, my+y)
		case 'A', 'a':
			var rx, ry, phi, largeArc, sweep, x, y float64
			if rx, ry, err = pnext(); err != nil {
				break
			}
			if phi, err = next(); err != nil {
				break
			}
			if largeArc, err = next(); err != nil {
				break
			}
			if sweep, err = next(); err != nil {
				break
			}
			if x, y, err = pnext(); err != nil {
				break
			}
			if opcode == 'a' {
				x += c.placeX
				y += c.placeY
			}
			c.arcTo(rx, ry, phi, largeArc != 0, sweep != 0, x, y)
		default:
			if rerr := c.report("ignoring path opcode "+string(opcode), commandUnknownError); rerr != nil {
				return rerr
			}
			// Skip the unknown opcode's parameters.
			for i < len(tokens) && !isCommand(tokens[i]) {
				i++
			}
			continue
		}
		if err != nil {
			return err
		}
		c.lastKey = opcode
	}
	return nil
}

// reflectedControl gives the first control point of a shorthand cubic: the
// previous cubic's second control point mirrored through the current point,
// or the current point itself when the previous command was not a cubic.
func (c *pathCursor) reflectedControl() (x, y float64) {
	switch c.lastKey {
	case 'C', 'c', 'S', 's':
		return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
	}
	return c.placeX, c.placeY
}

// rect lowers a rect element onto the cursor. When either radius is
// specified the corners become quarter arcs, each radius clamped to half
// the corresponding side.
func (c *pathCursor) rect(x, y, w, h float64, rx, ry *float64) {
	if rx == nil && ry == nil {
		c.setPosition(x, y)
		c.lineTo(x+w, y)
		c.lineTo(x+w, y+h)
		c.lineTo(x, y+h)
		c.lineTo(x, y)
		return
	}
	// One radius specified stands in for both.
	if rx == nil {
		rx = ry
	}
	if ry == nil {
		ry = rx
	}
	ax := min(*rx, w/2)
	ay := min(*ry, h/2)

	c.setPosition(x, y+ay)
	c.lineTo(x, y+h-ay)
	c.arcTo(ax, ay, 0, false, false, x+ax, y+h)
	c.lineTo(x+w-ax, y+h)
	c.arcTo(ax, ay, 0, false, false, x+w, y+h-ay)
	c.lineTo(x+w, y+ay)
	c.arcTo(ax, ay, 0, false, false, x+w-ax, y)
	c.lineTo(x+ax, y)
	c.arcTo(ax, ay, 0, false, false, x, y+ay)
}

// ellipse lowers a circle or ellipse element as a regular polygon at the
// configured arc segment count.
func (c *pathCursor) ellipse(cx, cy, rx, ry float64) {
	for i := 0; i < c.circleSegs; i++ {
		theta := 2 * float64(i) * math.Pi / float64(c.circleSegs)
		c.lineTo(cx+rx*math.Cos(theta), cy+ry*math.Sin(theta))
	}
	c.closePath()
}

// polyline lowers a polyline or polygon point list; a polygon additionally
// closes the loop.
func (c *pathCursor) polyline(coords []float64, closed bool) {
	for i := 0; i+1 < len(coords); i += 2 {
		c.lineTo(coords[i], coords[i+1])
	}
	if closed {
		c.closePath()
	}
}
