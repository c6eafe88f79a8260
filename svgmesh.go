// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// The svgmesh package parses a subset of SVG into a resolution-independent
// geometric description: polylines for strokes and triangle meshes for
// fills, in document coordinates with affine transforms resolved. It does
// not rasterize; the output is meant for a rendering collaborator. CSS
// cascade, clip paths, markers, masks, text and filters are out of scope.

package svgmesh

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
)

// Point is an (x, y) pair in document coordinates.
type Point struct {
	X, Y float64
}

// Loop is an ordered point sequence describing one boundary component of a
// shape. A loop is closed when its last point duplicates its first.
type Loop []Point

// Path is a finished shape record. It is created once when the element is
// emitted and never mutated afterwards.
type Path struct {
	// Loops is the stroke outline. Nil when the shape has no stroke.
	Loops []Loop
	// Triangles is the fill mesh, three points per triangle. Nil when the
	// shape has no fill or its tessellation failed.
	Triangles []Point
	Stroke    Paint
	Fill      Paint
	// Transform is the accumulated transform in effect when the shape was
	// emitted. Loop and triangle coordinates are in the shape's local
	// space; consumers apply Transform when drawing.
	Transform   Matrix2D
	ID          string
	Title       string
	Description string
}

// Document is the parse result: the ordered path list, the declared or
// derived size, the gradient registry and the root transform.
type Document struct {
	Paths  []*Path
	Width  float64
	Height float64
	// Transform is identity, or a vertical flip when the document was
	// parsed with WithInvertY.
	Transform Matrix2D

	gradients map[string]*Gradient
	byID      map[string]*Path
}

// PathByID returns the path emitted with the given id attribute, or nil.
func (d *Document) PathByID(id string) *Path {
	return d.byID[id]
}

// Gradient returns the gradient registered under id, or nil.
func (d *Document) Gradient(id string) *Gradient {
	return d.gradients[id]
}

// Option configures a parse.
type Option func(*parser)

// WithBezierSegments sets the number of line segments a cubic Bezier is
// subdivided into.
func WithBezierSegments(n int) Option {
	return func(p *parser) { p.bezierSegs = n }
}

// WithCircleSegments sets the number of line segments a full circle or
// ellipse is subdivided into; arcs are sampled proportionally.
func WithCircleSegments(n int) Option {
	return func(p *parser) { p.circleSegs = n }
}

// WithInvertY flips the document vertically for consumers with a bottom-up
// y axis.
func WithInvertY() Option {
	return func(p *parser) { p.invertY = true }
}

// WithErrorMode selects how recoverable parse problems are surfaced.
// The default is IgnoreErrorMode.
func WithErrorMode(mode ErrorMode) Option {
	return func(p *parser) { p.errorMode = mode }
}

type parser struct {
	doc         *Document
	bezierSegs  int
	circleSegs  int
	bezierCoefs [][4]float64
	invertY     bool
	errorMode   ErrorMode
}

// drawContext is the inherited state threaded through the element walk.
// Children receive a derived copy; the parent's context is never mutated.
type drawContext struct {
	transform Matrix2D
	fill      Paint
	stroke    Paint
	opacity   float64
}

var gzipMagic = []byte{0x1f, 0x8b, 0x08}

// ReadFile parses the named .svg or .svgz file.
func ReadFile(name string, opts ...Option) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Parse reads an SVG document, transparently decompressing gzip input, and
// returns the fully materialized Document. The call is synchronous; for
// concurrent use parse each document with its own call.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	p := &parser{
		bezierSegs: defaultBezierSegments,
		circleSegs: defaultCircleSegments,
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return p.parse(zr)
	}
	return p.parse(br)
}

func (p *parser) parse(r io.Reader) (*Document, error) {
	root, err := buildDOM(r)
	if err != nil {
		return nil, fmt.Errorf("decoding svg: %w", err)
	}
	if root.name != "svg" {
		return nil, missingRootError
	}

	doc := &Document{
		gradients: make(map[string]*Gradient),
		byID:      make(map[string]*Path),
	}
	p.doc = doc

	width, _ := parseFloat(root.attr("width"))
	height, _ := parseFloat(root.attr("height"))
	if height != 0 {
		doc.Width, doc.Height = width, height
	} else {
		vb, err := parseFloats(root.attr("viewBox"))
		if err != nil || len(vb) != 4 {
			return nil, missingDimensionsError
		}
		doc.Width, doc.Height = vb[2], vb[3]
	}
	doc.Transform = Identity
	if p.invertY {
		doc.Transform = Matrix2D{1, 0, 0, -1, 0, height}
	}

	ctx := drawContext{
		transform: doc.Transform,
		fill:      SolidPaint(blackColor),
		stroke:    SolidPaint(color.NRGBA{}), // transparent; emit substitutes the fill
		opacity:   1,
	}
	for _, e := range root.children {
		if err := p.parseElement(e, ctx); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// report handles a recoverable diagnostic per the configured error mode;
// only strict mode turns it into an error.
func (p *parser) report(msg string, err error) error {
	switch p.errorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		log.Println("svgmesh: " + msg)
	}
	return nil
}

func attrFloat(e *element, name string, def float64) (float64, error) {
	v := e.attr(name)
	if v == "" {
		return def, nil
	}
	return parseFloat(v)
}

// parseElement processes one element and recurses into its children. Each
// child receives a context derived from e's attributes; faults in one
// element abort only that element's geometry.
func (p *parser) parseElement(e *element, ctx drawContext) error {
	child := ctx
	if tv := e.attr("transform"); tv != "" {
		m, err := ParseTransform(tv)
		if err != nil {
			if rerr := p.report("bad transform "+tv, err); rerr != nil {
				return rerr
			}
		} else {
			child.transform = ctx.transform.Mult(m)
		}
	}
	if op, err := attrFloat(e, "opacity", 1); err == nil {
		child.opacity *= op
	}
	fillOpacity, _ := attrFloat(e, "fill-opacity", 1)
	strokeOpacity, _ := attrFloat(e, "stroke-opacity", 1)

	// A malformed paint value resolves to no paint with a diagnostic; it
	// never aborts the element.
	resolvePaint := func(v string, def Paint) Paint {
		paint, err := ParsePaint(v, def)
		if err != nil {
			_ = p.report("bad paint value "+v, err)
		}
		return paint
	}
	child.fill = resolvePaint(e.attr("fill"), ctx.fill)
	child.stroke = resolvePaint(e.attr("stroke"), ctx.stroke)

	// Inline style overrides presentation attributes.
	if sv := e.attr("style"); sv != "" {
		style := parseStyleMap(sv)
		if v, ok := style["fill"]; ok {
			child.fill = resolvePaint(v, ctx.fill)
		}
		if v, ok := style["stroke"]; ok {
			child.stroke = resolvePaint(v, ctx.stroke)
		}
		if v, ok := style["fill-opacity"]; ok {
			if f, err := parseFloat(v); err == nil {
				fillOpacity *= f
			}
		}
		if v, ok := style["stroke-opacity"]; ok {
			if f, err := parseFloat(v); err == nil {
				strokeOpacity *= f
			}
		}
		if v, ok := style["opacity"]; ok {
			if f, err := parseFloat(v); err == nil {
				child.opacity *= f
			}
		}
	}

	var gerr error
	switch e.name {
	case "g", "defs", "switch", "a":
		// Containers carry style and transform only.
	case "title", "desc", "metadata", "stop":
		// Consumed by their parent element.
	case "path":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			return c.compilePath(e.attr("d"))
		})
	case "rect":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			return buildRect(c, e)
		})
	case "circle":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			cx, err := attrFloat(e, "cx", 0)
			if err != nil {
				return err
			}
			cy, err := attrFloat(e, "cy", 0)
			if err != nil {
				return err
			}
			r, err := attrFloat(e, "r", 0)
			if err != nil {
				return err
			}
			if r != 0 {
				c.ellipse(cx, cy, r, r)
			}
			return nil
		})
	case "ellipse":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			cx, err := attrFloat(e, "cx", 0)
			if err != nil {
				return err
			}
			cy, err := attrFloat(e, "cy", 0)
			if err != nil {
				return err
			}
			rx, err := attrFloat(e, "rx", 0)
			if err != nil {
				return err
			}
			ry, err := attrFloat(e, "ry", 0)
			if err != nil {
				return err
			}
			if rx != 0 && ry != 0 {
				c.ellipse(cx, cy, rx, ry)
			}
			return nil
		})
	case "line":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			x1, err := attrFloat(e, "x1", 0)
			if err != nil {
				return err
			}
			y1, err := attrFloat(e, "y1", 0)
			if err != nil {
				return err
			}
			x2, err := attrFloat(e, "x2", 0)
			if err != nil {
				return err
			}
			y2, err := attrFloat(e, "y2", 0)
			if err != nil {
				return err
			}
			c.setPosition(x1, y1)
			c.lineTo(x2, y2)
			return nil
		})
	case "polyline", "polygon":
		gerr = p.emitShape(e, child, fillOpacity, strokeOpacity, func(c *pathCursor) error {
			coords, err := parseFloats(e.attr("points"))
			if err != nil {
				return err
			}
			if len(coords)%2 != 0 {
				return paramMismatchError
			}
			c.polyline(coords, e.name == "polygon")
			return nil
		})
	case "linearGradient":
		gerr = p.parseGradient(e, child, false)
	case "radialGradient":
		gerr = p.parseGradient(e, child, true)
	default:
		gerr = p.report("cannot process svg element "+e.name, commandUnknownError)
	}
	if gerr != nil {
		return gerr
	}

	for _, ce := range e.children {
		if err := p.parseElement(ce, child); err != nil {
			return err
		}
	}
	return nil
}

func buildRect(c *pathCursor, e *element) error {
	x, err := attrFloat(e, "x", 0)
	if err != nil {
		return err
	}
	y, err := attrFloat(e, "y", 0)
	if err != nil {
		return err
	}
	w, err := attrFloat(e, "width", 0)
	if err != nil {
		return err
	}
	h, err := attrFloat(e, "height", 0)
	if err != nil {
		return err
	}
	if w == 0 || h == 0 {
		return nil // not drawn, but not an error
	}
	var rx, ry *float64
	if v := e.attr("rx"); v != "" {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		rx = &f
	}
	if v := e.attr("ry"); v != "" {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		ry = &f
	}
	c.rect(x, y, w, h, rx, ry)
	return nil
}

// emitShape runs build on a fresh cursor and turns the produced loops into
// a finished Path. Geometry faults and tessellation failures are contained
// to this element.
func (p *parser) emitShape(e *element, ctx drawContext, fillOpacity, strokeOpacity float64, build func(c *pathCursor) error) error {
	c := newPathCursor(p.bezierSegs, p.circleSegs, p.errorMode)
	c.bezierCoefs = p.bezierCoefs
	c.init()
	if err := build(c); err != nil {
		return p.report("dropping geometry of element "+e.name, err)
	}
	p.bezierCoefs = c.bezierCoefs // keep the lazily built basis table
	loops := c.finish()
	if len(loops) == 0 {
		return nil
	}

	fill := ctx.fill
	if fill.Kind == PaintSolid {
		fill.Color = scaleAlpha(fill.Color, ctx.opacity*fillOpacity)
	}
	stroke := ctx.stroke
	if stroke.Kind == PaintSolid {
		stroke.Color = scaleAlpha(stroke.Color, ctx.opacity*strokeOpacity)
		if stroke.Color.A == 0 {
			stroke = fill // stroked edges antialias better
		}
	}

	path := &Path{
		Stroke:      stroke,
		Fill:        fill,
		Transform:   ctx.transform,
		ID:          e.attr("id"),
		Title:       e.childText("title"),
		Description: e.childText("desc"),
	}
	if stroke.Kind != PaintNone {
		path.Loops = loops
	}
	if fill.Kind != PaintNone {
		tris, err := Triangulate(loops)
		if err != nil {
			// Recoverable: drop the fill, keep the stroke.
			if rerr := p.report("cannot fill element "+e.name, err); rerr != nil {
				return rerr
			}
		} else {
			path.Triangles = tris
		}
	}

	p.doc.Paths = append(p.doc.Paths, path)
	if path.ID != "" {
		p.doc.byID[path.ID] = path
	}
	return nil
}
