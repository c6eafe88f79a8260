// Copyright 2024 The svgmesh Authors. All rights reserved.

package svgmesh

import (
	"bytes"
	"compress/gzip"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="100" height="100">
  <rect id="box" x="10" y="10" width="40" height="30" fill="#ff0000"/>
  <g opacity="0.5">
    <rect id="faded" x="0" y="0" width="10" height="10" fill="#00ff00" fill-opacity="0.5"/>
  </g>
  <path id="tri" d="M10,10 L90,10 L50,90 z" fill="none" stroke="blue">
    <title>A triangle</title>
    <desc>Three corners</desc>
  </path>
  <defs>
    <linearGradient id="grad1">
      <stop offset="0" stop-color="#ff0000"/>
      <stop offset="1" stop-color="#0000ff"/>
    </linearGradient>
  </defs>
  <circle id="dot" cx="50" cy="50" r="20" fill="url(#grad1)"/>
  <polygon id="poly" points="0,0 10,0 10,10 0,10" fill="black"/>
</svg>`

func parseString(t *testing.T, s string, opts ...Option) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s), opts...)
	require.NoError(t, err)
	return doc
}

func TestParseDocument(t *testing.T) {
	doc := parseString(t, testDoc)
	assert.Equal(t, 100.0, doc.Width)
	assert.Equal(t, 100.0, doc.Height)
	assert.Equal(t, Identity, doc.Transform)
	assert.Len(t, doc.Paths, 5)
}

func TestParseViewBoxDimensions(t *testing.T) {
	doc := parseString(t, `<svg viewBox="0 0 30 40"></svg>`)
	assert.Equal(t, 30.0, doc.Width)
	assert.Equal(t, 40.0, doc.Height)
}

func TestParseMissingDimensions(t *testing.T) {
	_, err := Parse(strings.NewReader(`<svg><rect width="1" height="1"/></svg>`))
	assert.ErrorIs(t, err, missingDimensionsError)
}

func TestParseMissingRoot(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html width="1" height="1"></html>`))
	assert.ErrorIs(t, err, missingRootError)

	_, err = Parse(strings.NewReader("not xml at all"))
	assert.Error(t, err)
}

func TestFilledRect(t *testing.T) {
	doc := parseString(t, testDoc)
	box := doc.PathByID("box")
	require.NotNil(t, box)
	assert.Equal(t, SolidPaint(color.NRGBA{0xFF, 0, 0, 0xFF}), box.Fill)
	require.NotEmpty(t, box.Triangles)
	assert.InDelta(t, 1200, TriangleArea(box.Triangles), 1e-9)
	// With no stroke declared anywhere, the fill stands in so the edges
	// can be antialiased.
	assert.Equal(t, box.Fill, box.Stroke)
	assert.Len(t, box.Loops, 1)
}

func TestOpacityComposition(t *testing.T) {
	// Group opacity 0.5 times fill-opacity 0.5 lands on the alpha
	// channel; the color channels stay untouched.
	doc := parseString(t, testDoc)
	faded := doc.PathByID("faded")
	require.NotNil(t, faded)
	assert.Equal(t, color.NRGBA{0, 0xFF, 0, 63}, faded.Fill.Color)
}

func TestStrokeOnlyPath(t *testing.T) {
	doc := parseString(t, testDoc)
	tri := doc.PathByID("tri")
	require.NotNil(t, tri)
	assert.Equal(t, NoPaint, tri.Fill)
	assert.Equal(t, SolidPaint(color.NRGBA{0, 0, 0xFF, 0xFF}), tri.Stroke)
	require.Len(t, tri.Loops, 1)
	assert.Nil(t, tri.Triangles)
	assert.Equal(t, "A triangle", tri.Title)
	assert.Equal(t, "Three corners", tri.Description)
}

func TestGradientReference(t *testing.T) {
	doc := parseString(t, testDoc)
	dot := doc.PathByID("dot")
	require.NotNil(t, dot)
	assert.Equal(t, GradientPaint("grad1"), dot.Fill)

	g := doc.Gradient("grad1")
	require.NotNil(t, g)
	require.Len(t, g.Stops(), 2)
	assert.Equal(t, color.NRGBA{0xFF, 0, 0, 0xFF}, g.Interpolate(Point{0, 50}))
	assert.Equal(t, color.NRGBA{0, 0, 0xFF, 0xFF}, g.Interpolate(Point{100, 50}))
	assert.Equal(t, color.NRGBA{128, 0, 128, 0xFF}, g.Interpolate(Point{50, 50}))
}

func TestGradientUnknownReference(t *testing.T) {
	doc := parseString(t, testDoc)
	assert.Nil(t, doc.Gradient("nope"))
	assert.Nil(t, doc.PathByID("nope"))
}

func TestRadialGradient(t *testing.T) {
	doc := parseString(t, `<svg width="100" height="100">
		<radialGradient id="rg" cx="50%" cy="50%" r="50%" spreadMethod="pad">
			<stop offset="0" stop-color="white"/>
			<stop offset="1" stop-color="black"/>
		</radialGradient>
	</svg>`)
	g := doc.Gradient("rg")
	require.NotNil(t, g)
	assert.Equal(t, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, g.Interpolate(Point{50, 50}))
	assert.Equal(t, color.NRGBA{0, 0, 0, 0xFF}, g.Interpolate(Point{100, 50}))
	// Pad spread clamps beyond the radius.
	assert.Equal(t, color.NRGBA{0, 0, 0, 0xFF}, g.Interpolate(Point{200, 50}))
}

func TestGradientStopOrder(t *testing.T) {
	// Stops are sorted by offset no matter their document order.
	doc := parseString(t, `<svg width="10" height="10">
		<linearGradient id="g">
			<stop offset="1" stop-color="black"/>
			<stop offset="0" stop-color="white"/>
		</linearGradient>
	</svg>`)
	stops := doc.Gradient("g").Stops()
	require.Len(t, stops, 2)
	assert.Equal(t, 0.0, stops[0].Offset)
	assert.Equal(t, 1.0, stops[1].Offset)
}

func TestStyleOverridesAttributes(t *testing.T) {
	doc := parseString(t, `<svg width="10" height="10">
		<rect id="r" width="5" height="5" fill="#ff0000" style="fill:#00ff00"/>
	</svg>`)
	r := doc.PathByID("r")
	require.NotNil(t, r)
	assert.Equal(t, color.NRGBA{0, 0xFF, 0, 0xFF}, r.Fill.Color)
}

func TestTransformAttribute(t *testing.T) {
	doc := parseString(t, `<svg width="10" height="10">
		<g transform="translate(10, 20)">
			<rect id="r" width="5" height="5" transform="scale(2)"/>
		</g>
	</svg>`)
	r := doc.PathByID("r")
	require.NotNil(t, r)
	assert.Equal(t, Identity.Translate(10, 20).Scale(2, 2), r.Transform)
}

func TestInvertY(t *testing.T) {
	doc := parseString(t, testDoc, WithInvertY())
	assert.Equal(t, Matrix2D{1, 0, 0, -1, 0, 100}, doc.Transform)
	box := doc.PathByID("box")
	require.NotNil(t, box)
	assert.Equal(t, doc.Transform, box.Transform)
}

func TestTessellationFailureKeepsStroke(t *testing.T) {
	// A two-point path cannot enclose area: the fill is dropped, the
	// stroke survives.
	doc := parseString(t, `<svg width="10" height="10">
		<path id="seg" d="M0,0 L10,0" fill="black" stroke="red"/>
	</svg>`)
	seg := doc.PathByID("seg")
	require.NotNil(t, seg)
	assert.Nil(t, seg.Triangles)
	require.Len(t, seg.Loops, 1)
	assert.Equal(t, SolidPaint(color.NRGBA{0xFF, 0, 0, 0xFF}), seg.Stroke)
}

func TestZeroSizedShapesSkipped(t *testing.T) {
	doc := parseString(t, `<svg width="10" height="10">
		<rect width="0" height="5"/>
		<circle cx="5" cy="5" r="0"/>
	</svg>`)
	assert.Empty(t, doc.Paths)
}

func TestStrictMode(t *testing.T) {
	in := `<svg width="10" height="10"><blob/></svg>`
	_, err := Parse(strings.NewReader(in), WithErrorMode(StrictErrorMode))
	assert.ErrorIs(t, err, commandUnknownError)

	// The default mode shrugs the element off.
	_, err = Parse(strings.NewReader(in))
	assert.NoError(t, err)
}

func TestMalformedPaintIgnored(t *testing.T) {
	doc := parseString(t, `<svg width="10" height="10">
		<rect id="r" width="5" height="5" fill="notacolor"/>
	</svg>`)
	r := doc.PathByID("r")
	require.NotNil(t, r)
	assert.Equal(t, NoPaint, r.Fill)
	assert.Nil(t, r.Triangles)
}

func TestBezierSegmentsOption(t *testing.T) {
	in := `<svg width="100" height="100">
		<path id="c" d="M0,0 C0,100 100,100 100,0" stroke="black" fill="none"/>
	</svg>`
	coarse := parseString(t, in, WithBezierSegments(4))
	fine := parseString(t, in, WithBezierSegments(64))
	assert.Len(t, coarse.PathByID("c").Loops[0], 5)
	assert.Len(t, fine.PathByID("c").Loops[0], 65)
}

func TestParseGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testDoc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	doc, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100.0, doc.Width)
	assert.Len(t, doc.Paths, 5)
}

func TestReadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "doc.svg")
	require.NoError(t, os.WriteFile(name, []byte(testDoc), 0o644))
	doc, err := ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, 100.0, doc.Width)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.svg"))
	assert.Error(t, err)
}

func TestBuildDOM(t *testing.T) {
	root, err := buildDOM(strings.NewReader(`<svg a="1"><g><rect/></g><title> hi </title></svg>`))
	require.NoError(t, err)
	assert.Equal(t, "svg", root.name)
	assert.Equal(t, "1", root.attr("a"))
	require.Len(t, root.children, 2)
	assert.Equal(t, "g", root.children[0].name)
	assert.Equal(t, "hi", root.childText("title"))

	_, err = buildDOM(strings.NewReader(""))
	assert.ErrorIs(t, err, missingRootError)
}
