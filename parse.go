// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// Scanners for the small attribute languages used by SVG: mixed
// letter/number token lists, style maps and paint values.

package svgmesh

import (
	"errors"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var (
	paramMismatchError     = errors.New("param mismatch")
	commandUnknownError    = errors.New("unknown command")
	zeroLengthIdError      = errors.New("zero length id")
	degenerateMatrixError  = errors.New("degenerate transform")
	missingDimensionsError = errors.New("missing width, height and viewBox")
	missingRootError       = errors.New("missing svg root element")
)

// tokenPat matches either a single letter or a signed decimal number with
// optional fraction and exponent, the two token kinds of SVG path data,
// transform lists and point lists.
var tokenPat = regexp.MustCompile(`[A-Za-z]|[-+]?[0-9]+\.?[0-9]*(?:[eE][-+]?[0-9]*)?`)

// tokenize scans a mixed list of letters and numbers separated by commas or
// whitespace, preserving order.
func tokenize(s string) []string {
	return tokenPat.FindAllString(s, -1)
}

// parseFloats tokenizes s and converts every token to a float. A letter
// token is a param mismatch.
func parseFloats(s string) ([]float64, error) {
	tokens := tokenize(s)
	vals := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, paramMismatchError
		}
		vals = append(vals, f)
	}
	return vals, nil
}

// parseFloat reads a single numeric attribute value, tolerating a px unit
// suffix.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// readFraction reads a value that may be given as a percentage, clamped to
// [0, 1].
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = strconv.ParseFloat(v, 64)
	f /= d
	if f > 1 {
		f = 1
	} else if f < 0 {
		f = 0
	}
	return
}

// parseStyleMap splits a style attribute into a key/value map. Entries
// without a colon are ignored; a later duplicate key wins.
func parseStyleMap(s string) map[string]string {
	sm := map[string]string{}
	for _, item := range strings.Split(s, ";") {
		k, v, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		sm[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return sm
}

// PaintKind tags the three paint states: explicitly absent, a solid color,
// or a reference to a gradient defined elsewhere in the document.
type PaintKind uint8

const (
	PaintNone PaintKind = iota
	PaintSolid
	PaintGradient
)

// Paint is a resolved fill or stroke source. The zero value is no paint.
type Paint struct {
	Kind       PaintKind
	Color      color.NRGBA
	GradientID string
}

// NoPaint is the explicit "do not draw" paint.
var NoPaint = Paint{}

// blackColor is the SVG initial fill.
var blackColor = color.NRGBA{0, 0, 0, 0xFF}

// SolidPaint returns an opaque-alpha-carrying solid color paint.
func SolidPaint(c color.NRGBA) Paint {
	return Paint{Kind: PaintSolid, Color: c}
}

// GradientPaint returns a paint referencing the gradient registered under id.
func GradientPaint(id string) Paint {
	return Paint{Kind: PaintGradient, GradientID: id}
}

// ParsePaint reads an SVG fill or stroke value: #rgb and #rrggbb hex,
// rgb(r,g,b) with numeric or percent components, SVG 1.1 color keywords,
// url(#id) gradient references and the literal none. An empty value returns
// def, distinguishing "unspecified" from "explicitly none". Malformed input
// yields no paint and a non-nil error; callers log and carry on.
func ParsePaint(v string, def Paint) (Paint, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	if v == "none" {
		return NoPaint, nil
	}
	if strings.HasPrefix(v, "url(") && strings.HasSuffix(v, ")") {
		ref := strings.TrimSpace(v[4 : len(v)-1])
		if !strings.HasPrefix(ref, "#") || len(ref) < 2 {
			return NoPaint, paramMismatchError
		}
		return GradientPaint(ref[1:]), nil
	}
	if cs, ok := strings.CutPrefix(v, "rgb("); ok {
		cs = strings.TrimSuffix(cs, ")")
		vals := strings.Split(cs, ",")
		if len(vals) != 3 {
			return NoPaint, paramMismatchError
		}
		var cvals [3]uint8
		for i := range cvals {
			c, err := parseColorValue(vals[i])
			if err != nil {
				return NoPaint, err
			}
			cvals[i] = c
		}
		return SolidPaint(color.NRGBA{cvals[0], cvals[1], cvals[2], 0xFF}), nil
	}
	if v[0] == '#' {
		r, g, b, err := parseHexColor(v[1:])
		if err != nil {
			return NoPaint, err
		}
		return SolidPaint(color.NRGBA{r, g, b, 0xFF}), nil
	}
	if cn, ok := colornames.Map[strings.ToLower(v)]; ok {
		return SolidPaint(color.NRGBA{cn.R, cn.G, cn.B, cn.A}), nil
	}
	return NoPaint, paramMismatchError
}

// parseHexColor reads rgb or rrggbb. Per the SVG spec the short form
// duplicates each digit.
func parseHexColor(s string) (r, g, b uint8, err error) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, paramMismatchError
	}
	for _, v := range []struct {
		c *uint8
		s string
	}{
		{&r, s[0:2]},
		{&g, s[2:4]},
		{&b, s[4:6]}} {
		var t uint64
		t, err = strconv.ParseUint(v.s, 16, 8)
		if err != nil {
			return 0, 0, 0, paramMismatchError
		}
		*v.c = uint8(t)
	}
	return
}

func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, "%")))
		if err != nil {
			return 0, paramMismatchError
		}
		return uint8(n * 0xFF / 100), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, paramMismatchError
	}
	if n > 255 {
		n = 255
	} else if n < 0 {
		n = 0
	}
	return uint8(n), nil
}

// scaleAlpha multiplies the alpha channel of c by opacity, leaving the
// color channels untouched.
func scaleAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(opacity * float64(c.A))
	return c
}
