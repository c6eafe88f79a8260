// Copyright 2024 The svgmesh Authors. All rights reserved.
//
// Implements SVG style matrix transformations.
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute/transform

package svgmesh

import (
	"math"
	"strings"
)

// Matrix2D is a 2D affine transform. A point (x, y) maps to
// (A*x + C*y + E, B*x + D*y + F).
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the do-nothing transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a * b; a is applied after b, so nesting an element with
// transform b inside one with transform a composes as a.Mult(b).
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F}
}

// Transform maps the point (x1, y1) through the matrix.
func (m Matrix2D) Transform(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C + m.E
	y2 = x1*m.B + y1*m.D + m.F
	return
}

// TransformPoint maps p through the matrix.
func (m Matrix2D) TransformPoint(p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{
		A: x,
		B: 0,
		C: 0,
		D: y,
		E: 0,
		F: 0})
}

func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{
		A: 1,
		B: math.Tan(theta),
		C: 0,
		D: 1,
		E: 0,
		F: 0})
}

func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{
		A: 1,
		B: 0,
		C: math.Tan(theta),
		D: 1,
		E: 0,
		F: 0})
}

func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{
		A: 1,
		B: 0,
		C: 0,
		D: 1,
		E: x,
		F: y})
}

func (a Matrix2D) Rotate(theta float64) Matrix2D {
	return a.Mult(Matrix2D{
		A: math.Cos(theta),
		B: math.Sin(theta),
		C: -math.Sin(theta),
		D: math.Cos(theta),
		E: 0,
		F: 0})
}

// RotateAbout rotates by theta radians around the pivot (cx, cy).
func (a Matrix2D) RotateAbout(theta, cx, cy float64) Matrix2D {
	sin, cos := math.Sin(theta), math.Cos(theta)
	return a.Mult(Matrix2D{
		A: cos,
		B: sin,
		C: -sin,
		D: cos,
		E: -cx*cos + cy*sin + cx,
		F: -cx*sin - cy*cos + cy})
}

// Determinant of the linear part; zero means the transform collapses the
// plane and cannot be inverted.
func (m Matrix2D) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse transform. It fails with
// degenerateMatrixError when the determinant is zero.
func (m Matrix2D) Invert() (Matrix2D, error) {
	det := m.Determinant()
	if det == 0 {
		return Identity, degenerateMatrixError
	}
	return Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det}, nil
}

// Mat4 expands the affine transform into a column-major 4x4 matrix for
// consumers feeding a 3D pipeline. The z row is zeroed.
func (m Matrix2D) Mat4() [16]float64 {
	return [16]float64{
		m.A, m.B, 0, 0,
		m.C, m.D, 0, 0,
		0, 0, 1, 0,
		m.E, m.F, 0, 1}
}

// ParseTransform reads an SVG transform attribute. Any number of
// matrix/translate/scale/rotate/skewX/skewY terms may appear; they compose
// left to right onto the identity.
func ParseTransform(v string) (Matrix2D, error) {
	m1 := Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, paramMismatchError // badly formed transformation
		}
		points, err := parseFloats(d[1])
		if err != nil {
			return m1, err
		}
		ln := len(points)
		switch strings.ToLower(strings.TrimSpace(d[0])) {
		case "rotate":
			if ln == 1 {
				m1 = m1.Rotate(points[0] * math.Pi / 180)
			} else if ln == 3 {
				m1 = m1.RotateAbout(points[0]*math.Pi/180, points[1], points[2])
			} else {
				return m1, paramMismatchError
			}
		case "translate":
			if ln == 1 {
				m1 = m1.Translate(points[0], 0)
			} else if ln == 2 {
				m1 = m1.Translate(points[0], points[1])
			} else {
				return m1, paramMismatchError
			}
		case "scale":
			if ln == 1 {
				m1 = m1.Scale(points[0], points[0])
			} else if ln == 2 {
				m1 = m1.Scale(points[0], points[1])
			} else {
				return m1, paramMismatchError
			}
		case "skewx":
			if ln == 1 {
				m1 = m1.SkewX(points[0] * math.Pi / 180)
			} else {
				return m1, paramMismatchError
			}
		case "skewy":
			if ln == 1 {
				m1 = m1.SkewY(points[0] * math.Pi / 180)
			} else {
				return m1, paramMismatchError
			}
		case "matrix":
			if ln == 6 {
				m1 = m1.Mult(Matrix2D{
					points[0],
					points[1],
					points[2],
					points[3],
					points[4],
					points[5]})
			} else {
				return m1, paramMismatchError
			}
		default:
			return m1, paramMismatchError
		}
	}
	return m1, nil
}
