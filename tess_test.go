// Copyright 2024 The svgmesh Authors. All rights reserved.

package svgmesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangulateSquare(t *testing.T) {
	// An open loop is closed implicitly.
	tris, err := Triangulate([]Loop{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}})
	require.NoError(t, err)
	assert.Len(t, tris, 6)
	assert.InDelta(t, 100, TriangleArea(tris), 1e-9)
}

func TestTriangulateHole(t *testing.T) {
	outer := Loop{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	inner := Loop{{2, 2}, {2, 8}, {8, 8}, {8, 2}} // opposite winding
	tris, err := Triangulate([]Loop{outer, inner})
	require.NoError(t, err)
	assert.InDelta(t, 64, TriangleArea(tris), 1e-9)

	// No triangle's centroid may land inside the hole.
	for i := 0; i+2 < len(tris); i += 3 {
		cx := (tris[i].X + tris[i+1].X + tris[i+2].X) / 3
		cy := (tris[i].Y + tris[i+1].Y + tris[i+2].Y) / 3
		inside := cx > 2 && cx < 8 && cy > 2 && cy < 8
		assert.False(t, inside, "centroid (%v, %v) inside the hole", cx, cy)
	}
}

func TestTriangulateSameWinding(t *testing.T) {
	// An inner loop wound the same way does not punch a hole under the
	// non-zero rule.
	outer := Loop{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	inner := Loop{{2, 2}, {8, 2}, {8, 8}, {2, 8}}
	tris, err := Triangulate([]Loop{outer, inner})
	require.NoError(t, err)
	assert.InDelta(t, 100, TriangleArea(tris), 1e-9)
}

func TestTriangulateSelfIntersection(t *testing.T) {
	// A bowtie: both lobes fill, with the crossing vertex synthesized.
	tris, err := Triangulate([]Loop{{{0, 0}, {10, 0}, {0, 10}, {10, 10}}})
	require.NoError(t, err)
	assert.InDelta(t, 50, TriangleArea(tris), 1e-9)
	assert.Contains(t, tris, Point{5, 5})
}

func TestTriangulateNonConvex(t *testing.T) {
	lshape := Loop{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}}
	tris, err := Triangulate([]Loop{lshape})
	require.NoError(t, err)
	assert.InDelta(t, 75, TriangleArea(tris), 1e-9)
}

func TestTriangulateDegenerate(t *testing.T) {
	for _, loops := range [][]Loop{
		nil,
		{},
		{{{0, 0}, {10, 0}}},
		{{{0, 0}, {5, 0}, {10, 0}}}, // collinear, zero area
	} {
		_, err := Triangulate(loops)
		assert.ErrorIs(t, err, tessellationError)
	}
}

func TestTriangulateNonFinite(t *testing.T) {
	_, err := Triangulate([]Loop{{{0, 0}, {math.NaN(), 5}, {10, 10}}})
	assert.ErrorIs(t, err, tessellationError)

	_, err = Triangulate([]Loop{{{0, 0}, {math.Inf(1), 5}, {10, 10}}})
	assert.ErrorIs(t, err, tessellationError)
}

func TestTriangulateTrianglesAreFinite(t *testing.T) {
	tris, err := Triangulate([]Loop{{{0, 0}, {7, 3}, {4, 9}, {-2, 6}}})
	require.NoError(t, err)
	require.NotEmpty(t, tris)
	assert.Zero(t, len(tris)%3)
	for _, pt := range tris {
		assert.False(t, math.IsNaN(pt.X) || math.IsNaN(pt.Y))
	}
}

func TestTriangleArea(t *testing.T) {
	assert.Equal(t, 6.0, TriangleArea([]Point{{0, 0}, {4, 0}, {0, 3}}))
	assert.Zero(t, TriangleArea(nil))
}
