package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTessellateShortSequencesPassThrough(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Tessellate(nil, 5))
	single := [][2]float64{{10, 20}}
	assert.Equal(t, single, Tessellate(single, 5))
}

func TestTessellateLongSegment(t *testing.T) {
	t.Parallel()

	// 170° of longitude at step 5 must produce at least 34 interior steps.
	out := Tessellate([][2]float64{{-85, 10}, {85, 10}}, 5)
	require.GreaterOrEqual(t, len(out), 35)

	for _, c := range out {
		assert.GreaterOrEqual(t, c[0], -85.0)
		assert.LessOrEqual(t, c[0], 85.0)
		assert.InDelta(t, 10, c[1], 1e-12)
	}
	assert.Equal(t, [2]float64{85, 10}, out[len(out)-1])
}

func TestTessellateAntimeridian(t *testing.T) {
	t.Parallel()

	// 170 -> -170 is a 20° hop across the antimeridian, not a 340° sweep.
	out := Tessellate([][2]float64{{170, 0}, {-170, 0}}, 5)
	require.Len(t, out, 5) // 4 interior steps + final vertex

	for _, c := range out {
		assert.GreaterOrEqual(t, math.Abs(c[0]), 170.0,
			"path must stay near the antimeridian, got lon %v", c[0])
	}
	assert.Equal(t, [2]float64{-170, 0}, out[len(out)-1])
}

func TestTessellatePreservesFinalVertex(t *testing.T) {
	t.Parallel()

	coords := [][2]float64{{0, 0}, {3.3, 1.1}, {7.9, -2.2}}
	out := Tessellate(coords, 5)
	assert.Equal(t, coords[len(coords)-1], out[len(out)-1])
}

func TestTessellateLatitudeDrivesSteps(t *testing.T) {
	t.Parallel()

	// Δlat of 40° dominates Δlon of 2°: 8 steps at stepDeg 5.
	out := Tessellate([][2]float64{{0, -20}, {2, 20}}, 5)
	assert.Len(t, out, 9)
}

func TestWrapLongitude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, 180},
		{-540, 180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WrapLongitude(tt.in), 1e-12, "wrap(%v)", tt.in)
	}
}

func TestWrapLongitudeExtremeValues(t *testing.T) {
	t.Parallel()

	// Huge magnitudes must terminate and land in range.
	for _, in := range []float64{1e9, -1e9, 1e300, -1e300, math.MaxFloat64} {
		got := WrapLongitude(in)
		assert.Greater(t, got, -180.0, "wrap(%v)", in)
		assert.LessOrEqual(t, got, 180.0, "wrap(%v)", in)
	}

	assert.True(t, math.IsNaN(WrapLongitude(math.NaN())))
	assert.True(t, math.IsInf(WrapLongitude(math.Inf(1)), 1))
	assert.True(t, math.IsInf(WrapLongitude(math.Inf(-1)), -1))
}

func TestSmoothstep(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Smoothstep(0, 1, -1))
	assert.Equal(t, 1.0, Smoothstep(0, 1, 2))
	assert.InDelta(t, 0.5, Smoothstep(0, 1, 0.5), 1e-12)
	assert.InDelta(t, 0.15625, Smoothstep(0, 1, 0.25), 1e-12)
	// Degenerate edges never divide by zero.
	assert.Equal(t, 1.0, Smoothstep(1, 1, 2))
}
