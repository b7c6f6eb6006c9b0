package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStaysOnSphere(t *testing.T) {
	t.Parallel()

	points := [][2]float64{
		{0, 0}, {90, 0}, {-90, 0}, {0, 180}, {0, -180},
		{45, 45}, {-33.9, 151.2}, {60.2, 25.6}, {89.999, -179.999},
	}
	for _, radius := range []float64{1, 100, 6371} {
		for _, p := range points {
			got := Project(p[0], p[1], radius)
			assert.InDelta(t, radius, got.Norm(), radius*1e-12,
				"lat=%v lon=%v radius=%v", p[0], p[1], radius)
		}
	}
}

func TestProjectOrientation(t *testing.T) {
	t.Parallel()

	// North pole maps to +Z.
	north := Project(90, 0, 100)
	assert.InDelta(t, 0, north.X, 1e-9)
	assert.InDelta(t, 0, north.Y, 1e-9)
	assert.InDelta(t, 100, north.Z, 1e-9)

	// Equator at lon 0 maps to +X, lon 90 to +Y.
	assert.InDelta(t, 100, Project(0, 0, 100).X, 1e-9)
	assert.InDelta(t, 100, Project(0, 90, 100).Y, 1e-9)
}

func TestProjectPropagatesNonFinite(t *testing.T) {
	t.Parallel()

	bad := []Vec3{
		Project(math.NaN(), 5, 100),
		Project(10, math.NaN(), 100),
		Project(math.Inf(1), 0, 100),
		Project(0, math.Inf(-1), 100),
	}
	for _, v := range bad {
		assert.False(t, v.IsFinite())
	}
	assert.True(t, Project(10, 20, 100).IsFinite())
}

func TestVecOps(t *testing.T) {
	t.Parallel()

	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -4, Y: 0, Z: 2}

	assert.Equal(t, Vec3{X: -3, Y: 2, Z: 5}, a.Add(b))
	assert.Equal(t, Vec3{X: 5, Y: 2, Z: 1}, a.Sub(b))
	assert.InDelta(t, 2, a.Dot(b), 1e-12)
	assert.InDelta(t, 1, a.Normalize().Norm(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())

	cross := Vec3{X: 1, Y: 0, Z: 0}.Cross(Vec3{X: 0, Y: 1, Z: 0})
	assert.Equal(t, Vec3{X: 0, Y: 0, Z: 1}, cross)
}
