package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func lineString(coords ...[2]float64) *geom.LineString {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c[0], c[1])
	}
	return geom.NewLineStringFlat(geom.XY, flat)
}

func TestBuildOutlinesPerKindStripCounts(t *testing.T) {
	t.Parallel()

	square := []float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0}
	hole := []float64{2, 2, 4, 2, 4, 4, 2, 2}

	polygon := geom.NewPolygonFlat(geom.XY, append(append([]float64{}, square...), hole...), []int{len(square), len(square) + len(hole)})
	mls := geom.NewMultiLineStringFlat(geom.XY, []float64{0, 0, 5, 5, 20, 0, 25, 5}, []int{4, 8})

	set := BuildOutlines([]geom.T{
		lineString([2]float64{0, 0}, [2]float64{30, 0}),
		mls,
		polygon,
		geom.NewPointFlat(geom.XY, []float64{1, 2}),
		geom.NewMultiPointFlat(geom.XY, []float64{1, 2, 3, 4}),
	}, 100, 5)

	// 1 linestring + 2 multilinestring parts + 2 polygon rings; points ignored.
	assert.Len(t, set.Strips, 5)
}

func TestBuildOutlinesMultiPolygonAndCollection(t *testing.T) {
	t.Parallel()

	ring1 := []float64{0, 0, 5, 0, 5, 5, 0, 0}
	ring2 := []float64{20, 20, 25, 20, 25, 25, 20, 20}
	mp := geom.NewMultiPolygonFlat(geom.XY,
		append(append([]float64{}, ring1...), ring2...),
		[][]int{{len(ring1)}, {len(ring1) + len(ring2)}})

	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(mp))
	require.NoError(t, gc.Push(lineString([2]float64{0, 0}, [2]float64{1, 1})))

	set := BuildOutlines([]geom.T{gc}, 100, 5)
	assert.Len(t, set.Strips, 3)
}

func TestBuildOutlinesDropsDegenerateRings(t *testing.T) {
	t.Parallel()

	set := BuildOutlines([]geom.T{
		lineString([2]float64{7, 7}), // single vertex, no segment
	}, 100, 5)
	assert.Empty(t, set.Strips)
}

func TestBuildOutlinesTessellatesAndLifts(t *testing.T) {
	t.Parallel()

	set := BuildOutlines([]geom.T{
		lineString([2]float64{-85, 0}, [2]float64{85, 0}),
	}, 100, 5)
	require.Len(t, set.Strips, 1)

	strip := set.Strips[0]
	assert.GreaterOrEqual(t, len(strip.Positions), 35)
	for _, p := range strip.Positions {
		assert.InDelta(t, 100*outlineLift, p.Norm(), 1e-9)
	}
}

func TestOutlineSetResolutionAndDispose(t *testing.T) {
	t.Parallel()

	set := BuildOutlines([]geom.T{lineString([2]float64{0, 0}, [2]float64{1, 1})}, 100, 5)
	set.SetResolution(800, 600)
	w, h := set.Resolution()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	set.Dispose()
	assert.Empty(t, set.Strips)
	set.Dispose() // idempotent
}
