package upstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRowwise(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":[
		{"timestamp":"2024-01-01T12:00:00Z","temp":3.5,"wind":"7.2","note":"ignored"},
		{"timestamp":"2024-01-01T06:00:00Z","temp":1.0},
		{"timestamp":"garbage","temp":9}
	]}`)
	rows := NormalizeRows(raw)
	require.Len(t, rows, 2)

	// Sorted by timestamp; the unparseable row is dropped.
	assert.True(t, rows[0].Timestamp.Before(rows[1].Timestamp))
	assert.Equal(t, 1.0, rows[0].Values["temp"])

	// Numeric strings coerce, non-numeric fields vanish.
	assert.Equal(t, 7.2, rows[1].Values["wind"])
	_, hasNote := rows[1].Values["note"]
	assert.False(t, hasNote)
}

func TestNormalizeColumnar(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":{
		"time":[1704110400,1704088800],
		"temp":[3.5,1.0],
		"wind":[null,4.2]
	}}`)
	rows := NormalizeRows(raw)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), rows[0].Timestamp)
	assert.Equal(t, 1.0, rows[0].Values["temp"])
	assert.Equal(t, 4.2, rows[0].Values["wind"])

	_, hasWind := rows[1].Values["wind"]
	assert.False(t, hasWind) // null dropped
}

func TestNormalizeTopLevelColumns(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"timestamp":["2024-01-01T00:00:00Z"],"pressure":[1013.2]}`)
	rows := NormalizeRows(raw)
	require.Len(t, rows, 1)
	assert.Equal(t, 1013.2, rows[0].Values["pressure"])
}

func TestNormalizeMillisecondEpochs(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":[{"ts":1704067200000,"v":1}]}`)
	rows := NormalizeRows(raw)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].Timestamp)
}

func TestNormalizeUnrecognizedShapes(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NormalizeRows([]byte(`[1,2,3]`)))
	assert.Empty(t, NormalizeRows([]byte(`{"points":"nope"}`)))
	assert.Empty(t, NormalizeRows([]byte(`{"a":[1],"b":"not a column"}`)))
}

func TestBuildSliceWindowAndVars(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":[
		{"timestamp":"2024-01-01T00:00:00Z","temp":1,"wind":10},
		{"timestamp":"2024-01-02T00:00:00Z","temp":2,"wind":20},
		{"timestamp":"2024-01-03T00:00:00Z","temp":3,"wind":30}
	]}`)

	slice, err := BuildSlice(raw, SliceOptions{
		Start: "2024-01-02",
		Vars:  []string{"temp"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, slice.PointCount)

	for _, p := range slice.Points {
		_, hasWind := p["wind"]
		assert.False(t, hasWind)
		assert.Contains(t, p, "temp")
	}
}

func TestBuildSliceResample(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":[
		{"timestamp":"2024-01-01T00:10:00Z","temp":1},
		{"timestamp":"2024-01-01T00:50:00Z","temp":3},
		{"timestamp":"2024-01-01T01:20:00Z","temp":10}
	]}`)

	slice, err := BuildSlice(raw, SliceOptions{Resample: "1h"})
	require.NoError(t, err)
	require.Equal(t, 2, slice.PointCount)

	assert.Equal(t, "2024-01-01T00:00:00Z", slice.Points[0]["timestamp"])
	assert.Equal(t, 2.0, slice.Points[0]["temp"]) // mean of 1 and 3
	assert.Equal(t, 10.0, slice.Points[1]["temp"])
}

func TestBuildSliceRejectsBadOptions(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"points":[]}`)
	_, err := BuildSlice(raw, SliceOptions{Start: "not-a-time"})
	assert.Error(t, err)
	_, err = BuildSlice(raw, SliceOptions{Resample: "every hour"})
	assert.Error(t, err)
}

func TestMergeComparison(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	merged := MergeComparison([]string{"A", "B"}, map[string][]Row{
		"A": {
			{Timestamp: t0, Values: map[string]float64{"temp": 1}},
			{Timestamp: t1, Values: map[string]float64{"temp": 2}},
		},
		"B": {
			{Timestamp: t1, Values: map[string]float64{"temp": 20}},
		},
	})

	require.Equal(t, 2, merged.PointCount)
	assert.Equal(t, []string{"A", "B"}, merged.IDs)

	first := merged.Points[0]
	assert.Equal(t, 1.0, first["A:temp"])
	_, hasB := first["B:temp"]
	assert.False(t, hasB)

	second := merged.Points[1]
	assert.Equal(t, 2.0, second["A:temp"])
	assert.Equal(t, 20.0, second["B:temp"])
}
