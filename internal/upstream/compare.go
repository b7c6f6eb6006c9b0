package upstream

import (
	"sort"
	"time"
)

// Comparison is the outer join of several stations' slices on timestamp,
// with each value column prefixed by its station id.
type Comparison struct {
	IDs        []string         `json:"ids"`
	PointCount int              `json:"points_count"`
	Points     []map[string]any `json:"points"`
}

// MergeComparison joins per-station rows on timestamp. Every timestamp
// present in any input appears once; fields are renamed "id:field". IDs
// are assumed sorted and deduplicated by the caller.
func MergeComparison(ids []string, perStation map[string][]Row) *Comparison {
	merged := make(map[time.Time]map[string]any)

	for _, id := range ids {
		for _, r := range perStation[id] {
			row, ok := merged[r.Timestamp]
			if !ok {
				row = map[string]any{"timestamp": r.Timestamp.Format(time.RFC3339)}
				merged[r.Timestamp] = row
			}
			for k, v := range r.Values {
				row[id+":"+k] = v
			}
		}
	}

	stamps := make([]time.Time, 0, len(merged))
	for ts := range merged {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	points := make([]map[string]any, 0, len(stamps))
	for _, ts := range stamps {
		points = append(points, merged[ts])
	}

	return &Comparison{IDs: ids, PointCount: len(points), Points: points}
}
