package upstream

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Row is one normalized observation: a timestamp plus the numeric fields
// that survived normalization.
type Row struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Slice is a windowed, optionally resampled view over one station's rows,
// in the wire shape the API serves.
type Slice struct {
	Station    string           `json:"station,omitempty"`
	StartDate  string           `json:"start_date,omitempty"`
	EndDate    string           `json:"end_date,omitempty"`
	PointCount int              `json:"points_count"`
	Points     []map[string]any `json:"points"`
}

var timeKeys = []string{"timestamp", "time", "ts", "date", "datetime"}

// NormalizeRows accepts any of the upstream payload shapes (a row-wise
// points array, a columnar points object, or columns at the top level)
// and returns timestamp-sorted rows holding numeric fields only. An
// unrecognizable payload yields no rows, not an error; shape errors are
// the caller's concern only at the document level.
func NormalizeRows(raw []byte) []Row {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	if pts, ok := doc["points"]; ok {
		var rowwise []map[string]any
		if err := json.Unmarshal(pts, &rowwise); err == nil {
			return normalizeRowwise(rowwise)
		}
		var columnar map[string][]any
		if err := json.Unmarshal(pts, &columnar); err == nil {
			return normalizeColumnar(columnar)
		}
		return nil
	}

	// Columns at the top level.
	columnar := make(map[string][]any, len(doc))
	for k, v := range doc {
		var col []any
		if err := json.Unmarshal(v, &col); err != nil {
			return nil
		}
		columnar[k] = col
	}
	return normalizeColumnar(columnar)
}

func normalizeRowwise(points []map[string]any) []Row {
	tk := ""
	if len(points) > 0 {
		for _, cand := range timeKeys {
			if _, ok := points[0][cand]; ok {
				tk = cand
				break
			}
		}
	}
	if tk == "" {
		tk = "timestamp"
	}

	rows := make([]Row, 0, len(points))
	for _, p := range points {
		ts, ok := parseTimestamp(p[tk])
		if !ok {
			continue
		}
		values := make(map[string]float64)
		for k, v := range p {
			if k == tk {
				continue
			}
			if f, ok := toFiniteFloat(v); ok {
				values[k] = f
			}
		}
		rows = append(rows, Row{Timestamp: ts, Values: values})
	}
	sortRows(rows)
	return rows
}

func normalizeColumnar(cols map[string][]any) []Row {
	tk := ""
	for _, cand := range timeKeys {
		if _, ok := cols[cand]; ok {
			tk = cand
			break
		}
	}
	if tk == "" {
		return nil
	}

	tcol := cols[tk]
	rows := make([]Row, 0, len(tcol))
	for i := range tcol {
		ts, ok := parseTimestamp(tcol[i])
		if !ok {
			continue
		}
		values := make(map[string]float64)
		for k, col := range cols {
			if k == tk || i >= len(col) {
				continue
			}
			if f, ok := toFiniteFloat(col[i]); ok {
				values[k] = f
			}
		}
		rows = append(rows, Row{Timestamp: ts, Values: values})
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
}

// parseTimestamp accepts epoch seconds, epoch milliseconds, or an ISO
// string (Z or offset form).
func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		ms := int64(t * 1000)
		if t > 1e12 {
			ms = int64(t)
		}
		return time.UnixMilli(ms).UTC(), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func toFiniteFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// SliceOptions selects and shapes the rows returned by BuildSlice.
type SliceOptions struct {
	Start    string // inclusive ISO lower bound, empty = unbounded
	End      string // inclusive ISO upper bound, empty = unbounded
	Vars     []string
	Resample string // Go duration string; bucket means, empty = raw rows
}

// BuildSlice normalizes a raw payload and applies the time window,
// variable selection, and optional mean resampling.
func BuildSlice(raw []byte, opts SliceOptions) (*Slice, error) {
	rows := NormalizeRows(raw)

	var startT, endT time.Time
	if opts.Start != "" {
		t, ok := parseTimestamp(opts.Start)
		if !ok {
			return nil, eris.Errorf("upstream: invalid start time %q", opts.Start)
		}
		startT = t
	}
	if opts.End != "" {
		t, ok := parseTimestamp(opts.End)
		if !ok {
			return nil, eris.Errorf("upstream: invalid end time %q", opts.End)
		}
		endT = t
	}

	filtered := rows[:0:0]
	for _, r := range rows {
		if !startT.IsZero() && r.Timestamp.Before(startT) {
			continue
		}
		if !endT.IsZero() && r.Timestamp.After(endT) {
			continue
		}
		if len(opts.Vars) > 0 {
			values := make(map[string]float64, len(opts.Vars))
			for _, v := range opts.Vars {
				if f, ok := r.Values[v]; ok {
					values[v] = f
				}
			}
			r.Values = values
		}
		filtered = append(filtered, r)
	}

	if opts.Resample != "" {
		d, err := time.ParseDuration(opts.Resample)
		if err != nil || d <= 0 {
			return nil, eris.Errorf("upstream: invalid resample interval %q", opts.Resample)
		}
		filtered = resampleMean(filtered, d)
	}

	points := make([]map[string]any, 0, len(filtered))
	for _, r := range filtered {
		p := make(map[string]any, len(r.Values)+1)
		p["timestamp"] = r.Timestamp.Format(time.RFC3339)
		for k, v := range r.Values {
			p[k] = v
		}
		points = append(points, p)
	}

	return &Slice{
		StartDate:  opts.Start,
		EndDate:    opts.End,
		PointCount: len(points),
		Points:     points,
	}, nil
}

// resampleMean buckets rows by truncated timestamp and averages each field
// within its bucket. Rows are assumed sorted; the output stays sorted.
func resampleMean(rows []Row, interval time.Duration) []Row {
	type acc struct {
		sum   map[string]float64
		count map[string]int
	}
	buckets := make(map[time.Time]*acc)
	var order []time.Time

	for _, r := range rows {
		b := r.Timestamp.Truncate(interval)
		a, ok := buckets[b]
		if !ok {
			a = &acc{sum: make(map[string]float64), count: make(map[string]int)}
			buckets[b] = a
			order = append(order, b)
		}
		for k, v := range r.Values {
			a.sum[k] += v
			a.count[k]++
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]Row, 0, len(order))
	for _, b := range order {
		a := buckets[b]
		values := make(map[string]float64, len(a.sum))
		for k, s := range a.sum {
			values[k] = s / float64(a.count[k])
		}
		out = append(out, Row{Timestamp: b, Values: values})
	}
	return out
}
