package predictor

import "math"

// valueRange is the observed min and max of one column.
type valueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// normalize maps v into [0,1] relative to the range. A degenerate range
// maps everything to 0.
func (r valueRange) normalize(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}

func (r valueRange) denormalize(v float64) float64 {
	return v*(r.Max-r.Min) + r.Min
}

func columnRanges(rows [][]float64) []valueRange {
	if len(rows) == 0 {
		return nil
	}
	ranges := make([]valueRange, len(rows[0]))
	for i := range ranges {
		ranges[i] = valueRange{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	for _, row := range rows {
		for i, v := range row {
			ranges[i].Min = min(ranges[i].Min, v)
			ranges[i].Max = max(ranges[i].Max, v)
		}
	}
	return ranges
}

func valuesRange(values []float64) valueRange {
	r := valueRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		r.Min = min(r.Min, v)
		r.Max = max(r.Max, v)
	}
	return r
}

func normalizeRow(row []float64, ranges []valueRange) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = ranges[i].normalize(v)
	}
	return out
}
