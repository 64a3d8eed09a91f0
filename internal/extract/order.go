package extract

import (
	"sort"
	"strings"
)

// Box is one recognised text fragment with the centre of its bounding box.
type Box struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ReadingOrder groups boxes into rows whose centres lie within tolerance of
// the row's first box, then returns the texts row by row, left to right.
// A label and its value printed on the same row end up on consecutive lines.
func ReadingOrder(boxes []Box, tolerance float64) []string {
	if len(boxes) == 0 {
		return nil
	}
	sorted := make([]Box, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var rows [][]Box
	rowY := sorted[0].Y
	current := []Box{}
	for _, b := range sorted {
		if b.Y-rowY > tolerance {
			rows = append(rows, current)
			current = []Box{}
			rowY = b.Y
		}
		current = append(current, b)
	}
	rows = append(rows, current)

	out := make([]string, 0, len(boxes))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		for _, b := range row {
			if t := strings.TrimSpace(b.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
