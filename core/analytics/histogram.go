package analytics

// RangeCount is one bar of the grade histogram.
type RangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

var gradeRanges = [4]string{"0-5", "6-10", "11-15", "16-20"}

// GradeHistogram buckets grades into four fixed ranges: [0,5], (5,10],
// (10,15], (15,20]. Boundary values belong to the lower range. Out-of-range
// grades are clamped into the nearest outer bucket so a bad row can never
// make a bar disappear.
func GradeHistogram(grades []float64) []RangeCount {
	var counts [4]int
	for _, g := range grades {
		switch {
		case g <= 5:
			counts[0]++
		case g <= 10:
			counts[1]++
		case g <= 15:
			counts[2]++
		default:
			counts[3]++
		}
	}

	hist := make([]RangeCount, 0, len(gradeRanges))
	for i, r := range gradeRanges {
		hist = append(hist, RangeCount{Range: r, Count: counts[i]})
	}
	return hist
}
