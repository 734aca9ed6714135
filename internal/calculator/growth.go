package calculator

// GrowthRates computes period-over-period growth in percent for each metric
// row. Entries whose previous value is zero are nil. Rows with fewer than two
// values are omitted.
func GrowthRates(metrics map[string][]float64) map[string][]*float64 {
	rates := make(map[string][]*float64, len(metrics))
	for name, values := range metrics {
		if len(values) < 2 {
			continue
		}
		row := make([]*float64, 0, len(values)-1)
		for i := 1; i < len(values); i++ {
			prev, curr := values[i-1], values[i]
			if prev == 0 {
				row = append(row, nil)
				continue
			}
			g := (curr/prev - 1) * 100
			row = append(row, &g)
		}
		rates[name] = row
	}
	return rates
}
