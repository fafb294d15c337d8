package crosstab

// AgeBin is a left-inclusive, right-exclusive age interval
type AgeBin struct {
	Label string
	Min   int
	Max   int
}

// AgeBins partitions 0-120; the last bin is closed on both ends
var AgeBins = []AgeBin{
	{Label: "0-17", Min: 0, Max: 18},
	{Label: "18-29", Min: 18, Max: 30},
	{Label: "30-44", Min: 30, Max: 45},
	{Label: "45-59", Min: 45, Max: 60},
	{Label: "60-74", Min: 60, Max: 75},
	{Label: "75+", Min: 75, Max: 120},
}

// BinAge returns the label of the bin containing age
func BinAge(age int) (string, bool) {
	last := len(AgeBins) - 1
	for i, bin := range AgeBins {
		if age >= bin.Min && (age < bin.Max || (i == last && age == bin.Max)) {
			return bin.Label, true
		}
	}
	return "", false
}

func binOrder() map[string]int {
	order := make(map[string]int, len(AgeBins))
	for i, bin := range AgeBins {
		order[bin.Label] = i
	}
	return order
}
