package services

// Assessment is the classification of a session total.
type Assessment struct {
	Tier           string `json:"tier"`
	Color          string `json:"color"`
	Recommendation string `json:"recommendation"`
}

type threshold struct {
	min int
	Assessment
}

// Thresholds in descending order; the first one whose min is reached wins.
var thresholds = []threshold{
	{85, Assessment{"Low ADHD indicators", "#4CAF50", "Normal development"}},
	{70, Assessment{"Mild ADHD indicators", "#8BC34A", "Monitor progress"}},
	{55, Assessment{"Moderate ADHD indicators", "#FFC107", "Further evaluation recommended"}},
	{40, Assessment{"High ADHD indicators", "#FF9800", "Professional assessment needed"}},
}

var lowestTier = Assessment{"Very High ADHD indicators", "#F44336", "Immediate professional consultation"}

// Classify maps a total score to its tier, display color and recommendation.
func Classify(total int) Assessment {
	for _, t := range thresholds {
		if total >= t.min {
			return t.Assessment
		}
	}
	return lowestTier
}

// TierByLabel looks up the assessment for a stored tier label.
func TierByLabel(label string) (Assessment, bool) {
	for _, t := range thresholds {
		if t.Tier == label {
			return t.Assessment, true
		}
	}
	if label == lowestTier.Tier {
		return lowestTier, true
	}
	return Assessment{}, false
}
