package referral

// MaxDepth is how far up the referral chain deposit commissions travel.
const MaxDepth = 5

// levelPercentages is the fixed commission schedule: percentage of a
// deposit paid to the ancestor at each level above the depositor.
var levelPercentages = map[int]float64{
	1: 10,
	2: 5,
	3: 3,
	4: 2,
	5: 1,
}

// LevelPercentage returns the commission percentage for a chain level,
// or 0 when the level is outside the schedule.
func LevelPercentage(level int) float64 {
	return levelPercentages[level]
}
