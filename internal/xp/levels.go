package xp

// Level is one rung of the progression ladder.
type Level struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Threshold int    `json:"threshold"` // cumulative XP required
}

// Levels is ordered by Threshold, starting at 0.
var Levels = []Level{
	{1, "Initiate", 0},
	{2, "Pathfinder", 100},
	{3, "Habit Explorer", 250},
	{4, "Focus Adept", 450},
	{5, "Ritual Knight", 700},
	{6, "Discipline Warden", 1000},
	{7, "Master of Habit", 1400},
	{8, "Ascended Champion", 1850},
	{9, "Evergrowth Sage", 2350},
	{10, "Legend of Day 75", 3000},
}

// Progress describes where a total XP value sits on the ladder.
type Progress struct {
	Current  Level   `json:"current"`
	Next     Level   `json:"next"`
	Progress float64 `json:"progress"` // 0..1 within the current level
	AtFinal  bool    `json:"at_final"`
}

// LevelFor finds the highest level whose threshold totalXP has reached. At
// the final level Next equals Current and Progress is 1.
func LevelFor(totalXP int) Progress {
	idx := 0
	for i, lvl := range Levels {
		if totalXP >= lvl.Threshold {
			idx = i
		}
	}
	cur := Levels[idx]
	if idx == len(Levels)-1 {
		return Progress{Current: cur, Next: cur, Progress: 1, AtFinal: true}
	}

	next := Levels[idx+1]
	frac := float64(totalXP-cur.Threshold) / float64(next.Threshold-cur.Threshold)
	frac = max(0, min(1, frac))
	return Progress{Current: cur, Next: next, Progress: frac}
}
