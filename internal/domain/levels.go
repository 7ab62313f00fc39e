package domain

// levelStep is the number of points that spans one level.
const levelStep = 100

// LevelForPoints derives the level and the points remaining until the next
// level from a running total. Levels start at 1 and advance every 100 points;
// negative totals (possible only transiently, e.g. mid-reconciliation of a
// corrupted aggregate) are treated as zero.
func LevelForPoints(points int) (level, toNext int) {
	if points < 0 {
		points = 0
	}
	level = points/levelStep + 1
	toNext = level*levelStep - points
	return level, toNext
}

// ApplyPoints sets the aggregate total and the level fields derived from it.
func (s *UserRewardState) ApplyPoints(points int) {
	s.Points = points
	s.Level, s.PointsToNextLevel = LevelForPoints(points)
}
