package timeline

// Kind describes how a stat accumulates across a season.
type Kind string

const (
	// KindCounting stats only accumulate (home runs, hits). Events carry
	// per-game increments and the column is a non-decreasing running sum.
	KindCounting Kind = "counting"

	// KindGauge stats are reported by the source as an already-cumulative
	// running figure (ERA, AVG). Events carry the reading itself and the
	// column carries the last observation forward. A reading of exactly
	// zero after a nonzero one is a source anomaly, not a reset.
	KindGauge Kind = "gauge"
)

// gaugeStats are the rate-type stats the MLB API reports as running
// figures. Everything else is treated as counting.
var gaugeStats = map[string]bool{
	"era":  true,
	"avg":  true,
	"obp":  true,
	"slg":  true,
	"ops":  true,
	"whip": true,
}

// KindForStat classifies a stat name. Unknown names default to counting,
// which is the common case for boxscore stats.
func KindForStat(stat string) Kind {
	if gaugeStats[stat] {
		return KindGauge
	}
	return KindCounting
}
