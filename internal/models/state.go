package models

// Flag codes set by the state aggregator.
const (
	FlagHighStress = "high_stress"
	FlagPainRisk   = "pain_risk"
)

// PainWatchItem is one entry of the pain watchlist: a body area with its
// occurrence count and mean intensity over the aggregation window.
type PainWatchItem struct {
	Area         string  `json:"area"`
	Occurrences  int     `json:"occurrences"`
	AvgIntensity float64 `json:"avg_intensity"`
}

// AthleteState is the payload stored under the "state" document kind.
// Trend fields are nil when the window contributed no values for the signal;
// PainWatchlist and Flags are always present, possibly empty.
type AthleteState struct {
	StressTrend7d       *float64        `json:"stress_trend_7d,omitempty"`
	RPETrend7d          *float64        `json:"rpe_trend_7d,omitempty"`
	PainWatchlist       []PainWatchItem `json:"pain_watchlist"`
	SoloRatio14d        *float64        `json:"solo_ratio_14d,omitempty"`
	ReadinessSubjective int             `json:"readiness_subjective"`
	Flags               []string        `json:"flags"`
}
