package datamodel

// RatingType is the kind of score an eval output produces.
type RatingType string

const (
	RatingFiveStar         RatingType = "five_star"
	RatingPassFail         RatingType = "pass_fail"
	RatingPassFailCritical RatingType = "pass_fail_critical"
	RatingCustom           RatingType = "custom"
)

// Valid reports whether r is a known rating type.
func (r RatingType) Valid() bool {
	switch r {
	case RatingFiveStar, RatingPassFail, RatingPassFailCritical, RatingCustom:
		return true
	default:
		return false
	}
}

// ScoreRange returns the inclusive bounds of numeric scores for r.
// Custom ratings have no numeric range.
func (r RatingType) ScoreRange() (lo, hi float64, ok bool) {
	switch r {
	case RatingFiveStar:
		return 1, 5, true
	case RatingPassFail:
		return 0, 1, true
	case RatingPassFailCritical:
		return -1, 1, true
	default:
		return 0, 0, false
	}
}
