package route

// Score is the tuple routes are compared on, lexicographically:
// method match, consumes match, produces match, and produces quality
// (the negotiated Accept q-value / specificity).
type Score struct {
	MethodMatch     bool
	ConsumesMatch   bool
	ProducesMatch   bool
	ProducesQuality float64
}

// Highest is the greatest attainable score: every dimension matches
// including an exact produces preference.
var Highest = Score{MethodMatch: true, ConsumesMatch: true, ProducesMatch: true, ProducesQuality: 1}

// Less reports whether s is strictly lower than other, comparing
// fields in declared order.
func (s Score) Less(other Score) bool {
	if s.MethodMatch != other.MethodMatch {
		return !s.MethodMatch
	}
	if s.ConsumesMatch != other.ConsumesMatch {
		return !s.ConsumesMatch
	}
	if s.ProducesMatch != other.ProducesMatch {
		return !s.ProducesMatch
	}
	return s.ProducesQuality < other.ProducesQuality
}

// Greater reports whether s is strictly higher than other.
func (s Score) Greater(other Score) bool { return other.Less(s) }

func (s Score) IsHighest() bool { return s == Highest }
