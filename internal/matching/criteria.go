// Package matching filters publishers and domains held in memory.
//
// Every function here is pure: inputs are never mutated and output order
// follows input order.
package matching

import (
	"math"
	"strings"
	"time"

	"linkdesk/internal/domain"
)

const (
	// MaxScore is the upper bound of DR, DA and spam score.
	MaxScore = 100
)

// Range is an inclusive numeric interval. An inverted range (Min > Max)
// contains nothing.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Min > r.Max {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// ScoreRange returns the full 0–100 range.
func ScoreRange() Range { return Range{Min: 0, Max: MaxScore} }

// TrafficRange returns the full 0–∞ range.
func TrafficRange() Range { return Range{Min: 0, Max: math.Inf(1)} }

// TriState is a yes/no/any flag filter.
type TriState int

const (
	Any TriState = iota
	Yes
	No
)

// ParseTriState maps "true"/"yes" and "false"/"no" to Yes/No; anything
// else (including "all") is Any.
func ParseTriState(s string) TriState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return Yes
	case "false", "no":
		return No
	default:
		return Any
	}
}

// Allows reports whether flag satisfies the tri-state.
func (t TriState) Allows(flag bool) bool {
	switch t {
	case Yes:
		return flag
	case No:
		return !flag
	default:
		return true
	}
}

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "any"
	}
}

// DateRange constrains a timestamp only when both bounds are set.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Bounded reports whether both bounds are present.
func (r DateRange) Bounded() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Contains reports whether t lies within [Start, End]. An unbounded range
// contains everything; an inverted one contains nothing.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Bounded() {
		return true
	}
	if r.Start.After(r.End) {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// Criteria is the set of publisher constraints. Nil ranges, empty sets and
// Any flags are unconstrained.
type Criteria struct {
	Niches           domain.Set
	DomainRating     *Range
	DomainAuthority  *Range
	SpamScore        *Range
	Traffic          *Range
	IsReseller       TriState
	TrafficLocations domain.Set
	MetricsUpdated   DateRange
}

// ForDomain derives matching criteria from a client domain's requirements:
// DR in [minDR, 100], DA in [minDA, 100], traffic in [minTraffic, ∞) and the
// domain's niches.
func ForDomain(d domain.Domain) Criteria {
	var minDR, minDA, minTraffic float64
	if req := d.SEO; req != nil {
		minDR = valueOr(req.MinDomainRating, 0)
		minDA = valueOr(req.MinDomainAuthority, 0)
		minTraffic = valueOr(req.MinDomainTraffic, 0)
	}
	return Criteria{
		Niches:          domain.NewSet(d.Niches...),
		DomainRating:    &Range{Min: minDR, Max: MaxScore},
		DomainAuthority: &Range{Min: minDA, Max: MaxScore},
		Traffic:         &Range{Min: minTraffic, Max: math.Inf(1)},
	}
}

// Overrides replace parts of derived criteria, as adjusted by the user
// after selecting a domain.
type Overrides struct {
	MinDomainRating    *float64
	MinDomainAuthority *float64
	MinDomainTraffic   *float64
	Niches             domain.Set
}

// Apply returns c with the overrides applied.
func (o Overrides) Apply(c Criteria) Criteria {
	if o.MinDomainRating != nil {
		c.DomainRating = &Range{Min: *o.MinDomainRating, Max: MaxScore}
	}
	if o.MinDomainAuthority != nil {
		c.DomainAuthority = &Range{Min: *o.MinDomainAuthority, Max: MaxScore}
	}
	if o.MinDomainTraffic != nil {
		c.Traffic = &Range{Min: *o.MinDomainTraffic, Max: math.Inf(1)}
	}
	if o.Niches != nil {
		c.Niches = domain.NewSet(o.Niches...)
	}
	return c
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
