package matching

import (
	"strings"

	"linkdesk/internal/domain"
)

// Matches reports whether p satisfies every constraint in c.
func (c Criteria) Matches(p domain.Publisher) bool {
	if len(c.Niches) > 0 && !p.Niche.Intersects(c.Niches) {
		return false
	}
	if !inRange(c.DomainRating, p.DomainRating) ||
		!inRange(c.DomainAuthority, p.DomainAuthority) ||
		!inRange(c.SpamScore, p.SpamScore) ||
		!inRange(c.Traffic, p.DomainTraffic) {
		return false
	}
	if !c.IsReseller.Allows(p.IsReseller) {
		return false
	}
	if len(c.TrafficLocations) > 0 && !locationMatches(p.TrafficLocation, c.TrafficLocations) {
		return false
	}
	if c.MetricsUpdated.Bounded() {
		if p.MetricsLastUpdate.IsZero() || !c.MetricsUpdated.Contains(p.MetricsLastUpdate) {
			return false
		}
	}
	return true
}

// FilterPublishers returns the publishers satisfying c, in input order.
func FilterPublishers(publishers []domain.Publisher, c Criteria) []domain.Publisher {
	out := make([]domain.Publisher, 0, len(publishers))
	for _, p := range publishers {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func inRange(r *Range, v float64) bool {
	return r == nil || r.Contains(v)
}

func locationMatches(location string, wanted domain.Set) bool {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return false
	}
	for _, w := range wanted {
		w = strings.ToLower(w)
		if location == w || strings.Contains(location, w) {
			return true
		}
	}
	return false
}

// DomainFilter narrows the client domain list.
type DomainFilter struct {
	IncludeArchived bool
	Niches          domain.Set
}

// FilterDomains hides archived domains unless requested and keeps those
// sharing a niche with f.Niches (when set). Order is preserved.
func FilterDomains(domains []domain.Domain, f DomainFilter) []domain.Domain {
	out := make([]domain.Domain, 0, len(domains))
	for _, d := range domains {
		if d.Archived && !f.IncludeArchived {
			continue
		}
		if len(f.Niches) > 0 && !d.Niches.Intersects(f.Niches) {
			continue
		}
		out = append(out, d)
	}
	return out
}
