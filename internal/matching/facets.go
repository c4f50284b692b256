package matching

import (
	"sort"
	"strings"

	"linkdesk/internal/domain"
)

// PublisherFacets are the option lists offered by the publisher filters.
type PublisherFacets struct {
	Niches           []string `json:"niches"`
	TrafficLocations []string `json:"trafficLocations"`
	MaxTraffic       float64  `json:"maxTraffic"`
}

// DomainFacets are the option lists offered by the domain filters.
type DomainFacets struct {
	Niches   []string `json:"niches"`
	Keywords []string `json:"keywords"`
}

// FacetsForPublishers collects sorted unique niches and traffic locations
// and the highest traffic value.
func FacetsForPublishers(publishers []domain.Publisher) PublisherFacets {
	var niches, locations []string
	var maxTraffic float64
	for _, p := range publishers {
		niches = append(niches, p.Niche...)
		locations = append(locations, p.TrafficLocation)
		if p.DomainTraffic > maxTraffic {
			maxTraffic = p.DomainTraffic
		}
	}
	return PublisherFacets{
		Niches:           sortedSet(niches),
		TrafficLocations: sortedSet(locations),
		MaxTraffic:       maxTraffic,
	}
}

// FacetsForDomains collects sorted unique niches and keywords.
func FacetsForDomains(domains []domain.Domain) DomainFacets {
	var niches, keywords []string
	for _, d := range domains {
		niches = append(niches, d.Niches...)
		keywords = append(keywords, d.Keywords...)
	}
	return DomainFacets{
		Niches:   sortedSet(niches),
		Keywords: sortedSet(keywords),
	}
}

func sortedSet(items []string) []string {
	out := []string(domain.NewSet(items...))
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
