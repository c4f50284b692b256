package matching

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdesk/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePublishers() []domain.Publisher {
	return []domain.Publisher{
		{ID: "a", DomainName: "a.com", Niche: domain.Set{"tech"}, DomainRating: 60, DomainAuthority: 50, DomainTraffic: 20000, SpamScore: 2, TrafficLocation: "US", MetricsLastUpdate: day(2024, 3, 1)},
		{ID: "b", DomainName: "b.com", Niche: domain.Set{"travel"}, DomainRating: 80, DomainAuthority: 70, DomainTraffic: 90000, SpamScore: 10, TrafficLocation: "UK", IsReseller: true, MetricsLastUpdate: day(2024, 6, 15)},
		{ID: "c", DomainName: "c.com", Niche: domain.Set{"finance", "Tech"}, DomainRating: 40, DomainAuthority: 30, DomainTraffic: 1500, SpamScore: 30, TrafficLocation: "US, CA"},
	}
}

func ids(ps []domain.Publisher) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterPublishers_EmptyCriteriaIsIdentity(t *testing.T) {
	pubs := samplePublishers()
	assert.Equal(t, pubs, FilterPublishers(pubs, Criteria{}))
	assert.Empty(t, FilterPublishers(nil, Criteria{}))
}

func TestFilterPublishers_FullDefaultRangesAreIdentity(t *testing.T) {
	full := ScoreRange()
	traffic := TrafficRange()
	c := Criteria{DomainRating: &full, DomainAuthority: &full, SpamScore: &full, Traffic: &traffic}
	assert.Equal(t, []string{"a", "b", "c"}, ids(FilterPublishers(samplePublishers(), c)))
}

func TestFilterPublishers_EachCriterion(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"niche intersect is case-insensitive", Criteria{Niches: domain.Set{"TECH"}}, []string{"a", "c"}},
		{"niche no match", Criteria{Niches: domain.Set{"health"}}, []string{}},
		{"dr range inclusive", Criteria{DomainRating: &Range{Min: 40, Max: 60}}, []string{"a", "c"}},
		{"da range", Criteria{DomainAuthority: &Range{Min: 51, Max: 100}}, []string{"b"}},
		{"spam range", Criteria{SpamScore: &Range{Min: 0, Max: 10}}, []string{"a", "b"}},
		{"traffic open ended", Criteria{Traffic: &Range{Min: 20000, Max: math.Inf(1)}}, []string{"a", "b"}},
		{"reseller yes", Criteria{IsReseller: Yes}, []string{"b"}},
		{"reseller no", Criteria{IsReseller: No}, []string{"a", "c"}},
		{"traffic location equality", Criteria{TrafficLocations: domain.Set{"uk"}}, []string{"b"}},
		{"traffic location substring", Criteria{TrafficLocations: domain.Set{"CA"}}, []string{"c"}},
		{"metrics date range", Criteria{MetricsUpdated: DateRange{Start: day(2024, 1, 1), End: day(2024, 3, 1)}}, []string{"a"}},
		{"metrics date range needs both bounds", Criteria{MetricsUpdated: DateRange{Start: day(2030, 1, 1)}}, []string{"a", "b", "c"}},
		{"conjunction", Criteria{Niches: domain.Set{"tech"}, DomainRating: &Range{Min: 50, Max: 100}}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterPublishers(samplePublishers(), tt.c)))
		})
	}
}

func TestFilterPublishers_InvertedRangesMatchNothing(t *testing.T) {
	pubs := samplePublishers()
	assert.Empty(t, FilterPublishers(pubs, Criteria{DomainRating: &Range{Min: 90, Max: 10}}))
	assert.Empty(t, FilterPublishers(pubs, Criteria{Traffic: &Range{Min: 5, Max: 1}}))
	assert.Empty(t, FilterPublishers(pubs, Criteria{MetricsUpdated: DateRange{Start: day(2025, 1, 1), End: day(2024, 1, 1)}}))
}

func TestFilterPublishers_SingletonAgreesWithMatches(t *testing.T) {
	criteria := []Criteria{
		{},
		{Niches: domain.Set{"finance"}},
		{DomainRating: &Range{Min: 70, Max: 100}, IsReseller: Yes},
		{TrafficLocations: domain.Set{"US"}, SpamScore: &Range{Min: 0, Max: 5}},
	}
	for _, c := range criteria {
		for _, p := range samplePublishers() {
			got := FilterPublishers([]domain.Publisher{p}, c)
			if c.Matches(p) {
				assert.Equal(t, []domain.Publisher{p}, got)
			} else {
				assert.Empty(t, got)
			}
		}
	}
}

func TestFilterPublishers_Idempotent(t *testing.T) {
	c := Criteria{Niches: domain.Set{"tech", "travel"}, SpamScore: &Range{Min: 0, Max: 20}}
	once := FilterPublishers(samplePublishers(), c)
	assert.Equal(t, once, FilterPublishers(once, c))
}

func TestFilterPublishers_DoesNotMutateInput(t *testing.T) {
	pubs := samplePublishers()
	before := ids(pubs)
	_ = FilterPublishers(pubs, Criteria{IsReseller: Yes})
	assert.Equal(t, before, ids(pubs))
}

func TestForDomain_Scenario(t *testing.T) {
	d := domain.Domain{
		Name:   "client.com",
		Niches: domain.ParseSet("tech,finance"),
		SEO:    &domain.SEORequirements{MinDomainRating: domain.Float(50)},
	}
	pool := []domain.Publisher{
		{ID: "A", Niche: domain.Set{"tech"}, DomainRating: 60},
		{ID: "B", Niche: domain.Set{"travel"}, DomainRating: 80},
		{ID: "C", Niche: domain.Set{"finance"}, DomainRating: 40},
	}
	assert.Equal(t, []string{"A"}, ids(FilterPublishers(pool, ForDomain(d))))
}

func TestForDomain_Defaults(t *testing.T) {
	c := ForDomain(domain.Domain{Niches: domain.Set{" seo "}})
	require.NotNil(t, c.DomainRating)
	assert.Equal(t, Range{Min: 0, Max: 100}, *c.DomainRating)
	assert.Equal(t, Range{Min: 0, Max: 100}, *c.DomainAuthority)
	assert.Equal(t, 0.0, c.Traffic.Min)
	assert.True(t, math.IsInf(c.Traffic.Max, 1))
	assert.Equal(t, domain.Set{"seo"}, c.Niches)
	assert.Nil(t, c.SpamScore)
}

func TestOverrides_Apply(t *testing.T) {
	base := ForDomain(domain.Domain{Niches: domain.Set{"tech"}, SEO: &domain.SEORequirements{MinDomainRating: domain.Float(50)}})
	c := Overrides{MinDomainRating: domain.Float(70), Niches: domain.Set{"travel"}}.Apply(base)
	assert.Equal(t, 70.0, c.DomainRating.Min)
	assert.Equal(t, domain.Set{"travel"}, c.Niches)
	assert.Equal(t, 50.0, base.DomainRating.Min, "base criteria must not change")
	assert.Equal(t, []string{"b"}, ids(FilterPublishers(samplePublishers(), c)))
}

func TestParseTriState(t *testing.T) {
	assert.Equal(t, Yes, ParseTriState("true"))
	assert.Equal(t, No, ParseTriState("No"))
	assert.Equal(t, Any, ParseTriState("all"))
	assert.Equal(t, Any, ParseTriState(""))
}

func TestFilterDomains(t *testing.T) {
	domains := []domain.Domain{
		{ID: "1", Name: "a.com", Niches: domain.Set{"tech"}},
		{ID: "2", Name: "b.com", Niches: domain.Set{"travel"}, Archived: true},
		{ID: "3", Name: "c.com", Niches: domain.Set{"finance", "travel"}},
	}
	names := func(ds []domain.Domain) []string {
		var out []string
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1", "3"}, names(FilterDomains(domains, DomainFilter{})))
	assert.Equal(t, []string{"1", "2", "3"}, names(FilterDomains(domains, DomainFilter{IncludeArchived: true})))
	assert.Equal(t, []string{"3"}, names(FilterDomains(domains, DomainFilter{Niches: domain.Set{"travel"}})))
}

func TestFacets(t *testing.T) {
	pf := FacetsForPublishers(samplePublishers())
	assert.Equal(t, []string{"finance", "tech", "travel"}, pf.Niches)
	assert.Equal(t, []string{"UK", "US", "US, CA"}, pf.TrafficLocations)
	assert.Equal(t, 90000.0, pf.MaxTraffic)

	df := FacetsForDomains([]domain.Domain{
		{Niches: domain.Set{"b", "a"}, Keywords: domain.Set{"k2"}},
		{Niches: domain.Set{"A"}, Keywords: domain.Set{"k1"}},
	})
	assert.Equal(t, []string{"a", "b"}, df.Niches)
	assert.Equal(t, []string{"k1", "k2"}, df.Keywords)
}
