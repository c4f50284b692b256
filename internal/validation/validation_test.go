package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdesk/internal/domain"
)

func validPublisher() domain.Publisher {
	return domain.Publisher{
		DomainName:        "publisher.com",
		Niche:             domain.Set{"tech"},
		DomainRating:      55,
		DomainAuthority:   40,
		DomainTraffic:     12000,
		TrafficLocation:   "US",
		SpamScore:         3,
		Currency:          "$",
		GuestPostPrice:    120,
		MetricsLastUpdate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		ContactName:       "Jo",
		ContactEmail:      "jo@publisher.com",
	}
}

func validDomain() domain.Domain {
	return domain.Domain{
		Name:     "example.com",
		Niches:   domain.Set{"tech", "finance"},
		Keywords: domain.Set{"budget app"},
		SEO:      &domain.SEORequirements{MinDomainRating: domain.Float(50)},
	}
}

func TestDomain_Valid(t *testing.T) {
	r := Domain(validDomain())
	assert.True(t, r.OK(), "unexpected errors: %v", r.Fields)
	assert.NoError(t, r.Err())
}

func TestDomain_Invalid(t *testing.T) {
	d := validDomain()
	d.Name = "not a domain"
	d.Niches = domain.Set{}
	d.Keywords = nil
	d.SEO.MinDomainRating = domain.Float(120)
	d.SEO.MinDomainTraffic = domain.Float(-1)

	r := Domain(d)
	require.False(t, r.OK())
	assert.Equal(t, "must be a valid domain name (e.g. example.com)", r.Fields["name"])
	assert.Equal(t, "must contain at least one entry", r.Fields["niches"])
	assert.Equal(t, "is required", r.Fields["keywords"])
	assert.Equal(t, "must be at most 100", r.Fields["seoMetricsRequirements.minDomainRating"])
	assert.Equal(t, "must be at least 0", r.Fields["seoMetricsRequirements.minDomainTraffic"])

	var verr *domain.ValidationError
	require.ErrorAs(t, r.Err(), &verr)
	assert.Len(t, verr.Fields, 5)
}

func TestDomain_NoRequirements(t *testing.T) {
	d := validDomain()
	d.SEO = nil
	assert.True(t, Domain(d).OK())
}

func TestPublisher_Valid(t *testing.T) {
	r := Publisher(validPublisher())
	assert.True(t, r.OK(), "unexpected errors: %v", r.Fields)
}

func TestPublisher_CurrencyRequiredWhenPriced(t *testing.T) {
	p := validPublisher()
	p.LinkInsertionPrice = 10
	p.Currency = ""

	r := Publisher(p)
	require.False(t, r.OK())
	assert.Equal(t, "is required when a price is set", r.Fields["currency"])

	p.LinkInsertionPrice = 0
	p.GuestPostPrice = 0
	assert.True(t, Publisher(p).OK(), "currency is optional for free placements")
}

func TestPublisher_ResellerNeedsNotes(t *testing.T) {
	p := validPublisher()
	p.IsReseller = true

	r := Publisher(p)
	require.False(t, r.OK())
	assert.Equal(t, "are required for resellers", r.Fields["notes"])

	p.Notes = "resells for a network of sites"
	assert.True(t, Publisher(p).OK())
}

func TestPublisher_Ranges(t *testing.T) {
	p := validPublisher()
	p.DomainRating = 101
	p.SpamScore = -1
	p.GuestPostPrice = -5
	p.ContactEmail = "nope"
	p.ContactName = ""

	r := Publisher(p)
	assert.Equal(t, "must be at most 100", r.Fields["domainRating"])
	assert.Equal(t, "must be at least 0", r.Fields["spamScore"])
	assert.Equal(t, "must be at least 0", r.Fields["guestPostPrice"])
	assert.Equal(t, "must be a valid email address", r.Fields["contactEmail"])
	assert.Equal(t, "is required", r.Fields["contactName"])
}

func TestLogin(t *testing.T) {
	assert.True(t, Login("admin@example.com", "s3cret!!").OK())

	r := Login("admin", "short")
	assert.Equal(t, "must be a valid email address", r.Fields["email"])
	assert.Equal(t, "must contain at least 7 characters", r.Fields["password"])
}

func TestHostnameRuleIsRegistered(t *testing.T) {
	assert.NotPanics(t, func() { newValidator() })

	p := validPublisher()
	p.DomainName = "no_tld"
	r := Publisher(p)
	require.False(t, r.OK())
	assert.Equal(t, "must be a valid domain name (e.g. example.com)", r.Fields["domainName"])
}
