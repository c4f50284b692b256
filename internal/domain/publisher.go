package domain

import (
	"strings"
	"time"
)

// Publisher is a site that sells link placements.
type Publisher struct {
	ID string `json:"id"`

	// DomainName follows the same normalization as Domain.Name.
	DomainName string `json:"domainName" validate:"required,hostname_shape"`
	Niche      Set    `json:"niche" validate:"required,min=1,dive,required"`

	DomainRating    float64 `json:"domainRating" validate:"min=0,max=100"`
	DomainAuthority float64 `json:"domainAuthority" validate:"min=0,max=100"`
	DomainTraffic   float64 `json:"domainTraffic" validate:"min=0"`
	TrafficLocation string  `json:"trafficLocation"`
	SpamScore       float64 `json:"spamScore" validate:"min=0,max=100"`

	// Currency is required whenever one of the prices is positive.
	Currency           string  `json:"currency"`
	LinkInsertionPrice float64 `json:"linkInsertionPrice" validate:"min=0"`
	GuestPostPrice     float64 `json:"guestPostPrice" validate:"min=0"`

	LinkInsertionGuidelines string `json:"linkInsertionGuidelines,omitempty"`
	GuestPostGuidelines     string `json:"guestPostGuidelines,omitempty"`

	MetricsLastUpdate time.Time `json:"metricsLastUpdate"`

	// Notes is required for resellers.
	Notes            string `json:"notes,omitempty"`
	IsReseller       bool   `json:"isReseller"`
	AcceptsGreyNiche bool   `json:"acceptsGreyNiche"`

	ContactName  string `json:"contactName" validate:"required"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
}

// EntityID returns the store id.
func (p Publisher) EntityID() string { return p.ID }

// Normalize canonicalizes the host name, niche set and free-text fields.
func (p *Publisher) Normalize() {
	p.DomainName = NormalizeHost(p.DomainName)
	p.Niche = NewSet(p.Niche...)
	p.TrafficLocation = strings.TrimSpace(p.TrafficLocation)
	p.Currency = strings.TrimSpace(p.Currency)
	p.ContactName = strings.TrimSpace(p.ContactName)
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)
	p.Notes = strings.TrimSpace(p.Notes)
}

// Priced reports whether either placement price is positive.
func (p Publisher) Priced() bool {
	return p.LinkInsertionPrice > 0 || p.GuestPostPrice > 0
}
