package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/cache"
	"linkdesk/internal/domain"
	"linkdesk/internal/metrics"
	"linkdesk/internal/storage"
)

// Sort keys.
const (
	domainOrder    = "name"
	publisherOrder = "domainName"
)

// NewDomains returns the repository for the Domains table, ordered by name.
func NewDomains(store storage.Store, c *cache.TTL[[]domain.Domain], m *metrics.Metrics, logger logrus.FieldLogger) *Repository[domain.Domain] {
	return newRepository(store, storage.TableDomains, domainOrder, c, codec[domain.Domain]{
		toRow:   domainToRow,
		fromRow: domainFromRow,
	}, m, logger)
}

// NewPublishers returns the repository for the Publishers table, ordered by domain name.
func NewPublishers(store storage.Store, c *cache.TTL[[]domain.Publisher], m *metrics.Metrics, logger logrus.FieldLogger) *Repository[domain.Publisher] {
	return newRepository(store, storage.TablePublishers, publisherOrder, c, codec[domain.Publisher]{
		toRow:   publisherToRow,
		fromRow: publisherFromRow,
	}, m, logger)
}

// domainRow is the store shape of a Domain: label sets are comma-delimited.
// Optional fields are written as null when empty so a partial update clears them.
type domainRow struct {
	ID       string                  `json:"id,omitempty"`
	Name     string                  `json:"name"`
	Niches   string                  `json:"niches"`
	Keywords string                  `json:"keywords"`
	Archived bool                    `json:"archived"`
	Notes    string                  `json:"notes"`
	SEO      *domain.SEORequirements `json:"seoMetricsRequirements"`
}

type publisherRow struct {
	ID                      string  `json:"id,omitempty"`
	DomainName              string  `json:"domainName"`
	Niche                   string  `json:"niche"`
	DomainRating            float64 `json:"domainRating"`
	DomainAuthority         float64 `json:"domainAuthority"`
	DomainTraffic           float64 `json:"domainTraffic"`
	TrafficLocation         string  `json:"trafficLocation"`
	SpamScore               float64 `json:"spamScore"`
	Currency                string  `json:"currency"`
	LinkInsertionPrice      float64 `json:"linkInsertionPrice"`
	GuestPostPrice          float64 `json:"guestPostPrice"`
	LinkInsertionGuidelines string  `json:"linkInsertionGuidelines"`
	GuestPostGuidelines     string  `json:"guestPostGuidelines"`
	MetricsLastUpdate       *string `json:"metricsLastUpdate"`
	Notes                   string  `json:"notes"`
	IsReseller              bool    `json:"isReseller"`
	AcceptsGreyNiche        bool    `json:"acceptsGreyNiche"`
	ContactName             string  `json:"contactName"`
	ContactEmail            string  `json:"contactEmail"`
}

func domainToRow(d domain.Domain) (storage.Row, error) {
	return toRow(domainRow{
		ID:       d.ID,
		Name:     d.Name,
		Niches:   d.Niches.String(),
		Keywords: d.Keywords.String(),
		Archived: d.Archived,
		Notes:    d.Notes,
		SEO:      d.SEO,
	})
}

func domainFromRow(row storage.Row) (domain.Domain, error) {
	var r domainRow
	if err := fromRow(row, &r); err != nil {
		return domain.Domain{}, err
	}
	return domain.Domain{
		ID:       r.ID,
		Name:     r.Name,
		Niches:   domain.ParseSet(r.Niches),
		Keywords: domain.ParseSet(r.Keywords),
		Archived: r.Archived,
		Notes:    r.Notes,
		SEO:      r.SEO,
	}, nil
}

func publisherToRow(p domain.Publisher) (storage.Row, error) {
	r := publisherRow{
		ID:                      p.ID,
		DomainName:              p.DomainName,
		Niche:                   p.Niche.String(),
		DomainRating:            p.DomainRating,
		DomainAuthority:         p.DomainAuthority,
		DomainTraffic:           p.DomainTraffic,
		TrafficLocation:         p.TrafficLocation,
		SpamScore:               p.SpamScore,
		Currency:                p.Currency,
		LinkInsertionPrice:      p.LinkInsertionPrice,
		GuestPostPrice:          p.GuestPostPrice,
		LinkInsertionGuidelines: p.LinkInsertionGuidelines,
		GuestPostGuidelines:     p.GuestPostGuidelines,
		Notes:                   p.Notes,
		IsReseller:              p.IsReseller,
		AcceptsGreyNiche:        p.AcceptsGreyNiche,
		ContactName:             p.ContactName,
		ContactEmail:            p.ContactEmail,
	}
	if !p.MetricsLastUpdate.IsZero() {
		stamp := p.MetricsLastUpdate.UTC().Format(time.RFC3339)
		r.MetricsLastUpdate = &stamp
	}
	return toRow(r)
}

func publisherFromRow(row storage.Row) (domain.Publisher, error) {
	var r publisherRow
	if err := fromRow(row, &r); err != nil {
		return domain.Publisher{}, err
	}
	var stamp string
	if r.MetricsLastUpdate != nil {
		stamp = *r.MetricsLastUpdate
	}
	updated, err := parseTimestamp(stamp)
	if err != nil {
		return domain.Publisher{}, fmt.Errorf("publisher %s: metricsLastUpdate: %w", r.ID, err)
	}
	return domain.Publisher{
		ID:                      r.ID,
		DomainName:              r.DomainName,
		Niche:                   domain.ParseSet(r.Niche),
		DomainRating:            r.DomainRating,
		DomainAuthority:         r.DomainAuthority,
		DomainTraffic:           r.DomainTraffic,
		TrafficLocation:         r.TrafficLocation,
		SpamScore:               r.SpamScore,
		Currency:                r.Currency,
		LinkInsertionPrice:      r.LinkInsertionPrice,
		GuestPostPrice:          r.GuestPostPrice,
		LinkInsertionGuidelines: r.LinkInsertionGuidelines,
		GuestPostGuidelines:     r.GuestPostGuidelines,
		MetricsLastUpdate:       updated,
		Notes:                   r.Notes,
		IsReseller:              r.IsReseller,
		AcceptsGreyNiche:        r.AcceptsGreyNiche,
		ContactName:             r.ContactName,
		ContactEmail:            r.ContactEmail,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the formats the hosted backend emits for date and
// timestamp columns. An empty value is the zero time.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func toRow(v any) (storage.Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row storage.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func fromRow(row storage.Row, v any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
