package scraper

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/domain"
)

// ErrInvalidHost is returned for names that are not host names.
var ErrInvalidHost = errors.New("invalid host name")

// Preview is the compact site card shown next to a domain name.
type Preview struct {
	Host        string `json:"host"`
	FaviconURL  string `json:"faviconUrl"`
	Initials    string `json:"initials"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Previewer builds site previews.
type Previewer struct {
	scraper Scraper
	log     logrus.FieldLogger
}

// NewPreviewer returns a previewer. A nil scraper yields previews without title and description.
func NewPreviewer(s Scraper, logger logrus.FieldLogger) *Previewer {
	return &Previewer{scraper: s, log: logger.WithField("component", "preview")}
}

// Preview returns the card for host. Scrape failures are logged and leave
// Title and Description empty.
func (p *Previewer) Preview(ctx context.Context, host string) (Preview, error) {
	host = domain.NormalizeHost(host)
	if !domain.IsValidHost(host) {
		return Preview{}, ErrInvalidHost
	}
	out := Preview{
		Host:       host,
		FaviconURL: domain.FaviconURL(host),
		Initials:   domain.Initials(host),
	}
	if p.scraper == nil {
		return out, nil
	}

	title, description, err := p.scraper.ScrapeMetadata(ctx, "https://"+host)
	if err != nil {
		p.log.WithError(err).WithField("host", host).Warn("Preview scrape failed")
		return out, nil
	}
	out.Title = title
	out.Description = description
	return out, nil
}
