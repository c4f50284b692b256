// Package scraper fetches page metadata for the site preview shown next to
// domain and publisher names.
package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Scraper defines the interface for fetching metadata from a URL.
type Scraper interface {
	// ScrapeMetadata fetches the title and description for a given URL.
	ScrapeMetadata(ctx context.Context, url string) (title string, description string, err error)
}

// Backend names accepted by New.
const (
	BackendHTTP = "http"
	BackendRod  = "rod"
)

// descSelectors are tried in order for the page description.
var descSelectors = []string{
	`meta[name="description"]`,
	`meta[property="og:description"]`,
}

// New returns the scraper named by backend. An empty name selects BackendHTTP.
func New(backend string, logger logrus.FieldLogger) (Scraper, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendHTTP:
		return NewHTTPScraper(nil, logger), nil
	case BackendRod:
		return NewRodScraper(logger), nil
	default:
		return nil, fmt.Errorf("unknown scraper backend %q", backend)
	}
}
