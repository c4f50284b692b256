package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxPageBytes       = 2 << 20
	userAgent          = "Mozilla/5.0 (compatible; linkdesk-preview/1.0)"
)

// HTTPScraper fetches the raw HTML and reads metadata with goquery.
type HTTPScraper struct {
	client *http.Client
	log    logrus.FieldLogger
}

// NewHTTPScraper returns a scraper using client, or a default client with a timeout.
func NewHTTPScraper(client *http.Client, logger logrus.FieldLogger) *HTTPScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPScraper{
		client: client,
		log:    logger.WithFields(logrus.Fields{"component": "scraper", "backend": BackendHTTP}),
	}
}

// ScrapeMetadata fetches url and returns its title and meta description.
func (s *HTTPScraper) ScrapeMetadata(ctx context.Context, url string) (string, string, error) {
	log := s.log.WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("Fetch failed")
		return "", "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			title = strings.TrimSpace(og)
		}
	}

	var description string
	for _, selector := range descSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if description = strings.TrimSpace(content); description != "" {
				break
			}
		}
	}

	log.WithField("title", title).Debug("Metadata scraped")
	return title, description, nil
}
