package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

const rodPageTimeout = 30 * time.Second

// RodScraper renders pages in a headless browser, for sites whose metadata is
// only present after scripts run.
type RodScraper struct {
	log logrus.FieldLogger
}

// NewRodScraper creates a new browser-backed scraper. A browser is launched per call.
func NewRodScraper(logger logrus.FieldLogger) *RodScraper {
	return &RodScraper{
		log: logger.WithFields(logrus.Fields{"component": "scraper", "backend": BackendRod}),
	}
}

// ScrapeMetadata fetches the title and description using rod.
func (s *RodScraper) ScrapeMetadata(ctx context.Context, url string) (title string, description string, err error) {
	log := s.log.WithField("url", url)
	log.Debug("Attempting to scrape metadata")

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return "", "", errors.New("rod browser dependency not found")
	}
	controlURL, err := launcher.New().Bin(path).Launch()
	if err != nil {
		return "", "", fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return "", "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Error closing rod browser instance")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return "", "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Error closing rod page")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, rodPageTimeout)
	defer cancel()
	page = page.Context(pageCtx)

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Scraping timed out")
			return "", "", fmt.Errorf("scraping timed out for %s: %w", url, pageCtx.Err())
		}
		log.WithError(err).Error("Failed to wait for page load")
		return "", "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	if el, findErr := page.Element("title"); findErr == nil {
		if text, textErr := el.Text(); textErr == nil {
			title = strings.TrimSpace(text)
		}
	} else {
		log.WithError(findErr).Debug("Could not find title element")
	}

	for _, selector := range descSelectors {
		el, findErr := page.Element(selector)
		if findErr != nil {
			continue
		}
		content, attrErr := el.Attribute("content")
		if attrErr != nil || content == nil {
			continue
		}
		if description = strings.TrimSpace(*content); description != "" {
			break
		}
	}

	log.WithField("title", title).Debug("Metadata scraping completed")
	return title, description, nil
}
