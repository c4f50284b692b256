package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHTTPScraper_ScrapeMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "linkdesk")
		_, _ = w.Write([]byte(`<html><head>
<title>  Example News </title>
<meta property="og:description" content="Fallback description">
<meta name="description" content=" Daily tech news ">
</head><body></body></html>`))
	}))
	defer srv.Close()

	s := NewHTTPScraper(srv.Client(), quietLogger())
	title, desc, err := s.ScrapeMetadata(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example News", title)
	assert.Equal(t, "Daily tech news", desc)
}

func TestHTTPScraper_FallsBackToOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description">
</head></html>`))
	}))
	defer srv.Close()

	title, desc, err := NewHTTPScraper(srv.Client(), quietLogger()).ScrapeMetadata(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "OG Title", title)
	assert.Equal(t, "OG description", desc)
}

func TestHTTPScraper_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := NewHTTPScraper(srv.Client(), quietLogger()).ScrapeMetadata(context.Background(), srv.URL)
	assert.Error(t, err)
}

type stubScraper struct {
	url         string
	title, desc string
	err         error
}

func (s *stubScraper) ScrapeMetadata(_ context.Context, url string) (string, string, error) {
	s.url = url
	return s.title, s.desc, s.err
}

func TestPreviewer_Preview(t *testing.T) {
	stub := &stubScraper{title: "Example", desc: "About"}
	p := NewPreviewer(stub, quietLogger())

	got, err := p.Preview(context.Background(), "https://www.Example.com/blog")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", stub.url)
	assert.Equal(t, Preview{
		Host:        "example.com",
		FaviconURL:  "https://www.google.com/s2/favicons?domain=example.com&sz=32",
		Initials:    "EX",
		Title:       "Example",
		Description: "About",
	}, got)
}

func TestPreviewer_ScrapeFailureDegrades(t *testing.T) {
	p := NewPreviewer(&stubScraper{err: errors.New("timeout")}, quietLogger())

	got, err := p.Preview(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "EX", got.Initials)
	assert.Empty(t, got.Title)
}

func TestPreviewer_InvalidHost(t *testing.T) {
	p := NewPreviewer(nil, quietLogger())
	_, err := p.Preview(context.Background(), "not a host")
	assert.ErrorIs(t, err, ErrInvalidHost)
}

func TestNew(t *testing.T) {
	s, err := New("", quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &HTTPScraper{}, s)

	s, err = New("ROD", quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &RodScraper{}, s)

	_, err = New("curl", quietLogger())
	assert.Error(t, err)
}
