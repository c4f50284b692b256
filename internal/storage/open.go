package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Backend names, derived from the store URL scheme.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Backend returns the backend addressed by storeURL.
func Backend(storeURL string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(storeURL))
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return BackendREST, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(lower, "badger:"):
		return BackendBadger, nil
	default:
		return "", fmt.Errorf("unsupported store URL %q (want http(s)://, postgres:// or badger:)", storeURL)
	}
}

// badgerPath maps "badger://<path>" to a directory and "badger:memory" to "".
func badgerPath(storeURL string) string {
	rest := strings.TrimPrefix(strings.TrimSpace(storeURL), "badger:")
	if rest == "memory" {
		return ""
	}
	return strings.TrimPrefix(rest, "//")
}

// Open connects to the store addressed by storeURL.
func Open(ctx context.Context, storeURL, apiKey string, logger logrus.FieldLogger) (Store, error) {
	backend, err := Backend(storeURL)
	if err != nil {
		return nil, err
	}
	logger.WithField("backend", backend).Info("Opening store")

	switch backend {
	case BackendREST:
		return NewRESTStore(storeURL, apiKey, nil, logger), nil
	case BackendPostgres:
		return OpenPostgres(ctx, storeURL, logger)
	default:
		return NewBadgerStore(badgerPath(storeURL), logger)
	}
}
