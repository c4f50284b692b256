package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultRESTTimeout = 15 * time.Second

// RESTStore implements Store against a hosted backend exposing the PostgREST
// dialect under /rest/v1.
type RESTStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logrus.FieldLogger
}

// RESTError is a non-2xx response from the hosted backend.
type RESTError struct {
	Status  int
	Message string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// NewRESTStore returns a store for the project at baseURL.
func NewRESTStore(baseURL, apiKey string, client *http.Client, logger logrus.FieldLogger) *RESTStore {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTTimeout}
	}
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		log:     logger.WithField("component", "store"),
	}
}

// Close is a no-op; the HTTP client holds no exclusive resources.
func (s *RESTStore) Close() error { return nil }

// Select issues GET /rest/v1/{table}?select=*&order={orderBy}.asc. The server
// orders case-sensitively, so rows are re-sorted the way the other backends sort.
func (s *RESTStore) Select(ctx context.Context, table, orderBy string) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q := url.Values{"select": {"*"}}
	if orderBy != "" {
		q.Set("order", orderBy+".asc")
	}
	var rows []Row
	if err := s.do(ctx, http.MethodGet, table, q, nil, &rows); err != nil {
		s.log.WithError(err).WithField("table", table).Error("Failed to select rows")
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	if rows == nil {
		rows = make([]Row, 0)
	}
	sortRows(rows, orderBy)
	return rows, nil
}

// Insert issues POST /rest/v1/{table} and returns the stored representation.
func (s *RESTStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var rows []Row
	if err := s.do(ctx, http.MethodPost, table, nil, withoutID(row), &rows); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert %s: empty response", table)
	}
	return rows[0], nil
}

// Update issues PATCH /rest/v1/{table}?id=eq.{id}.
func (s *RESTStore) Update(ctx context.Context, table, id string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var rows []Row
	q := url.Values{"id": {"eq." + id}}
	if err := s.do(ctx, http.MethodPatch, table, q, withoutID(row), &rows); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Delete issues DELETE /rest/v1/{table}?id=eq.{id}.
func (s *RESTStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	q := url.Values{"id": {"eq." + id}}
	if err := s.do(ctx, http.MethodDelete, table, q, nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

func (s *RESTStore) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	endpoint := s.baseURL + "/rest/v1/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodDelete {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRESTError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeRESTError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(data, &payload)

	msg := firstNonEmpty(payload.Message, payload.ErrorDescription, payload.Msg, payload.Error, strings.TrimSpace(string(data)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &RESTError{Status: resp.StatusCode, Message: msg}
}

// DecodeRESTError is exported for the auth client, which talks to the same backend.
func DecodeRESTError(resp *http.Response) error { return decodeRESTError(resp) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
