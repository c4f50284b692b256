package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkdesk/internal/cache"
	"linkdesk/internal/domain"
	"linkdesk/internal/metrics"
	"linkdesk/internal/storage"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Select(ctx context.Context, table, orderBy string) ([]storage.Row, error) {
	args := m.Called(ctx, table, orderBy)
	rows, _ := args.Get(0).([]storage.Row)
	return rows, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, table string, row storage.Row) (storage.Row, error) {
	args := m.Called(ctx, table, row)
	out, _ := args.Get(0).(storage.Row)
	return out, args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, table, id string, row storage.Row) (storage.Row, error) {
	args := m.Called(ctx, table, id, row)
	out, _ := args.Get(0).(storage.Row)
	return out, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, table, id string) error {
	return m.Called(ctx, table, id).Error(0)
}

func (m *mockStore) Close() error { return nil }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func domainRows() []storage.Row {
	return []storage.Row{
		{"id": "1", "name": "alpha.com", "niches": "tech,finance", "keywords": "seo", "archived": false, "notes": ""},
		{"id": "2", "name": "beta.com", "niches": "health", "keywords": "diet,food", "archived": true, "notes": "old"},
	}
}

func newDomainRepo(store storage.Store, clk *clock) *Repository[domain.Domain] {
	c := cache.New[[]domain.Domain](5*time.Minute, cache.WithClock(clk.Now))
	return NewDomains(store, c, metrics.Noop(), quietLogger())
}

func TestFetchAll_ServesFromCacheWithinTTL(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil).Once()
	clk := &clock{now: time.Unix(1000, 0)}
	repo := newDomainRepo(store, clk)

	first, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "alpha.com", first[0].Name)
	assert.Equal(t, domain.Set{"tech", "finance"}, first[0].Niches)
	assert.True(t, first[1].Archived)

	clk.now = clk.now.Add(4 * time.Minute)
	second, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	store.AssertNumberOfCalls(t, "Select", 1)
}

func TestFetchAll_RefetchesAfterExpiry(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil)
	clk := &clock{now: time.Unix(1000, 0)}
	repo := newDomainRepo(store, clk)

	_, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)
	clk.now = clk.now.Add(5 * time.Minute)
	_, err = repo.FetchAll(context.Background(), false)
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "Select", 2)
}

func TestFetchAll_ForceRefreshBypassesCache(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil)
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})

	_, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)
	_, err = repo.FetchAll(context.Background(), true)
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "Select", 2)
}

func TestFetchAll_ErrorLeavesCacheUntouched(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil).Once()
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(nil, errors.New("connection reset")).Once()
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})

	_, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)

	_, err = repo.FetchAll(context.Background(), true)
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "select", storeErr.Op)
	assert.Contains(t, err.Error(), "connection reset")

	cached, err := repo.FetchAll(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	store.AssertNumberOfCalls(t, "Select", 2)
}

func TestMutationsInvalidateCache(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil)
	store.On("Insert", mock.Anything, storage.TableDomains, mock.Anything).
		Return(storage.Row{"id": "3", "name": "gamma.com", "niches": "tech", "keywords": "x"}, nil)
	store.On("Update", mock.Anything, storage.TableDomains, "3", mock.Anything).
		Return(storage.Row{"id": "3", "name": "gamma.com", "niches": "tech", "keywords": "y"}, nil)
	store.On("Delete", mock.Anything, storage.TableDomains, "3").Return(nil)
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := repo.FetchAll(ctx, false)
	require.NoError(t, err)

	added, err := repo.Add(ctx, domain.Domain{ID: "ignored", Name: "gamma.com", Niches: domain.Set{"tech"}, Keywords: domain.Set{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "3", added.ID)
	_, err = repo.FetchAll(ctx, false)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Select", 2)

	added.Keywords = domain.Set{"y"}
	updated, err := repo.Update(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, domain.Set{"y"}, updated.Keywords)
	_, err = repo.FetchAll(ctx, false)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Select", 3)

	require.NoError(t, repo.Delete(ctx, "3"))
	_, err = repo.FetchAll(ctx, false)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Select", 4)
}

func TestAdd_FailureKeepsCache(t *testing.T) {
	store := &mockStore{}
	store.On("Select", mock.Anything, storage.TableDomains, "name").Return(domainRows(), nil)
	store.On("Insert", mock.Anything, storage.TableDomains, mock.Anything).Return(nil, errors.New("permission denied"))
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := repo.FetchAll(ctx, false)
	require.NoError(t, err)

	_, err = repo.Add(ctx, domain.Domain{Name: "gamma.com"})
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "insert", storeErr.Op)

	_, err = repo.FetchAll(ctx, false)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Select", 1)
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	store := &mockStore{}
	store.On("Update", mock.Anything, storage.TableDomains, "404", mock.Anything).Return(nil, storage.ErrNotFound)
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})

	_, err := repo.Update(context.Background(), domain.Domain{ID: "404", Name: "gone.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestUpdate_EmptyIDIsNotFound(t *testing.T) {
	store := &mockStore{}
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})

	_, err := repo.Update(context.Background(), domain.Domain{Name: "x.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// blockingStore holds the first Select open, after it has read its rows,
// until release is closed.
type blockingStore struct {
	storage.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) Select(ctx context.Context, table, orderBy string) ([]storage.Row, error) {
	rows, err := s.Store.Select(ctx, table, orderBy)
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return rows, err
}

func TestFetchAll_ReadOverlappingWriteIsNotCached(t *testing.T) {
	badger, err := storage.NewBadgerStore("", quietLogger())
	require.NoError(t, err)
	defer badger.Close()

	store := &blockingStore{Store: badger, entered: make(chan struct{}), release: make(chan struct{})}
	repo := NewDomains(store, nil, nil, quietLogger())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := repo.FetchAll(ctx, false)
		done <- err
	}()
	<-store.entered

	_, err = repo.Add(ctx, domain.Domain{Name: "late.com", Niches: domain.Set{"tech"}, Keywords: domain.Set{"k"}})
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	all, err := repo.FetchAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1, "the list read before the insert must not be served from cache")
	assert.Equal(t, "late.com", all[0].Name)
}

// newPatchRecorder serves PostgREST PATCH requests, echoing the body back as
// the updated row and recording it in sent.
func newPatchRecorder(t *testing.T, sent *map[string]any) storage.Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.1", r.URL.Query().Get("id"))
		body := map[string]any{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*sent = body

		out := map[string]any{"id": "1"}
		for k, v := range body {
			out[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode([]map[string]any{out}))
	}))
	t.Cleanup(srv.Close)
	return storage.NewRESTStore(srv.URL, "anon-key", srv.Client(), quietLogger())
}

func TestUpdate_ClearedFieldsAreSentAsNull(t *testing.T) {
	var sent map[string]any
	store := newPatchRecorder(t, &sent)
	ctx := context.Background()

	domains := NewDomains(store, nil, nil, quietLogger())
	updated, err := domains.Update(ctx, domain.Domain{ID: "1", Name: "x.com", Niches: domain.Set{"a"}, Keywords: domain.Set{"k"}})
	require.NoError(t, err)
	assert.Nil(t, updated.SEO)
	seo, present := sent["seoMetricsRequirements"]
	assert.True(t, present, "a cleared SEO block must be sent so the PATCH overwrites it")
	assert.Nil(t, seo)
	_, hasID := sent["id"]
	assert.False(t, hasID)

	publishers := NewPublishers(store, nil, nil, quietLogger())
	pub, err := publishers.Update(ctx, domain.Publisher{ID: "1", DomainName: "news.example.org", Niche: domain.Set{"tech"}})
	require.NoError(t, err)
	assert.True(t, pub.MetricsLastUpdate.IsZero())
	stamp, present := sent["metricsLastUpdate"]
	assert.True(t, present, "a cleared metrics date must be sent so the PATCH overwrites it")
	assert.Nil(t, stamp)
}

func TestInsertRowShape(t *testing.T) {
	store := &mockStore{}
	var sent storage.Row
	store.On("Insert", mock.Anything, storage.TableDomains, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(storage.Row) }).
		Return(storage.Row{"id": "9", "name": "x.com", "niches": "a,b", "keywords": "k"}, nil)
	repo := newDomainRepo(store, &clock{now: time.Unix(1000, 0)})

	_, err := repo.Add(context.Background(), domain.Domain{
		Name:     "x.com",
		Niches:   domain.Set{"a", "b"},
		Keywords: domain.Set{"k"},
		SEO:      &domain.SEORequirements{MinDomainRating: domain.Float(30)},
	})
	require.NoError(t, err)

	_, hasID := sent["id"]
	assert.False(t, hasID)
	assert.Equal(t, "a,b", sent["niches"])
	assert.Equal(t, "k", sent["keywords"])
	seo, ok := sent["seoMetricsRequirements"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(30), seo["minDomainRating"])
}

func TestPublisherRoundTripThroughBadger(t *testing.T) {
	store, err := storage.NewBadgerStore("", quietLogger())
	require.NoError(t, err)
	defer store.Close()

	repo := NewPublishers(store, nil, nil, quietLogger())
	ctx := context.Background()
	updatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	added, err := repo.Add(ctx, domain.Publisher{
		DomainName:        "news.example.org",
		Niche:             domain.Set{"tech", "finance"},
		DomainRating:      55,
		DomainTraffic:     12000,
		TrafficLocation:   "US",
		Currency:          "USD",
		GuestPostPrice:    120,
		MetricsLastUpdate: updatedAt,
		ContactName:       "Kim",
		ContactEmail:      "kim@example.org",
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)

	all, err := repo.FetchAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, domain.Set{"tech", "finance"}, got.Niche)
	assert.Equal(t, float64(55), got.DomainRating)
	assert.True(t, updatedAt.Equal(got.MetricsLastUpdate))
	assert.Equal(t, "kim@example.org", got.ContactEmail)
}

func TestParseTimestamp(t *testing.T) {
	for _, in := range []string{"2024-03-01", "2024-03-01T00:00:00Z", "2024-03-01 00:00:00", "2024-03-01T00:00:00.000000"} {
		got, err := parseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(got), in)
	}

	zero, err := parseTimestamp("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}
