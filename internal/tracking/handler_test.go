package tracking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/useragent"
)

type handlerFixture struct {
	store   *stubStore
	svc     *Service
	metrics *Metrics
	router  chi.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	store := newStubStore()
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewService(store, testConfig(), WithLogger(log), WithMetrics(metrics))
	allow, err := NewAllowlist("https://sickdaysports.club", []string{"example.com"})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(svc, allow, WithHandlerLogger(log), WithHandlerMetrics(metrics)).Routes(r)
	return &handlerFixture{store: store, svc: svc, metrics: metrics, router: r}
}

func (f *handlerFixture) sent(t *testing.T, typ EmailType) string {
	t.Helper()
	id := mustID(t, typ)
	_, err := f.svc.RecordSent(context.Background(), id, typ, nil)
	require.NoError(t, err)
	return id
}

func (f *handlerFixture) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("User-Agent", "TestMail/1.0")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) records(t *testing.T, status Status) []Record {
	t.Helper()
	all, err := f.store.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	var out []Record
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func clickURL(id, dest string) string {
	return "/tracking/click/" + id + "?destination=" + url.QueryEscape(dest)
}

func TestPixel(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	id := f.sent(t, EmailTypeBeta)

	const n = 3
	for range n {
		rec := f.do(http.MethodGet, "/tracking/pixel/"+id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
		assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
		assert.Equal(t, "0", rec.Header().Get("Expires"))
		assert.Equal(t, PixelGIF(), rec.Body.Bytes())
	}

	opened := f.records(t, StatusOpened)
	require.Len(t, opened, n)
	for _, r := range opened {
		assert.Equal(t, id, r.TrackingID)
		assert.Equal(t, EmailTypeBeta, r.EmailType)
		assert.Equal(t, "TestMail/1.0", r.Metadata[MetaUserAgent])
	}
}

func TestPixelRecordsMailProxy(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	id := f.sent(t, EmailTypeWaitlist)

	req := httptest.NewRequest(http.MethodGet, "/tracking/pixel/"+id, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 5.1; rv:11.0) Gecko Firefox/11.0 (via ggpht.com GoogleImageProxy)")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	opened := f.records(t, StatusOpened)
	require.Len(t, opened, 1)
	assert.Equal(t, useragent.DeviceBot, opened[0].Metadata[MetaDevice])
	assert.Equal(t, useragent.ProxyGmail, opened[0].Metadata[MetaMailProxy])
}

func TestPixelUnknownID(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	for _, id := range []string{mustID(t, EmailTypeWaitlist), "garbage"} {
		rec := f.do(http.MethodGet, "/tracking/pixel/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
	assert.Zero(t, f.store.inserts.Load())
}

func TestPixelFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		id := f.sent(t, EmailTypeBeta)
		f.store.insert = func(context.Context, Record) (Record, error) {
			return Record{}, errors.New("db down")
		}

		rec := f.do(http.MethodGet, "/tracking/pixel/"+id)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, PixelGIF(), rec.Body.Bytes())
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		f.store.findSent = func(context.Context, string) (Record, error) {
			return Record{}, errors.New("db down")
		}

		rec := f.do(http.MethodGet, "/tracking/pixel/"+mustID(t, EmailTypeBeta))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, f.store.inserts.Load())
	})
}

func TestClick(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	id := f.sent(t, EmailTypeWaitlist)
	dest := "https://example.com/x"

	rec := f.do(http.MethodGet, clickURL(id, dest))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, dest, rec.Header().Get("Location"))

	clicked := f.records(t, StatusClicked)
	require.Len(t, clicked, 1)
	assert.Equal(t, dest, clicked[0].Destination())
	assert.Equal(t, EmailTypeWaitlist, clicked[0].EmailType)
}

func TestClickPreservesDestinationExactly(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	id := f.sent(t, EmailTypeBeta)
	dest := "https://sickdaysports.club/beta/next-steps?utm_source=email&ref=a%2Fb#top"

	rec := f.do(http.MethodGet, clickURL(id, dest))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, dest, rec.Header().Get("Location"))
	assert.Equal(t, dest, f.records(t, StatusClicked)[0].Destination())
}

func TestClickMissingDestination(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	known := f.sent(t, EmailTypeBeta)
	before := f.store.inserts.Load()

	for _, target := range []string{
		"/tracking/click/" + known,
		"/tracking/click/" + known + "?destination=",
		"/tracking/click/" + mustID(t, EmailTypeBeta),
		"/tracking/click/garbage",
	} {
		rec := f.do(http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	assert.Equal(t, before, f.store.inserts.Load())
	assert.InDelta(t, 4, testutil.ToFloat64(f.metrics.rejectedClicks.WithLabelValues(reasonMissingDestination)), 0)
}

func TestClickUnknownID(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, clickURL(mustID(t, EmailTypeBeta), "https://example.com/x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Zero(t, f.store.inserts.Load())
}

func TestClickDestinationNotAllowed(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	id := f.sent(t, EmailTypeBeta)
	before := f.store.inserts.Load()

	for _, dest := range []string{"https://evil.example.net/", "javascript:alert(1)", "//evil.com"} {
		rec := f.do(http.MethodGet, clickURL(id, dest))
		assert.Equal(t, http.StatusBadRequest, rec.Code, dest)
		assert.Empty(t, rec.Header().Get("Location"))
	}
	assert.Equal(t, before, f.store.inserts.Load())
}

func TestClickRedirectsOnStoreFailure(t *testing.T) {
	t.Parallel()

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		id := f.sent(t, EmailTypeBeta)
		f.store.insert = func(context.Context, Record) (Record, error) {
			return Record{}, errors.New("db down")
		}

		rec := f.do(http.MethodGet, clickURL(id, "https://example.com/x"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://example.com/x", rec.Header().Get("Location"))
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		f := newHandlerFixture(t)
		f.store.findSent = func(context.Context, string) (Record, error) {
			return Record{}, errors.New("db down")
		}

		rec := f.do(http.MethodGet, clickURL(mustID(t, EmailTypeBeta), "https://example.com/x"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Zero(t, f.store.inserts.Load())
	})
}
