package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

type fakeTokens struct {
	current   string
	refreshes int32
	rejected  []string
}

func (f *fakeTokens) AccessToken(ctx context.Context, tenantID uuid.UUID, p integration.Provider) (string, error) {
	return f.current, nil
}

func (f *fakeTokens) ForceRefresh(ctx context.Context, tenantID uuid.UUID, p integration.Provider, rejected string) (string, error) {
	atomic.AddInt32(&f.refreshes, 1)
	f.rejected = append(f.rejected, rejected)
	f.current = "refreshed"
	return f.current, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestClient(srvURL string, sleeps *sleepRecorder, opts ...ClientOption) *Client {
	opts = append(opts, WithSleep(sleeps.sleep))
	return NewClient(ClientConfig{
		Provider:       integration.ProviderBling,
		BaseURL:        srvURL,
		RetryDelay:     time.Second,
		RateLimitDelay: 2 * time.Second,
	}, zap.NewNop(), opts...)
}

func TestClient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/vendas", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("pagina"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":1}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &sleepRecorder{}, WithTokenSource(&fakeTokens{current: "tok"}))

	var out struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	err := c.DoJSON(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/pedidos/vendas",
		Query:  map[string][]string{"pagina": {"2"}},
	}, &out)
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, int64(1), out.Data[0].ID)
}

func TestClient_RateLimitedThenOK(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(srv.URL, sleeps)

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeps.delays)
}

func TestClient_RateLimitBackoffIsLinearAndBounded(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(srv.URL, sleeps)

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformRateLimited)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}, sleeps.delays)
}

func TestClient_RetryAfterHeader(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(srv.URL, sleeps)

	resp, err := c.Do(context.Background(), &Request{Method: http.MethodDelete, Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []time.Duration{7 * time.Second}, sleeps.delays)
}

func TestClient_UnauthorizedRefreshesExactlyOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("Authorization") != "Bearer refreshed" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{current: "stale"}
	c := newTestClient(srv.URL, &sleepRecorder{}, WithTokenSource(tokens))

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.refreshes))
	assert.Equal(t, []string{"stale"}, tokens.rejected)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_ConcurrentUnauthorizedRefreshOnce(t *testing.T) {
	var tokenCalls int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer api.Close()

	now := time.Now()
	repo := newMemTokenRepo()
	tenant := uuid.New()
	_ = repo.Save(context.Background(), &integration.ProviderToken{
		TenantID: tenant, Provider: integration.ProviderBling,
		AccessToken: "revoked-upstream", RefreshToken: "r0", ExpiresAt: now.Add(time.Hour),
	})
	manager := newTestManager(t, repo, tokenSrv, now)
	c := newTestClient(api.URL, &sleepRecorder{}, WithTokenSource(manager))

	var wg sync.WaitGroup
	wg.Add(6)
	for i := 0; i < 6; i++ {
		go func() {
			defer wg.Done()
			_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x", TenantID: tenant})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
	stored, err := repo.Find(context.Background(), tenant, integration.ProviderBling)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
}

func TestClient_UnauthorizedAfterRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{current: "stale"}
	c := newTestClient(srv.URL, &sleepRecorder{}, WithTokenSource(tokens))

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	assert.ErrorIs(t, err, integration.ErrPlatformAuthFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.refreshes))
}

func TestClient_ServerErrorsRetriedThenFail(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(srv.URL, sleeps)

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps.delays)
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &sleepRecorder{})

	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_StaticTokenHeaderAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_x", r.Header.Get("X-Shopify-Access-Token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(body))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		Provider:    integration.ProviderShopify,
		BaseURL:     srv.URL + "/",
		StaticToken: "shpat_x",
		TokenHeader: "X-Shopify-Access-Token",
	}, zap.NewNop())

	_, err := c.Do(context.Background(), &Request{Method: http.MethodPost, Path: "orders.json", Body: map[string]int{"a": 1}})
	require.NoError(t, err)
}

func TestClient_AbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/nfe.xml", r.URL.Path)
		_, _ = w.Write([]byte("<nfe/>"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Provider: integration.ProviderBling, BaseURL: "http://unused.invalid"}, zap.NewNop())
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: srv.URL + "/files/nfe.xml"})
	require.NoError(t, err)
	assert.Equal(t, "<nfe/>", string(resp.Body))
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &sleepRecorder{})
	var out map[string]any
	err := c.DoJSON(context.Background(), &Request{Method: http.MethodGet, Path: "/x"}, &out)
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, time.Second, retryAfter(h, time.Second))
	h.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(h, time.Second))
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Equal(t, time.Second, retryAfter(h, time.Second))
}
