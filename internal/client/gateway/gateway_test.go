package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/unicampus-app/unicampus/internal/common"
	"github.com/unicampus-app/unicampus/internal/logging"
)

// ---- fakes ----

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]string)}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) SetMany(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.m[k] = v
	}
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]string)
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// failingSetStore fails every Set to simulate an unwritable store.
type failingSetStore struct {
	*memStore
	setErr error
}

func (s *failingSetStore) Set(ctx context.Context, key string, value string) error {
	return s.setErr
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newGateway(t *testing.T, baseURL string, store CredentialStore) *Gateway {
	t.Helper()
	return New(baseURL, store, testLogger(), 5*time.Second, 2*time.Second)
}

// backend is a stub university API: /data answers 200 for the token it
// currently considers valid and 401 otherwise; /auth/refresh-token rotates
// the valid token and counts calls.
type backend struct {
	mu           sync.Mutex
	validToken   string
	nextToken    string
	refreshCalls int32
	refreshFail  bool
	refreshDelay time.Duration
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		valid := "Bearer " + b.validToken
		b.mu.Unlock()
		if r.Header.Get("Authorization") != valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	})

	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.refreshCalls, 1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		if b.refreshFail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"session revoked"}`))
			return
		}
		var body struct {
			SessionID string `json:"sessionId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.SessionID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.validToken = b.nextToken
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"token": b.nextToken})
	})

	return mux
}

func (b *backend) refreshes() int32 {
	return atomic.LoadInt32(&b.refreshCalls)
}

func seedSession(t *testing.T, store *memStore, token string) {
	t.Helper()
	require.NoError(t, store.SetMany(context.Background(), map[string]string{
		common.TokenKey:     token,
		common.SessionIDKey: "sess-1",
		common.UserIDKey:    "user-1",
	}))
}

// ---- tests ----

func TestSend_ValidCredential_NoRefresh(t *testing.T) {
	b := &backend{validToken: "tok-valid"}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok-valid")
	g := newGateway(t, srv.URL, store)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
			if err == nil && resp.StatusCode != http.StatusOK {
				err = errors.New("unexpected status")
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 0, b.refreshes())
}

func TestSend_ExpiredCredential_SingleRefresh(t *testing.T) {
	b := &backend{validToken: "tok-new", nextToken: "tok-new", refreshDelay: 150 * time.Millisecond}
	// stored token is stale, so every first attempt 401s
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok-stale")
	g := newGateway(t, srv.URL, store)

	// the backend only accepts tok-new; make /data reject the stale one
	b.mu.Lock()
	b.validToken = "tok-new"
	b.mu.Unlock()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 1, b.refreshes())

	got, err := store.Get(context.Background(), common.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "tok-new", got)
}

func TestSend_RefreshFailure_AllExpireAndStoreCleared(t *testing.T) {
	b := &backend{validToken: "tok-new", refreshFail: true, refreshDelay: 100 * time.Millisecond}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok-stale")
	g := newGateway(t, srv.URL, store)

	var signedOut atomic.Int32
	g.OnSignOut(func() { signedOut.Add(1) })

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.ErrorIs(t, err, common.ErrAuthExpired, "request %d", i)
	}
	require.Equal(t, 0, store.len())
	require.GreaterOrEqual(t, signedOut.Load(), int32(1))
}

func TestSend_SecondUnauthorizedAfterRefreshIsHardFailure(t *testing.T) {
	// refresh succeeds but the backend keeps rejecting: the request must
	// surface a terminal error instead of looping.
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-new"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok-stale")
	g := newGateway(t, srv.URL, store)

	_, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.ErrorIs(t, err, common.ErrAuthExpired)
	require.EqualValues(t, 1, refreshes.Load())
}

func TestSend_NoCredential_UnauthorizedNotRefreshed(t *testing.T) {
	// A 401 on a request that carried no token (a wrong password on
	// login, typically) is a plain rejection; triggering the refresh flow
	// would replace the backend's message with a session-expired error.
	b := &backend{validToken: "tok-valid", nextToken: "tok-new"}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := newMemStore() // signed out, nothing seeded
	g := newGateway(t, srv.URL, store)

	var signedOut atomic.Int32
	g.OnSignOut(func() { signedOut.Add(1) })

	_, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.NotErrorIs(t, err, common.ErrAuthExpired)
	require.EqualValues(t, 0, b.refreshes())
	require.EqualValues(t, 0, signedOut.Load())
}

func TestSend_RefreshPersistFailureStillReplays(t *testing.T) {
	// When the refreshed token cannot be written to the store, the request
	// still replays with the in-memory token and nobody is signed out.
	b := &backend{validToken: "tok-current", nextToken: "tok-new"}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := &failingSetStore{memStore: newMemStore(), setErr: errors.New("disk full")}
	seedSession(t, store.memStore, "tok-stale")
	g := newGateway(t, srv.URL, store)

	var signedOut atomic.Int32
	g.OnSignOut(func() { signedOut.Add(1) })

	resp, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, b.refreshes())
	require.EqualValues(t, 0, signedOut.Load())

	// The stale token stays in the store; the next process start just
	// refreshes again.
	tok, err := store.memStore.Get(context.Background(), common.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "tok-stale", tok)
}

func TestSend_OtherFailureClasses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such endpoint"}`))
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"missing field"}`))
	})
	mux.HandleFunc("/secret", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok")
	g := newGateway(t, srv.URL, store)
	ctx := context.Background()

	tests := []struct {
		path string
		want error
	}{
		{"/missing", common.ErrNotFound},
		{"/boom", common.ErrServerError},
		{"/bad", common.ErrBadRequest},
		{"/secret", common.ErrForbidden},
	}

	for _, tt := range tests {
		_, err := g.Send(ctx, Request{Method: http.MethodGet, Path: tt.path})
		require.ErrorIs(t, err, tt.want, "path %s", tt.path)
	}

	// credential untouched, no refresh attempted
	got, err := store.Get(ctx, common.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "tok", got)
}

func TestSend_ErrorMessageSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"group id is required"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := newGateway(t, srv.URL, newMemStore())

	_, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/bad"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "group id is required", apiErr.Message)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSend_NetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := newGateway(t, url, newMemStore())

	_, err := g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
	require.ErrorIs(t, err, common.ErrNetworkUnavailable)
}

func TestSend_RefreshTimeoutReleasesQueue(t *testing.T) {
	b := &backend{validToken: "tok-new", nextToken: "tok-new", refreshDelay: 5 * time.Second}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	store := newMemStore()
	seedSession(t, store, "tok-stale")
	g := New(srv.URL, store, testLogger(), 10*time.Second, 300*time.Millisecond)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Send(context.Background(), Request{Method: http.MethodGet, Path: "/data"})
		}(i)
	}
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("queued requests were not released after the refresh timeout")
	}

	for i, err := range errs {
		require.ErrorIs(t, err, common.ErrAuthExpired, "request %d", i)
	}
}

func TestSaveSession_CurrentUserID_ForceLogout(t *testing.T) {
	store := newMemStore()
	g := newGateway(t, "http://unused", store)
	ctx := context.Background()

	var signedOut bool
	g.OnSignOut(func() { signedOut = true })

	require.NoError(t, g.SaveSession(ctx, "tok", "sess", "user-42"))

	id, err := g.CurrentUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-42", id)

	require.NoError(t, g.ForceLogout(ctx))
	require.True(t, signedOut)
	require.Equal(t, 0, store.len())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "user-1",
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestHasValidCredential(t *testing.T) {
	store := newMemStore()
	g := newGateway(t, "http://unused", store)
	ctx := context.Background()

	// nothing stored
	require.False(t, g.HasValidCredential(ctx))

	// fresh token, expiry far enough beyond the skew
	require.NoError(t, store.Set(ctx, common.TokenKey, signedToken(t, time.Now().Add(time.Hour))))
	require.True(t, g.HasValidCredential(ctx))

	// expired token
	require.NoError(t, store.Set(ctx, common.TokenKey, signedToken(t, time.Now().Add(-time.Hour))))
	require.False(t, g.HasValidCredential(ctx))

	// expiring within the skew window counts as expired
	require.NoError(t, store.Set(ctx, common.TokenKey, signedToken(t, time.Now().Add(time.Minute))))
	require.False(t, g.HasValidCredential(ctx))

	// garbage
	require.NoError(t, store.Set(ctx, common.TokenKey, "not-a-jwt"))
	require.False(t, g.HasValidCredential(ctx))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, common.ErrUnauthorized},
		{http.StatusForbidden, common.ErrForbidden},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusInternalServerError, common.ErrServerError},
		{http.StatusBadGateway, common.ErrServerError},
		{http.StatusBadRequest, common.ErrBadRequest},
		{http.StatusTeapot, common.ErrBadRequest},
	}
	for _, tt := range tests {
		require.ErrorIs(t, classifyStatus(tt.status), tt.want, "status %d", tt.status)
	}
}

func TestMessageFrom(t *testing.T) {
	require.Equal(t, "db down", messageFrom([]byte(`{"message":"db down"}`), 500))
	require.Equal(t, "oops", messageFrom([]byte(`{"error":"oops"}`), 400))
	require.Equal(t, "Internal Server Error", messageFrom([]byte(`not json`), 500))
	require.Equal(t, "Not Found", messageFrom(nil, 404))
}
