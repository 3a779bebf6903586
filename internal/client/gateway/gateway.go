// Package gateway wraps outbound API calls with credential handling: it
// attaches the current bearer token, classifies failures, and transparently
// repairs an expired credential. However many concurrent requests hit the
// expiry, only one refresh call goes to the backend; the request that
// triggered it replays first and everyone queued behind it replays with the
// new credential once the refresh settles.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/unicampus-app/unicampus/internal/common"
	"github.com/unicampus-app/unicampus/internal/logging"
)

const (
	refreshPath = "/auth/refresh-token"

	// expirySkew is subtracted from the token's exp so a request never
	// leaves with a credential about to die mid-flight.
	expirySkew = 5 * time.Minute

	maxBodySize = 4 << 20
)

// CredentialStore is the slice of the secure store the gateway needs. The
// gateway is the only component allowed to mutate credential state.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}

type refreshOutcome struct {
	token string
	err   error
}

// Gateway owns the shared credential and the refresh-in-progress state.
type Gateway struct {
	baseURL        string
	httpClient     *http.Client
	store          CredentialStore
	log            logging.Logger
	refreshTimeout time.Duration

	// onSignOut routes the application to the sign-in entry point after an
	// irrecoverable auth failure. Optional.
	onSignOut func()

	mu         sync.Mutex
	refreshing bool
	pending    []chan refreshOutcome
}

// New builds a Gateway talking to baseURL. requestTimeout bounds every
// regular call, refreshTimeout bounds a credential refresh; when the latter
// fires the refresh counts as failed and the queue is released.
func New(baseURL string, store CredentialStore, log logging.Logger, requestTimeout, refreshTimeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: requestTimeout},
		store:          store,
		log:            log.With("component", "gateway"),
		refreshTimeout: refreshTimeout,
	}
}

// OnSignOut registers the forced sign-out hook. Must be called before the
// gateway is shared between goroutines.
func (g *Gateway) OnSignOut(fn func()) {
	g.onSignOut = fn
}

// Send issues the request with the current credential attached. A response
// classified as unauthorized triggers the refresh-and-replay flow; every
// other failure class is returned as a typed error without touching the
// credential, and is never retried automatically.
func (g *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	token, err := g.store.Get(ctx, common.TokenKey)
	if err != nil {
		return nil, err
	}

	resp, err := g.do(ctx, req, token)
	if err != nil {
		return nil, err
	}
	// A rejection of a request that carried no credential cannot be
	// repaired by refreshing; it surfaces as plain Unauthorized (a wrong
	// password on login, typically).
	if resp.StatusCode != http.StatusUnauthorized || token == "" {
		return finalize(resp)
	}

	return g.recover(ctx, req)
}

// CurrentUserID returns the signed-in user's id, or "" when signed out.
func (g *Gateway) CurrentUserID(ctx context.Context) (string, error) {
	return g.store.Get(ctx, common.UserIDKey)
}

// SaveSession persists a fresh credential set after a successful login.
// All three values land atomically or not at all.
func (g *Gateway) SaveSession(ctx context.Context, token, sessionID, userID string) error {
	return g.store.SetMany(ctx, map[string]string{
		common.TokenKey:     token,
		common.SessionIDKey: sessionID,
		common.UserIDKey:    userID,
	})
}

// HasValidCredential reports whether a stored token exists and its embedded
// expiry (with skew) is still in the future. No server round-trip.
func (g *Gateway) HasValidCredential(ctx context.Context) bool {
	token, err := g.store.Get(ctx, common.TokenKey)
	if err != nil || token == "" {
		return false
	}
	return credentialValid(token, time.Now())
}

// ForceLogout wipes all persisted credential state and fires the sign-out
// hook.
func (g *Gateway) ForceLogout(ctx context.Context) error {
	err := g.store.Clear(ctx)
	if g.onSignOut != nil {
		g.onSignOut()
	}
	return err
}

func credentialValid(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.After(now.Add(expirySkew))
}

// recover handles an unauthorized response: it either starts the single
// refresh or queues behind the one already running. Exactly one of the two.
func (g *Gateway) recover(ctx context.Context, req Request) (*Response, error) {
	g.mu.Lock()
	if g.refreshing {
		ch := make(chan refreshOutcome, 1)
		g.pending = append(g.pending, ch)
		g.mu.Unlock()

		g.log.Debug(ctx, "request queued behind refresh", "op", "gateway.send", "path", req.Path)

		select {
		case out := <-ch:
			if out.err != nil {
				return nil, &APIError{Message: "session expired, sign in again", kind: common.ErrAuthExpired}
			}
			return g.replay(ctx, req, out.token)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	g.refreshing = true
	g.mu.Unlock()

	token, err := g.refresh(ctx)
	if err != nil {
		// Irrecoverable: wipe credentials, reject the whole queue, route
		// the app to sign-in.
		_ = g.store.Clear(context.WithoutCancel(ctx))
		g.settle(refreshOutcome{err: err})
		g.log.Warn(ctx, "refresh failed", "op", "gateway.refresh", "outcome", "expired", "error", err)
		if g.onSignOut != nil {
			g.onSignOut()
		}
		return nil, &APIError{Message: "session expired, sign in again", kind: common.ErrAuthExpired}
	}

	// The refreshed token works regardless of whether it could be
	// persisted; failing the queue here would sign the user out while a
	// usable credential is in hand. The stale stored token just means one
	// extra refresh on the next start.
	if err := g.store.Set(ctx, common.TokenKey, token); err != nil {
		g.log.Warn(ctx, "persisting refreshed credential failed", "op", "gateway.refresh", "error", err)
	}

	g.log.Info(ctx, "credential refreshed", "op", "gateway.refresh", "outcome", "ok")

	// The originator replays before anyone queued behind it is released.
	resp, replayErr := g.replay(ctx, req, token)
	g.settle(refreshOutcome{token: token})
	return resp, replayErr
}

// replay reissues the original request exactly once with the new
// credential. A second unauthorized answer is a hard failure, never
// re-queued.
func (g *Gateway) replay(ctx context.Context, req Request, token string) (*Response, error) {
	resp, err := g.do(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: "request rejected with a fresh credential",
			kind:    common.ErrAuthExpired,
		}
	}
	return finalize(resp)
}

// settle releases every pending request with the refresh outcome. Each
// channel is buffered, so a caller that already gave up (context cancelled)
// still settles without blocking the drain.
func (g *Gateway) settle(out refreshOutcome) {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, ch := range pending {
		ch <- out
	}
}

// refresh requests a new credential using the stored session id. It runs on
// a context detached from the originator's cancellation with a bounded
// timeout, so a caller hanging up cannot strand the queue.
func (g *Gateway) refresh(ctx context.Context) (string, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	sessionID, err := g.store.Get(rctx, common.SessionIDKey)
	if err != nil {
		return "", err
	}
	if sessionID == "" {
		return "", errors.New("no session id stored")
	}

	resp, err := g.do(rctx, Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		Body:   map[string]string{"sessionId": sessionID},
	}, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			Status:  resp.StatusCode,
			Message: messageFrom(resp.Body, resp.StatusCode),
			kind:    classifyStatus(resp.StatusCode),
		}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", errors.New("refresh response carried no token")
	}
	return payload.Token, nil
}

// do performs one HTTP exchange. Transport-level failures come back as
// ErrNetworkUnavailable; status classification is left to the caller.
func (g *Gateway) do(ctx context.Context, req Request, token string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	u := g.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-Id", requestID)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.log.Debug(ctx, "request failed", "op", "gateway.do", "outcome", "network",
			"method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, &APIError{Message: "server unreachable, check your connection", kind: common.ErrNetworkUnavailable}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, &APIError{Message: "server unreachable, check your connection", kind: common.ErrNetworkUnavailable}
	}

	g.log.Debug(ctx, "request done", "op", "gateway.do", "outcome", "ok",
		"method", req.Method, "path", req.Path, "status", httpResp.StatusCode, "request_id", requestID)

	return &Response{StatusCode: httpResp.StatusCode, Body: respBody}, nil
}

// finalize turns a raw exchange into the caller-facing result: 2xx passes
// through unchanged, anything else becomes a typed error carrying the
// backend's message.
func finalize(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	return nil, &APIError{
		Status:  resp.StatusCode,
		Message: messageFrom(resp.Body, resp.StatusCode),
		kind:    classifyStatus(resp.StatusCode),
	}
}
