package services

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/unicampus-app/unicampus/internal/client/gateway"
	"github.com/unicampus-app/unicampus/internal/logging"
)

// fakeSender serves canned responses keyed by request path and records
// every request it sees.
type fakeSender struct {
	responses map[string]*gateway.Response
	errs      map[string]error
	calls     []gateway.Request
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		responses: make(map[string]*gateway.Response),
		errs:      make(map[string]error),
	}
}

func (f *fakeSender) respond(path string, body string) {
	f.responses[path] = &gateway.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func (f *fakeSender) fail(path string, err error) {
	f.errs[path] = err
}

func (f *fakeSender) Send(ctx context.Context, req gateway.Request) (*gateway.Response, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.errs[req.Path]; ok {
		return nil, err
	}
	if resp, ok := f.responses[req.Path]; ok {
		return resp, nil
	}
	return &gateway.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
}

func (f *fakeSender) requested(path string) bool {
	for _, c := range f.calls {
		if c.Path == path {
			return true
		}
	}
	return false
}

// fakeSessionGateway adds credential bookkeeping on top of fakeSender.
type fakeSessionGateway struct {
	*fakeSender

	savedToken     string
	savedSessionID string
	savedUserID    string
	loggedOut      bool
	valid          bool
}

func newFakeSessionGateway() *fakeSessionGateway {
	return &fakeSessionGateway{fakeSender: newFakeSender()}
}

func (f *fakeSessionGateway) SaveSession(ctx context.Context, token, sessionID, userID string) error {
	f.savedToken = token
	f.savedSessionID = sessionID
	f.savedUserID = userID
	return nil
}

func (f *fakeSessionGateway) CurrentUserID(ctx context.Context) (string, error) {
	return f.savedUserID, nil
}

func (f *fakeSessionGateway) HasValidCredential(ctx context.Context) bool {
	return f.valid
}

func (f *fakeSessionGateway) ForceLogout(ctx context.Context) error {
	f.loggedOut = true
	return nil
}

// fakeCache is an in-memory CalendarCache.
type fakeCache struct {
	m map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return f.m[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value string) error {
	f.m[key] = value
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
