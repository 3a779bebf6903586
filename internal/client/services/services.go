// Package services contains the application services of the unicampus
// client. Each service is a thin wrapper over the authenticated gateway:
// it shapes requests, decodes the backend's response envelope, and leaves
// credential handling entirely to the gateway.
package services

import (
	"context"
	"fmt"

	"github.com/unicampus-app/unicampus/internal/client/gateway"
)

// Sender is the slice of the gateway the services need. Tests provide
// fakes; production passes *gateway.Gateway.
type Sender interface {
	Send(ctx context.Context, req gateway.Request) (*gateway.Response, error)
}

// envelope is the backend's standard response wrapper.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// decodeData unwraps a {success, data} response body into T.
func decodeData[T any](resp *gateway.Response) (T, error) {
	var env envelope[T]
	if err := resp.Decode(&env); err != nil {
		return env.Data, fmt.Errorf("decode response: %w", err)
	}
	return env.Data, nil
}
