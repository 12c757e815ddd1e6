// Package rpc is the HTTP communication layer between the directory client
// and partition servers.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"userdir/pkg/cluster"
	"userdir/pkg/direrrors"
	"userdir/pkg/types"
)

const (
	contentTypeJSON = "application/json"
	requestTimeout  = 5 * time.Second
	initialBackoff  = 100 * time.Millisecond
)

// RetrySettings is the communication-layer retry policy. It is fixed at
// construction time and applied to every request issued through the factory;
// the client core adds no retry logic of its own on top.
type RetrySettings struct {
	// MaxAttempts bounds the total tries per logical request.
	MaxAttempts int

	// TransientBackoffCap caps the backoff between attempts after transient
	// failures (transport errors, 5xx).
	TransientBackoffCap time.Duration

	// NonTransientBackoffCap caps the backoff after non-transient failures.
	// Held for policy completeness; in practice non-transient HTTP failures
	// (4xx) are returned without another attempt, since repeating a request
	// the server has definitively rejected cannot change the outcome.
	NonTransientBackoffCap time.Duration
}

// DefaultRetrySettings returns the fixed policy: 3 attempts, 2s caps.
func DefaultRetrySettings() RetrySettings {
	return RetrySettings{
		MaxAttempts:            3,
		TransientBackoffCap:    2 * time.Second,
		NonTransientBackoffCap: 2 * time.Second,
	}
}

// HTTPPartition is a cluster.Partition bound to one partition server.
type HTTPPartition struct {
	baseURL string
	client  *http.Client
	retry   RetrySettings
}

func NewHTTPPartition(baseURL string, retry RetrySettings) *HTTPPartition {
	return &HTTPPartition{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		retry: retry,
	}
}

// NewPartitionFactory adapts HTTP clients to the resolver's factory contract.
// The retry settings are captured once, here.
func NewPartitionFactory(retry RetrySettings) cluster.PartitionFactory {
	return func(ep cluster.PartitionEndpoint) (cluster.Partition, error) {
		if ep.Addr == "" {
			return nil, fmt.Errorf("%w: endpoint has no address", direrrors.ErrResolution)
		}
		return NewHTTPPartition(ep.Addr, retry), nil
	}
}

// response mirrors the partition server's envelope.
type response struct {
	Status string       `json:"status,omitempty"`
	ID     string       `json:"id,omitempty"`
	User   *types.User  `json:"user,omitempty"`
	Users  []types.User `json:"users,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func (c *HTTPPartition) AddUser(ctx context.Context, user types.User) (string, error) {
	resp, code, err := c.do(ctx, http.MethodPost, "/api/users", &user)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		return "", fmt.Errorf("%w: add user: status %d: %s", direrrors.ErrRemote, code, resp.Error)
	}
	return resp.ID, nil
}

func (c *HTTPPartition) GetUser(ctx context.Context, id string) (types.User, error) {
	resp, code, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return types.User{}, err
	}
	switch {
	case code == http.StatusNotFound:
		return types.User{}, fmt.Errorf("%w: user %q", direrrors.ErrNotFound, id)
	case code != http.StatusOK || resp.User == nil:
		return types.User{}, fmt.Errorf("%w: get user: status %d: %s", direrrors.ErrRemote, code, resp.Error)
	}
	return *resp.User, nil
}

func (c *HTTPPartition) UpdateUser(ctx context.Context, user types.User) (bool, error) {
	resp, code, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(user.ID), &user)
	if err != nil {
		return false, err
	}
	switch code {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("%w: update user: status %d: %s", direrrors.ErrRemote, code, resp.Error)
}

func (c *HTTPPartition) DeleteUser(ctx context.Context, id string) (bool, error) {
	resp, code, err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return false, err
	}
	switch code {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("%w: delete user: status %d: %s", direrrors.ErrRemote, code, resp.Error)
}

func (c *HTTPPartition) ListUsers(ctx context.Context) ([]types.User, error) {
	resp, code, err := c.do(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("%w: list users: status %d: %s", direrrors.ErrRemote, code, resp.Error)
	}
	return resp.Users, nil
}

// do issues one logical request, retrying transient failures (transport
// errors and 5xx) with exponential backoff per the retry settings. A fired
// ctx stops the attempt loop immediately; nothing is sent after cancellation.
func (c *HTTPPartition) do(ctx context.Context, method, path string, body any) (response, int, error) {
	if err := ctx.Err(); err != nil {
		return response{}, 0, fmt.Errorf("%w: %v", direrrors.ErrCanceled, err)
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return response{}, 0, fmt.Errorf("%w: encode request: %v", direrrors.ErrRemote, err)
		}
	}

	// one correlation id for all attempts of the logical request
	reqID := uuid.NewString()

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return response{}, 0, fmt.Errorf("%w: %v", direrrors.ErrCanceled, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.retry.TransientBackoffCap {
				backoff = c.retry.TransientBackoffCap
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return response{}, 0, fmt.Errorf("%w: build request: %v", direrrors.ErrRemote, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", contentTypeJSON)
		}
		req.Header.Set("X-Request-ID", reqID)

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return response{}, 0, fmt.Errorf("%w: %v", direrrors.ErrCanceled, err)
			}
			lastErr = err
			continue
		}

		var decoded response
		decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, decoded.Error)
			continue
		}
		if decodeErr != nil {
			if resp.StatusCode == http.StatusOK {
				return response{}, 0, fmt.Errorf("%w: decode response: %v", direrrors.ErrRemote, decodeErr)
			}
			// Error bodies are not always our envelope: the router answers
			// unmatched paths with plain text. The status code still stands.
			return response{}, resp.StatusCode, nil
		}
		return decoded, resp.StatusCode, nil
	}

	return response{}, 0, fmt.Errorf("%w: %v", direrrors.ErrRemote, lastErr)
}
