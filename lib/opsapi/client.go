// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package opsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Session is the read-only authentication context injected into the
// client. It is assembled once at startup (config file, environment,
// login prompt) and passed down explicitly — components never reach
// into ambient storage for the acting user or token.
type Session struct {
	// UserID identifies the acting user; mutations carry it as
	// updated_by and follow toggles apply to it.
	UserID int

	// Token is the bearer token for the Authorization header.
	Token string

	// APIKey is the backend's static API key header value.
	APIKey string
}

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests, e.g.
	// "https://ops.example-clinic.test". Required.
	BaseURL string

	// Session provides the bearer token, API key, and acting user.
	Session Session

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client is a typed ops backend client with automatic authentication
// headers and structured error handling.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	logger     *slog.Logger
}

// NewClient creates an ops backend client from the given
// configuration. Returns an error when the base URL or credentials
// are missing.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("opsapi: base URL is required")
	}
	if config.Session.Token == "" {
		return nil, fmt.Errorf("opsapi: session token is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    config.Session,
		logger:     logger,
	}, nil
}

// Session returns the client's authentication context.
func (client *Client) Session() Session {
	return client.session
}

// do executes an authenticated request. The path is relative to the
// base URL. A non-nil requestBody is JSON-encoded. Returns the raw
// response body; non-2xx responses become an *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	contentType := ""
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("opsapi: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return client.doRaw(ctx, method, path, bodyReader, contentType)
}

// doRaw executes a request with a prebuilt body. Used by do (JSON)
// and by the multipart follow mutations.
func (client *Client) doRaw(ctx context.Context, method, path string, bodyReader io.Reader, contentType string) ([]byte, error) {
	url := client.baseURL + path
	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("opsapi: creating request: %w", err)
	}

	request.Header.Set("Authorization", "Bearer "+client.session.Token)
	if client.session.APIKey != "" {
		request.Header.Set("X-Api-Key", client.session.APIKey)
	}
	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("opsapi: %s %s: %w", method, url, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("opsapi: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, parseAPIError(response.StatusCode, body)
	}
	return body, nil
}

// get is a convenience method for GET requests returning JSON.
func (client *Client) get(ctx context.Context, path string, result any) error {
	body, err := client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("opsapi: decoding response: %w", err)
	}
	return nil
}

// patch is a convenience method for PATCH requests with a JSON body.
func (client *Client) patch(ctx context.Context, path string, requestBody any, result any) error {
	body, err := client.do(ctx, http.MethodPatch, path, requestBody)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("opsapi: decoding response: %w", err)
	}
	return nil
}
