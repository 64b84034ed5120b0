// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package opsapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the ops backend. The
// backend returns JSON error bodies with a message field; anything
// else is carried verbatim.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the backend's error description.
	Message string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("opsapi: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a backend 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

// IsServerError reports whether err is a backend 5xx response.
func IsServerError(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode >= 500
}

// IsUnauthorized reports whether err is a backend 401 response, which
// usually means the session token has expired.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 401
}

// parseAPIError builds an *APIError from a status code and response
// body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	switch {
	case json.Unmarshal(body, &wireError) == nil && wireError.Message != "":
		apiError.Message = wireError.Message
	case wireError.Error != "":
		apiError.Message = wireError.Error
	default:
		apiError.Message = string(body)
	}
	return apiError
}
