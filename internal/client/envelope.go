package client

import (
	"encoding/json"
	"fmt"

	"ravebox/discover/internal/domain"
)

const errorCodeField = "errorCode"

// decodeField reads field from a response envelope of the form
// {"<field>": ..., "errorCode": ...}. A set errorCode is an *APIError, a
// missing or null field is domain.ErrNotFound.
func decodeField[T any](status int, body []byte, field string) (T, error) {
	var zero T

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}

	if code := codeOf(envelope); code != "" {
		return zero, &domain.APIError{StatusCode: status, Code: code}
	}

	raw, ok := envelope[field]
	if !ok || string(raw) == "null" {
		return zero, fmt.Errorf("response has no %q: %w", field, domain.ErrNotFound)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, fmt.Errorf("failed to decode %q: %w", field, err)
	}
	return value, nil
}

// errorCode extracts the error code from an error response body, if any
func errorCode(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return codeOf(envelope)
}

func codeOf(envelope map[string]json.RawMessage) string {
	raw, ok := envelope[errorCodeField]
	if !ok || string(raw) == "null" {
		return ""
	}

	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return code
	}
	// Numeric codes are kept verbatim
	return string(raw)
}
