package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports that no token matched a query after filtering.
// It is an expected outcome, not a system fault.
type NotFoundError struct {
	Query  string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("no data found for token %q", e.Query)
	}
	return fmt.Sprintf("no data found for token %q: %s", e.Query, e.Reason)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports missing or malformed identifying input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError reports a transport failure or an integration-reported error
// from an external source.
type UpstreamError struct {
	Source     string
	StatusCode int
	Detail     string
	Errors     string // pretty-printed errors payload
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	if isErrorStatus(e.StatusCode) {
		fmt.Fprintf(&b, "%s responded with an error status code: %d", e.Source, e.StatusCode)
		if e.Detail != "" {
			fmt.Fprintf(&b, "\n\nDetails:\n%s\n", e.Detail)
		}
	}
	if e.Errors != "" {
		if b.Len() == 0 {
			fmt.Fprintf(&b, "%s reported errors", e.Source)
		}
		fmt.Fprintf(&b, "\n\nDetails:\n%s\n", e.Errors)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		fmt.Fprintf(&b, "%s request failed: %v", e.Source, e.Err)
	}
	if b.Len() == 0 {
		fmt.Fprintf(&b, "%s request failed", e.Source)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IntegrationResponse is the part of an external call's response that the
// integration-error contract inspects.
type IntegrationResponse struct {
	StatusCode int
	// Message is the response body. It may be a JSON object or a JSON
	// string that itself encodes the object.
	Message string
}

type integrationPayload struct {
	Detail string          `json:"detail"`
	Errors json.RawMessage `json:"errors"`
}

// CheckIntegrationResponse returns an *UpstreamError when the status code is
// in [400,600) or the payload carries a non-empty errors field.
func CheckIntegrationResponse(source string, resp IntegrationResponse) error {
	payload := decodeIntegrationPayload(resp.Message)

	upErr := &UpstreamError{Source: source, StatusCode: resp.StatusCode}
	failed := false

	if isErrorStatus(resp.StatusCode) {
		failed = true
		if payload != nil {
			upErr.Detail = payload.Detail
		}
	}
	if payload != nil && hasErrors(payload.Errors) {
		failed = true
		upErr.Errors = indentJSON(payload.Errors)
	}

	if !failed {
		return nil
	}
	return upErr
}

func isErrorStatus(code int) bool {
	return code >= 400 && code < 600
}

func decodeIntegrationPayload(message string) *integrationPayload {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	raw := []byte(message)

	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		raw = []byte(inner)
	}

	var payload integrationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return &payload
}

func hasErrors(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "[]", "{}", `""`, "false":
		return false
	}
	return true
}

func indentJSON(raw json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
