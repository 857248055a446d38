package redmine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// APIError is the single failure shape for every call: transport errors,
// non-2xx statuses and undecodable bodies all end up here.
type APIError struct {
	Op         string   // Operation that failed, e.g. "create issue"
	StatusCode int      // HTTP status, 0 if no response was received
	Body       string   // Raw response body, if any
	Errors     []string // Messages from a Redmine {"errors": [...]} body
	Err        error    // Underlying transport or decode error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	switch {
	case len(e.Errors) > 0:
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Errors, "; "))
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Body != "":
		b.WriteString(": ")
		b.WriteString(truncate(strings.TrimSpace(e.Body), 200))
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newStatusError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, StatusCode: status, Body: string(body)}
	var payload struct {
		Errors []string `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Errors = payload.Errors
	}
	return apiErr
}

func errMissingEntity(key string) error {
	return fmt.Errorf("response has no %q object", key)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
