package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// APIError is a non-2xx answer from PostgREST or GoTrue. It unwraps to the
// matching sentinel from package common, so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "supabase: status %d", e.Status)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Code != "" {
		b.WriteString(" (" + e.Code + ")")
	}
	if e.Hint != "" {
		b.WriteString("; hint: " + e.Hint)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	msg := strings.ToLower(e.Message + " " + e.Details)

	switch {
	case strings.Contains(msg, "insufficient"):
		return common.ErrInsufficientCoins
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.Status == http.StatusNotFound, e.Status == http.StatusNotAcceptable:
		return common.ErrNotFound
	case e.Status == http.StatusConflict, e.Code == "23505":
		return common.ErrConflict
	case e.Status == http.StatusTooManyRequests, e.Status >= http.StatusInternalServerError:
		return common.ErrUnavailable
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return common.ErrInvalidInput
	}
	return nil
}

// Temporary reports whether err is worth retrying: transport failures,
// 429 and 5xx answers.
func Temporary(err error) bool {
	return errors.Is(err, common.ErrUnavailable)
}

// parseAPIError reads both error shapes: PostgREST's {code, message,
// details, hint} and GoTrue's {error, error_description} / {code, msg}.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	e.Message = firstString(raw, "message", "msg", "error_description", "error")
	e.Code = firstString(raw, "error_code", "code")
	e.Details = firstString(raw, "details")
	e.Hint = firstString(raw, "hint")
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
