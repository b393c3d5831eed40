package errs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// detailBody is the error envelope used by the remitter API.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

// FromResponse builds the typed error for a non-2xx response.
// The body may carry "detail" either as a string or as a list of
// {msg|message} objects; anything else in the body is ignored.
func FromResponse(status int, body []byte) error {
	details := parseDetail(body)
	detail := joinDetails(details)

	switch status {
	case http.StatusNotFound:
		e := NewNotFoundError("remitter details not found")
		e.withDetail(detail)
		return e
	case http.StatusUnauthorized:
		e := NewUnauthorizedError("authentication required")
		e.withDetail(detail)
		return e
	case http.StatusForbidden:
		e := NewForbiddenError("access denied")
		e.withDetail(detail)
		return e
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return NewValidationError(details...)
	default:
		e := NewStatusError(status)
		e.withDetail(detail)
		return e
	}
}

// Detail returns the server detail text carried by err, or "".
func Detail(err error) string {
	var d interface{ ServerDetail() string }
	if errors.As(err, &d) {
		return d.ServerDetail()
	}
	return ""
}

func joinDetails(details []string) string {
	return strings.Join(details, ", ")
}

func parseDetail(body []byte) []string {
	var b detailBody
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &b) != nil {
		return nil
	}
	raw := bytes.TrimSpace(b.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil || s == "" {
			return nil
		}
		return []string{s}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, itemMessage(item))
		}
		return out
	default:
		return []string{compact(raw)}
	}
}

// itemMessage picks msg, then message, then the raw item text.
func itemMessage(item json.RawMessage) string {
	var s string
	if json.Unmarshal(item, &s) == nil {
		return s
	}
	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(item, &obj) == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	return compact(item)
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
