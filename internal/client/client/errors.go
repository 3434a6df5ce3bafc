package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable = errors.New("store unavailable")
	ErrAborted     = errors.New("request aborted")
)

// APIError is a non-2xx answer of the record store.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}

	fields := make([]string, 0, len(e.Data))
	for k, v := range e.Data {
		detail, _ := v.(map[string]any)
		if m, ok := detail["message"].(string); ok && m != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", k, m))
		}
	}
	if len(fields) == 0 {
		return fmt.Sprintf("%d %s", e.Status, msg)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%d %s (%s)", e.Status, msg, strings.Join(fields, "; "))
}
