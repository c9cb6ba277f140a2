package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means there is no token or the backend rejected it.
	ErrUnauthorized = errors.New("not signed in")
	// ErrNotFound means the backend has no such record for this user.
	ErrNotFound = errors.New("not found")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// decodeError reads the backend's {"detail": ...} body. Detail is a string
// for handled errors and a list of {"msg": ...} objects for validation
// failures.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &Error{Status: resp.StatusCode}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		e.Detail = strings.TrimSpace(string(raw))
		return e
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		e.Detail = text
		return e
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
				continue
			}
			msgs = append(msgs, it.Msg)
		}
		e.Detail = strings.Join(msgs, "; ")
		return e
	}

	e.Detail = string(body.Detail)
	return e
}
