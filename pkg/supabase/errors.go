package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// CodeNoRows is the PostgREST code for a singular request that matched nothing.
const CodeNoRows = "PGRST116"

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, msg)
}

// SQLState returns the Postgres SQLSTATE forwarded by PostgREST, if any.
func (e *APIError) SQLState() string {
	if e == nil || len(e.Code) != 5 || strings.HasPrefix(e.Code, "PGRST") {
		return ""
	}
	return e.Code
}

// Rejected reports whether the server refused the row itself rather than the request failing.
func (e *APIError) Rejected() bool {
	if e == nil {
		return false
	}
	switch e.Status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	state := e.SQLState()
	return strings.HasPrefix(state, "22") || strings.HasPrefix(state, "23")
}

// NoRows reports whether the server answered that the addressed row does not exist.
func (e *APIError) NoRows() bool {
	if e == nil {
		return false
	}
	return e.Status == http.StatusNotFound && (e.Code == CodeNoRows || e.Code == "")
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
