package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"aptodo/internal/service"
)

// ErrTimeout is returned when a request or a confirmation wait times out.
var ErrTimeout = errors.New("request timed out")

// APIError is a non-2xx response from the node or the faucet.
type APIError struct {
	StatusCode  int
	Code        string `json:"error_code"`
	Message     string `json:"message"`
	VMErrorCode *int   `json:"vm_error_code"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, status %d)", msg, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// Is reports 404 responses as service.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == service.ErrNotFound && e.StatusCode == http.StatusNotFound
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		if json.Unmarshal(data, apiErr) != nil {
			apiErr.Message = string(data)
		}
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
