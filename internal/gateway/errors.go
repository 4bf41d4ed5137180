package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// genericDetail is surfaced when the service reply carries no usable detail.
const genericDetail = "inventory service request failed"

// StatusError is a transport-level failure reported by the inventory service.
// Detail carries the service's human-readable message verbatim so it can be
// shown to the user unchanged.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory service: %s (status %d)", e.Detail, e.Status)
}

// errorFromResponse builds a StatusError from a non-2xx reply. The service
// reports errors as {"detail": "..."}; anything else falls back to a generic
// message.
func errorFromResponse(resp *http.Response) error {
	detail := genericDetail

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
			var text string
			if json.Unmarshal(payload.Detail, &text) == nil && text != "" {
				detail = text
			}
		}
	}

	return &StatusError{Status: resp.StatusCode, Detail: detail}
}
