package client

import (
	"io"
	"net/http"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
)

// maxErrorBody bounds how much of an error response is copied into the error message.
const maxErrorBody = 512

// checkStatus converts a non-2xx response into an ErrUpstream.
// 401 and 403 are reported as authentication failures so callers can tell a bad key apart.
func checkStatus(service, operation string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	upstream := &apperrors.ErrUpstream{
		Service:    service,
		Operation:  operation,
		StatusCode: resp.StatusCode,
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		upstream.Message = "authentication failed"
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upstream.Message = strings.TrimSpace(string(snippet))
	}
	return upstream
}

// envelopeError converts a debrid "error" payload into an ErrUpstream.
func envelopeError(operation string, apiErr *debridError) error {
	upstream := &apperrors.ErrUpstream{Service: debridService, Operation: operation, Message: "unknown error"}
	if apiErr != nil {
		switch {
		case apiErr.Code != "" && apiErr.Message != "":
			upstream.Message = apiErr.Code + ": " + apiErr.Message
		case apiErr.Message != "":
			upstream.Message = apiErr.Message
		case apiErr.Code != "":
			upstream.Message = apiErr.Code
		}
	}
	return upstream
}
