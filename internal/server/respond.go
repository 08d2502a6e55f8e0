package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// extractionStatus maps an extraction failure to its HTTP status.
func extractionStatus(err error) int {
	switch {
	case errors.Is(err, &apperrors.ErrNotFound{}):
		return http.StatusNotFound
	case errors.Is(err, &apperrors.ErrConversion{}):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeExtractionError(w http.ResponseWriter, r *http.Request, subtitleID string, err error) {
	status := extractionStatus(err)
	logger := zerolog.Ctx(r.Context())
	if status == http.StatusNotFound {
		logger.Info().Str("subtitleId", subtitleID).Msg("Subtitle not cached or expired")
		writeJSON(w, status, errorResponse{Error: "Subtitle not found", Details: err.Error()})
		return
	}

	logger.Error().Err(err).Str("subtitleId", subtitleID).Str("kind", apperrors.Kind(err)).Msg("Subtitle extraction failed")
	reportError(r, err, map[string]string{"subtitleId": subtitleID, "kind": apperrors.Kind(err)})
	writeJSON(w, status, errorResponse{Error: "Subtitle extraction failed", Details: err.Error()})
}

// reportError sends err to Sentry. It is a no-op when Sentry was not initialized.
// The request URL is never attached: it embeds the user configuration token.
func reportError(r *http.Request, err error, tags map[string]string) {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("method", r.Method)
		if id := r.Header.Get(requestIDHeader); id != "" {
			scope.SetTag("requestId", id)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.CaptureException(err)
}

// pathVar returns the decoded route variable. The router matches on the encoded path so
// that ids containing escaped slashes stay in one segment.
func pathVar(vars map[string]string, name string) string {
	raw := vars[name]
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
