package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/export"
	"github.com/hyperifyio/gosummarize/internal/ratelimit"
	"github.com/hyperifyio/gosummarize/internal/search"
	"github.com/hyperifyio/gosummarize/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// HTTPError is an error with the status code it is served with.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

func badRequest(msg string) error { return &HTTPError{Code: http.StatusBadRequest, Message: msg} }

var errUnauthorized = &HTTPError{Code: http.StatusUnauthorized, Message: "authentication required"}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) (int, string) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code, he.Message
	}
	switch {
	case errors.Is(err, ratelimit.ErrRateLimited), errors.Is(err, app.ErrQuotaExceeded):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, app.ErrEmptyQuery),
		errors.Is(err, store.ErrInvalidUsername), errors.Is(err, store.ErrInvalidEmail),
		errors.Is(err, store.ErrWeakPassword), errors.Is(err, store.ErrInvalidSettings),
		errors.Is(err, store.ErrInvalidRating),
		errors.Is(err, citation.ErrUnknownStyle), errors.Is(err, citation.ErrUnknownKind),
		errors.Is(err, citation.ErrMissingTitle), errors.Is(err, citation.ErrInvalidDOI),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, app.ErrNoResults):
		return http.StatusNotFound, "no results found"
	case errors.Is(err, app.ErrNoStore):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, search.ErrNoProvider):
		return http.StatusServiceUnavailable, "no search provider configured"
	case errors.Is(err, export.ErrNotionNotConfigured):
		return http.StatusServiceUnavailable, "notion export is not configured"
	}
	var ne *export.NotionError
	if errors.As(err, &ne) {
		return http.StatusBadGateway, ne.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError serves err as {"error": message} and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusOf(err)
	ev := zerolog.Ctx(r.Context()).Debug()
	if code >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", code).Msg("request failed")
	if code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", retryAfter(err))
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

// retryAfter is the Retry-After value in seconds for a 429 response. A
// spent daily quota frees up over the following day.
func retryAfter(err error) string {
	if errors.Is(err, app.ErrQuotaExceeded) {
		return "3600"
	}
	return "60"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON object from the request body into v. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return &HTTPError{Code: http.StatusUnsupportedMediaType, Message: "Content-Type must be application/json"}
		}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON payload: " + err.Error())
	}
	return nil
}
