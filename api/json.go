package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/logger"
)

func JSONHandler(h func(http.ResponseWriter, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// errorStatus maps the typed errors of a remote call onto an HTTP status.
func errorStatus(err error) int {
	var (
		validationErr *remote.ValidationError
		signatureErr  *remote.SignatureError
		methodErr     *remote.MethodError
		remoteErr     *remote.RemoteError
		serviceErr    *remote.ServiceUnknownError
		timeoutErr    *remote.TimeoutError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &signatureErr):
		return http.StatusBadRequest
	case errors.As(err, &methodErr), errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &serviceErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("[api] remote call failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}

// withAction wraps a call without request body; success is 204.
func withAction(fn func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// withBody decodes a JSON request into T, validates it and passes it on.
// An empty body decodes to the zero value of T.
func withBody[T any](
	validate func(*T) error,
	next func(ctx context.Context, req *T) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req T
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}

		if validate != nil {
			if err := validate(&req); err != nil {
				writeError(w, err)
				return
			}
		}

		if err := next(r.Context(), &req); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
