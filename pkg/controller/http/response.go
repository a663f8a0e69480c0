package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model/auth"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/errutil"
	"github.com/secmon-lab/auditflow/pkg/utils/safe"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(context.Background(), w, status, errorResponse{Error: msg})
}

// statusCodeOf maps use case errors to HTTP status codes
func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs the error and writes a JSON error body. Messages of 5xx
// errors are not exposed.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	code := statusCodeOf(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	errutil.LogHTTP(ctx, err, code)
	writeJSON(ctx, w, code, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return goerr.Wrap(usecase.ErrValidation, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func tokenFrom(ctx context.Context) *auth.Token {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		// authMiddleware guards every route that calls this
		panic(err)
	}
	return token
}
