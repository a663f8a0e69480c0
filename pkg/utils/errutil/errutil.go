package errutil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry when a
// client is initialized. The error is returned unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err, msg)
	return err
}

// HandleHTTP logs the error and writes a plain text HTTP error response.
// Messages of 5xx errors are not exposed.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	LogHTTP(ctx, err, statusCode)

	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		message = http.StatusText(statusCode)
	}
	http.Error(w, message, statusCode)
}

// LogHTTP logs an error answered with statusCode. 4xx is logged as a
// warning; 5xx as an error and reported to Sentry.
func LogHTTP(ctx context.Context, err error, statusCode int) {
	logger := logging.From(ctx)
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
		report(ctx, err, "HTTP error")
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Log(ctx, level, "HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
		return
	}
	logger.Log(ctx, level, "HTTP error",
		"status", statusCode,
		"error", err.Error(),
	)
}

func report(ctx context.Context, err error, msg string) {
	if sentry.CurrentHub().Client() == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if values := goerrContext(err); values != nil {
			scope.SetContext("goerr", values)
		}
		evID := hub.CaptureException(err)
		if evID != nil {
			logging.From(ctx).Debug("error reported to sentry", "event_id", *evID)
		}
	})
}

// goerrContext collects the goerr values of err as one Sentry context.
// nil when err carries no values.
func goerrContext(err error) sentry.Context {
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return nil
	}
	values := ge.Values()
	if len(values) == 0 {
		return nil
	}
	c := make(sentry.Context, len(values))
	for k, v := range values {
		c[k] = v
	}
	return c
}
