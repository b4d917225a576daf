package handler

import (
	"errors"
	"net/http"

	"github.com/web3ix-api/internal/domain"
	"go.uber.org/zap"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrAuth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// httpError writes err as {error: message}. Failures carry a client-facing
// message; anything else is reported generically and logged.
func httpError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	var f *domain.Failure
	if !errors.As(err, &f) {
		log.Error("unclassified error", zap.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("message", f.Message), zap.Error(f.Err))
	}
	writeError(w, status, f.Message)
}
