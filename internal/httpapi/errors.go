package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/lobby"
	"github.com/DoyleJ11/defi-educatif/internal/store"
	"github.com/DoyleJ11/defi-educatif/pkg/types"
)

var errNoParticipant = errors.New("missing X-Participant-ID header")

// statusFor maps an error onto its HTTP status. Game rule violations are
// 4xx; anything that kept the command from being evaluated is 5xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoParticipant):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameNotFound),
		errors.Is(err, engine.ErrQuestionNotFound),
		errors.Is(err, engine.ErrAnswerNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNotJury),
		errors.Is(err, engine.ErrNotPermitted),
		errors.Is(err, engine.ErrNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidContent),
		errors.Is(err, engine.ErrInvalidRole),
		errors.Is(err, engine.ErrInvalidOutcome),
		errors.Is(err, engine.ErrUnsupportedCommand):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrLedgerInvariant):
		return http.StatusInternalServerError
	case engine.Code(err) != "":
		return http.StatusConflict
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, lobby.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	resp := types.ErrorResponse{Code: engine.Code(err), Error: err.Error()}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		if resp.Code == "" {
			resp.Error = http.StatusText(status)
		}
	}
	writeJSON(w, status, resp)
}
