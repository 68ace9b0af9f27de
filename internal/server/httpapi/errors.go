package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/contestfund/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorUnauthorized, http.StatusForbidden},
	{common.ErrUnauthorizedVoter, http.StatusForbidden},
	{common.ErrContestClosed, http.StatusConflict},
	{common.ErrAlreadyClosed, http.StatusConflict},
	{common.ErrContestMismatch, http.StatusConflict},
	{common.ErrInsufficientVotes, http.StatusUnprocessableEntity},
	{common.ErrInvalidAmount, http.StatusBadRequest},
	{common.ErrInvalidInput, http.StatusBadRequest},
	{common.ErrPaymentFailed, http.StatusPaymentRequired},
}

// statusFor maps a service error to its HTTP status and the message shown to
// the client. Unknown errors are reported as internal without details.
func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, err.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	writeJSON(w, status, errorResponse{Error: msg})
}
