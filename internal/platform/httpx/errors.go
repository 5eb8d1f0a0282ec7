package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/admindash/internal/shared"
)

// RespondError maps store errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblem(w, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
			Fields: verr.Fields,
		})
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrBusy):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrTimeout):
		Problem(w, http.StatusGatewayTimeout, "Timeout", "")
	case errors.Is(err, shared.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// ErrorFromStatus converts a problem response back into a store error kind.
func ErrorFromStatus(status int, p ProblemDetail) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if len(p.Fields) > 0 {
			return &shared.ValidationError{Fields: p.Fields}
		}
		return shared.ErrValidation
	case http.StatusNotFound:
		return shared.ErrNotFound
	case http.StatusConflict:
		return shared.ErrBusy
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return shared.ErrTimeout
	default:
		return shared.ErrStoreUnavailable
	}
}
