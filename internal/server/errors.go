package server

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/store"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error to an HTTP status and a code for the body.
func statusFor(err error) (int, errors.Code) {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, errors.ErrCodeMeshNotFound
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errors.ErrCodeTimeout
	}

	code := errors.GetCode(err)
	switch {
	case code == "":
		return http.StatusInternalServerError, errors.ErrCodeInternal
	case errors.IsInvalid(err):
		return http.StatusBadRequest, code
	case errors.IsNotFound(err):
		return http.StatusNotFound, code
	case code == errors.ErrCodeMeshCorrupt, code == errors.ErrCodeMaskExhausted:
		return http.StatusUnprocessableEntity, code
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented, code
	}
	return http.StatusInternalServerError, code
}

// writeError writes err as an [ErrorBody]. Server-side failures are logged
// and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	reqID := middleware.GetReqID(r.Context())
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		s.logger.Error("request failed", "code", code, "err", err, "request_id", reqID)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg, RequestID: reqID}})
}
