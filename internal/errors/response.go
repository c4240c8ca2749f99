package errors

import (
	"github.com/cockroachdb/errors"
)

// ErrorDetail carries the externally visible portion of an error.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the JSON shape used whenever an error is rendered to a
// caller. Internal messages and stack traces are never included.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse converts any error into the external response shape.
// For builder-produced errors the hint and reportable details are used;
// everything else degrades to a generic message.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Message: "an unexpected error occurred"},
	}

	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Hint() != "" {
			resp.Error.Message = ie.Hint()
		} else if ie.message != "" {
			resp.Error.Message = ie.message
		}
		resp.Error.Details = ie.ReportableDetails()
	} else if err != nil {
		resp.Error.Message = err.Error()
	}

	return resp
}
