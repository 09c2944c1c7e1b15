package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every JSON endpoint renders.
type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "The request could not be processed. Check the syntax of the request body.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var LinkGoneResponse = Response{
	Status:  StatusError,
	Error:   "Link Gone",
	Message: "The requested link is no longer available.",
}

var PasswordRequiredResponse = Response{
	Status:  StatusError,
	Error:   "Password Required",
	Message: "This link is protected. Provide the link password.",
}

var PasswordInvalidResponse = Response{
	Status:  StatusError,
	Error:   "Password Invalid",
	Message: "The supplied link password is incorrect.",
}

var UnauthorizedResponse = Response{
	Status:  StatusError,
	Error:   "Unauthorized",
	Message: "Authentication is required to access this resource.",
}

var ForbiddenResponse = Response{
	Status:  StatusError,
	Error:   "Forbidden",
	Message: "You don't have permission to access this resource.",
}

var AliasTakenResponse = Response{
	Status:  StatusError,
	Error:   "Alias Taken",
	Message: "The requested custom alias is already in use.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

// SuccessResponse builds a success envelope with an optional data payload.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ErrorResponse builds an ad-hoc error envelope.
func ErrorResponse(errName, msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   errName,
		Message: msg,
	}
}

// ValidationErrorResponse maps validator errors to a response with one
// detail entry per failed field.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request contains invalid data. Check the details.",
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, vErr := range validationErrs {
			resp.Details = append(resp.Details, map[string]string{
				"field": vErr.Field(),
				"rule":  vErr.Tag(),
			})
		}
	}

	return resp
}
