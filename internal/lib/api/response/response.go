// Package response defines the JSON envelope shared by all handlers:
// {"status": <http code>, "message": <text>, "data": {...}} with data
// present only when a payload accompanies the message.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func New(status int, message string) Response {
	return Response{
		Status:  status,
		Message: message,
	}
}

func WithData(status int, message string, data any) Response {
	return Response{
		Status:  status,
		Message: message,
		Data:    data,
	}
}

// ValidationError reports the first failed field only; preconditions are
// checked in struct order and the first failure wins.
func ValidationError(errs validator.ValidationErrors) Response {
	field := strings.ToLower(errs[0].Field())

	return New(400, fmt.Sprintf("%s not provided.", field))
}
