package report

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"GEMA-backend/internal/platform/db"
	"GEMA-backend/internal/platform/httpx"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// statusCoder is implemented by the error types of the packages reports
// read from.
type statusCoder interface {
	HTTPStatus() int
}

func fromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	switch db.Classify(err) {
	case db.KindNotFound:
		return ErrNotFound(op + ": not found")
	case db.KindAccessDenied:
		return &APIError{Code: CodeForbidden, Message: op + ": access denied"}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func codeFor(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidArgument
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusForbidden:
		return CodeForbidden
	default:
		return CodeInternal
	}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeForbidden:
			return http.StatusForbidden
		default:
			return http.StatusInternalServerError
		}
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

type errorDTO struct {
	Error struct {
		Code      Code   `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// errorFromErr keeps the messages of known error types. Anything else is
// logged and answered generically with the request id.
func errorFromErr(c *gin.Context, err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorBody(api.Code, api.Message)
	}
	if status := toHTTPStatus(err); status != http.StatusInternalServerError {
		return errorBody(codeFor(status), err.Error())
	}
	return internalError(c, err)
}

func internalError(c *gin.Context, err error) errorDTO {
	id := httpx.RequestIDFrom(c)
	log.Printf("[ERROR] id=%s %s %s: %v", id, c.Request.Method, c.Request.URL.Path, err)
	e := errorBody(CodeInternal, "internal error")
	e.Error.RequestID = id
	return e
}
