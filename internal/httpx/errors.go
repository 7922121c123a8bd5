package httpx

import (
	"fmt"
	"net/http"

	"vhostmgr/internal/result"
)

// Business error codes
const (
	CodeSuccess = 0

	// Authentication errors (1000-1099)
	CodeUnauthorized = 1001 // token missing
	CodeInvalidToken = 1002
	CodeTokenExpired = 1003
	CodeBadLogin     = 1005
	CodeRateLimited  = 1006

	// Parameter errors (2000-2099)
	CodeParamMissing = 2001
	CodeParamInvalid = 2002

	// Domain errors (3000-3999)
	CodeNotFound      = 3001
	CodeAlreadyExists = 3002
	CodeNotDue        = 3003
	CodeConfigMissing = 3004

	// System errors (5000-5999)
	CodeInternalError = 5001
	CodeReloadFailed  = 5002
	CodeACMEFailed    = 5003
)

// AppError carries an HTTP status and business code to the client.
// Err is logged but never serialized.
type AppError struct {
	HTTPStatus int
	Code       int
	Message    string
	Err        error
	Data       interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// WithData attaches data returned alongside the error
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// ErrUnauthorized creates a 401 unauthorized error
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// ErrInvalidToken creates a 401 invalid token error
func ErrInvalidToken(message string) *AppError {
	if message == "" {
		message = "invalid token"
	}
	return NewAppError(http.StatusUnauthorized, CodeInvalidToken, message, nil)
}

// ErrTokenExpired creates a 401 token expired error
func ErrTokenExpired(message string) *AppError {
	if message == "" {
		message = "token expired"
	}
	return NewAppError(http.StatusUnauthorized, CodeTokenExpired, message, nil)
}

// ErrBadLogin creates a 401 for wrong credentials
func ErrBadLogin() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeBadLogin, "invalid username or password", nil)
}

// ErrRateLimited creates a 429 error
func ErrRateLimited() *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeRateLimited, "too many requests", nil)
}

// ErrParamMissing creates a 400 parameter missing error
func ErrParamMissing(message string) *AppError {
	if message == "" {
		message = "parameter missing"
	}
	return NewAppError(http.StatusBadRequest, CodeParamMissing, message, nil)
}

// ErrParamInvalid creates a 400 parameter invalid error
func ErrParamInvalid(message string) *AppError {
	if message == "" {
		message = "parameter format error"
	}
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, message, nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "resource not found"
	}
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, err)
}

// kindStatus maps operation failure kinds onto HTTP
var kindStatus = map[result.Kind]struct {
	status int
	code   int
}{
	result.KindInvalidName:            {http.StatusBadRequest, CodeParamInvalid},
	result.KindAlreadyExists:          {http.StatusConflict, CodeAlreadyExists},
	result.KindNotFound:               {http.StatusNotFound, CodeNotFound},
	result.KindConfigMissing:          {http.StatusNotFound, CodeConfigMissing},
	result.KindNotDue:                 {http.StatusConflict, CodeNotDue},
	result.KindReloadFailed:           {http.StatusInternalServerError, CodeReloadFailed},
	result.KindToolchainInstallFailed: {http.StatusBadGateway, CodeACMEFailed},
	result.KindIssuanceFailed:         {http.StatusBadGateway, CodeACMEFailed},
	result.KindInstallFailed:          {http.StatusBadGateway, CodeACMEFailed},
	result.KindInternalError:          {http.StatusInternalServerError, CodeInternalError},
}

// FromResult converts a failed operation result. The result itself is
// returned as data so clients still see manual steps and ssl fields.
func FromResult(res result.Result) *AppError {
	m, ok := kindStatus[res.Kind]
	if !ok {
		m = kindStatus[result.KindInternalError]
	}
	return NewAppError(m.status, m.code, res.Message, nil).WithData(res)
}
