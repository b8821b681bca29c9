package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrStorageUnavailable  = &AppError{Code: "STORE_001", Message: "storage unavailable"}
	ErrConstraintViolation = &AppError{Code: "STORE_002", Message: "constraint violation"}
	ErrRecordNotFound      = &AppError{Code: "STORE_003", Message: "record not found"}

	ErrInvalidTimeFormat  = &AppError{Code: "SCHED_001", Message: "invalid time format"}
	ErrInvalidDateFormat  = &AppError{Code: "SCHED_002", Message: "invalid date format"}
	ErrSchedulerStopped   = &AppError{Code: "SCHED_003", Message: "scheduler not running"}
	ErrRegistrationFailed = &AppError{Code: "SCHED_004", Message: "trigger registration failed"}

	ErrUserNotFound    = &AppError{Code: "USER_001", Message: "user not found"}
	ErrEmailTaken      = &AppError{Code: "USER_002", Message: "email already registered"}
	ErrInvalidPassword = &AppError{Code: "USER_003", Message: "invalid credentials"}

	ErrMedicationNotFound = &AppError{Code: "MED_001", Message: "medication not found"}
	ErrMedicationInvalid  = &AppError{Code: "MED_002", Message: "invalid medication"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}
	ErrForbidden    = &AppError{Code: "AUTH_002", Message: "forbidden"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
