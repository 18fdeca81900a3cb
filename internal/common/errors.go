package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Pipeline error taxonomy. Match with errors.Is.
var (
	ErrExtraction   = errors.New("extraction failed")
	ErrChunking     = errors.New("chunking failed")
	ErrTranslation  = errors.New("translation failed")
	ErrStorage      = errors.New("storage failed")
	ErrInvalidState = errors.New("invalid job state")
	ErrRender       = errors.New("render failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// kindError joins a taxonomy sentinel with an underlying cause so both match errors.Is.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func withKind(code, message string, kind, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: &kindError{kind: kind, cause: cause}}
}

func NewExtractionError(code, message string, cause error) *AppError {
	return withKind(code, message, ErrExtraction, cause)
}

func NewChunkingError(message string, cause error) *AppError {
	return withKind("CHUNKING_ERROR", message, ErrChunking, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return withKind("STORAGE_ERROR", message, ErrStorage, cause)
}

func NewRenderError(message string, cause error) *AppError {
	return withKind("RENDER_ERROR", message, ErrRender, cause)
}

func NewInvalidStateError(message string) *AppError {
	return withKind("INVALID_STATE", message, ErrInvalidState, nil)
}

// TranslationError reports a provider failure. Retryable is false for auth/validation
// rejections and true when transient failures exhausted every attempt.
type TranslationError struct {
	Message    string
	StatusCode int
	Attempts   int
	Retryable  bool
	ChunkIndex int
	Cause      error
}

func (e *TranslationError) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return "TRANSLATION_ERROR: " + msg
}

func (e *TranslationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTranslation}
	}
	return []error{ErrTranslation, e.Cause}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// GRPCCode maps the taxonomy onto a gRPC status code.
func GRPCCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, ErrInvalidState):
		return codes.FailedPrecondition
	case errors.Is(err, ErrUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, ErrStorage), errors.Is(err, ErrDatabase):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error, keeping its message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(GRPCCode(err), err.Error())
}
