package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeTransport    ErrorType = "transport"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeSchema       ErrorType = "schema"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

// NewTransportError covers network failures, timeouts and provider-side faults.
func NewTransportError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeTransport, code, message, cause)
}

// NewParseError is returned when a generator body is not well-formed JSON.
func NewParseError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeParse, code, message, cause)
}

// NewSchemaError is returned when well-formed output breaks the declared contract.
func NewSchemaError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeSchema, code, message, cause)
}

// NewPreconditionError is returned when a dependent call lacks its prior artifact.
func NewPreconditionError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypePrecondition, code, message, cause)
}

func NewConflictError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConflict, code, message, cause)
}

func NewNotFoundError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf reports the category of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, typ ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == typ
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a JSON logger writing to w.
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(w, opts)
	return &Logger{logger: slog.New(handler)}
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *Logger {
	return NewLoggerWithWriter(io.Discard, slog.LevelError)
}

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

// base returns the wrapped logger. A nil *Logger drops every record.
func (l *Logger) base() *slog.Logger {
	if l == nil || l.logger == nil {
		return discard
	}
	return l.logger
}

// With returns a logger carrying the given attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.base().With(args...)}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if appErr, ok := As(err); ok {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "error_cause", appErr.Cause.Error())
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}

		logArgs = append(logArgs, args...)

		l.base().Error(message, logArgs...)
		return
	}

	logArgs := append([]any{"error", err.Error()}, args...)
	l.base().Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	l.base().Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.base().Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.base().Warn(message, args...)
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Common error codes
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable  = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeMissingAPIKey    = "MISSING_API_KEY"
	ErrCodeVaultUnavailable = "VAULT_UNAVAILABLE"
	ErrCodeSecretNotFound   = "SECRET_NOT_FOUND"

	ErrCodeEmptyNotes          = "EMPTY_NOTES"
	ErrCodeEmptyText           = "EMPTY_TEXT"
	ErrCodeUnsupportedImage    = "UNSUPPORTED_IMAGE"
	ErrCodeGenerationFailed    = "GENERATION_FAILED"
	ErrCodeGenerationTimeout   = "GENERATION_TIMEOUT"
	ErrCodeCircuitOpen         = "CIRCUIT_OPEN"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeResponseParseFailed = "RESPONSE_PARSE_FAILED"
	ErrCodeSchemaMismatch      = "SCHEMA_MISMATCH"
	ErrCodeContractViolation   = "CONTRACT_VIOLATION"
	ErrCodeMissingJobDesc      = "MISSING_JOB_DESCRIPTION"
	ErrCodeEmptySpeech         = "EMPTY_SPEECH"
	ErrCodeStreamConsumed      = "STREAM_CONSUMED"
	ErrCodeTaskInFlight        = "TASK_IN_FLIGHT"
	ErrCodeStaleResult         = "STALE_RESULT"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodePromptTemplate      = "PROMPT_TEMPLATE_FAILED"
)
