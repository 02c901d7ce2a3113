package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel causes wrapped in ExtractionError, checked with errors.Is.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNoParser            = errors.New("no parser for language")
	ErrParseFailed         = errors.New("parse produced no tree")
	ErrParserPanic         = errors.New("parser panicked")
)

// Error types for the structural code intelligence engine
type ErrorType string

const (
	// Extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeTimeout    ErrorType = "timeout"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypeBinaryFile   ErrorType = "binary_file"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ExtractionError represents an error during a file's extraction pass.
// Recoverable extraction errors trigger fallback to the pattern strategy;
// unrecoverable ones cause the file to be skipped and reported.
type ExtractionError struct {
	Type        ErrorType
	FilePath    string
	Language    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewExtractionError creates a new extraction error with context
func NewExtractionError(op string, err error) *ExtractionError {
	return &ExtractionError{
		Type:       ErrorTypeExtraction,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *ExtractionError) WithFile(path, language string) *ExtractionError {
	e.FilePath = path
	e.Language = language
	return e
}

// WithRecoverable marks the error as recoverable via strategy fallback
func (e *ExtractionError) WithRecoverable(recoverable bool) *ExtractionError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ExtractionError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if extraction can fall back to another strategy
func (e *ExtractionError) IsRecoverable() bool {
	return e.Recoverable
}

// ParseError represents a syntax-tree parsing failure
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// TimeoutError reports that a file's extraction exceeded its deadline.
// The orchestrator abandons the file's result and continues with the next.
type TimeoutError struct {
	Type      ErrorType
	FilePath  string
	Elapsed   time.Duration
	Timestamp time.Time
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(path string, elapsed time.Duration) *TimeoutError {
	return &TimeoutError{
		Type:      ErrorTypeTimeout,
		FilePath:  path,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("extraction timed out for %s after %v", e.FilePath, e.Elapsed)
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileSizeError reports a file skipped for exceeding the size limit.
func NewFileSizeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "size check",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// NewBinaryFileError reports a file whose content is not analyzable text.
func NewBinaryFileError(path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeBinaryFile,
		Path:       path,
		Operation:  "content check",
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
