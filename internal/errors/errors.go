// Package errors defines the categorical error taxonomy used across the
// bridge services. Every failure surfaced by an operation carries a stable
// code so HTTP handlers and callers can branch without string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeUnauthorized           Code = "unauthorized"
	CodeInvalidAmount          Code = "invalid_amount"
	CodeAlreadyProcessed       Code = "already_processed"
	CodeInsufficientSignatures Code = "insufficient_signatures"
	CodeInvalidValidator       Code = "invalid_validator"
	CodeTransferExpired        Code = "transfer_expired"
	CodeAlreadyClaimed         Code = "already_claimed"
	CodeChallengePeriodActive  Code = "challenge_period_active"
	CodeInvalidProof           Code = "invalid_proof"
	CodePaused                 Code = "paused"
	CodeInvalidChain           Code = "invalid_chain"
	CodeDuplicateSignature     Code = "duplicate_signature"
	CodeThresholdTooHigh       Code = "threshold_too_high"
	CodeAlreadyValidator       Code = "already_validator"
	CodeUnknownValidator       Code = "unknown_validator"
	CodeNotFound               Code = "not_found"
	CodeInvalidInput           Code = "invalid_input"
	CodeInternal               Code = "internal"
)

// Error is a categorised bridge error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two errors by code so callers can use errors.Is against the
// package-level constructors' outputs.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: cause}
}

// HTTPStatus maps the error category to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyProcessed, CodeAlreadyClaimed, CodeAlreadyValidator, CodeChallengePeriodActive, CodePaused:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Unauthorized(msg string) *Error           { return newError(CodeUnauthorized, msg) }
func InvalidAmount(msg string) *Error          { return newError(CodeInvalidAmount, msg) }
func AlreadyProcessed(msg string) *Error       { return newError(CodeAlreadyProcessed, msg) }
func InsufficientSignatures(msg string) *Error { return newError(CodeInsufficientSignatures, msg) }
func InvalidValidator(msg string) *Error       { return newError(CodeInvalidValidator, msg) }
func TransferExpired(msg string) *Error        { return newError(CodeTransferExpired, msg) }
func AlreadyClaimed(msg string) *Error         { return newError(CodeAlreadyClaimed, msg) }
func ChallengePeriodActive(msg string) *Error  { return newError(CodeChallengePeriodActive, msg) }
func InvalidProof(msg string) *Error           { return newError(CodeInvalidProof, msg) }
func Paused(msg string) *Error                 { return newError(CodePaused, msg) }
func InvalidChain(msg string) *Error           { return newError(CodeInvalidChain, msg) }
func DuplicateSignature(msg string) *Error     { return newError(CodeDuplicateSignature, msg) }
func ThresholdTooHigh(msg string) *Error       { return newError(CodeThresholdTooHigh, msg) }
func AlreadyValidator(msg string) *Error       { return newError(CodeAlreadyValidator, msg) }
func UnknownValidator(msg string) *Error       { return newError(CodeUnknownValidator, msg) }
func NotFound(msg string) *Error               { return newError(CodeNotFound, msg) }
func InvalidInput(msg string) *Error           { return newError(CodeInvalidInput, msg) }
func Internal(msg string) *Error               { return newError(CodeInternal, msg) }

// CodeOf extracts the category from err, or CodeInternal when err is not a
// bridge error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatusOf maps any error to an HTTP status.
func HTTPStatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is re-exports the stdlib matcher so call sites can stay on one import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As re-exports the stdlib matcher.
func As(err error, target interface{}) bool { return errors.As(err, target) }
