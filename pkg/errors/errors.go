// Package errors provides structured error handling for Janitor.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
	ExitRejected   = 6 // User declined a signature request
)

// JanitorError is the structured error type for Janitor.
type JanitorError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *JanitorError) Error() string {
	msg := e.Message

	// Details are sorted so output is deterministic
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *JanitorError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for JanitorError by comparing codes.
func (e *JanitorError) Is(target error) bool {
	var t *JanitorError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// General errors.
var (
	ErrGeneral = &JanitorError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &JanitorError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrAuthentication = &JanitorError{
		Code:     "AUTHENTICATION_FAILED",
		Message:  "authentication failed",
		ExitCode: ExitAuth,
	}

	ErrNotFound = &JanitorError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrPermission = &JanitorError{
		Code:     "PERMISSION_DENIED",
		Message:  "permission denied",
		ExitCode: ExitPermission,
	}

	ErrInsufficientFunds = &JanitorError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transaction",
		ExitCode: ExitPermission,
	}

	ErrNotSupported = &JanitorError{
		Code:     "NOT_SUPPORTED",
		Message:  "operation not supported for this chain",
		ExitCode: ExitInput,
	}
)

// Chain and indexer errors.
var (
	ErrInvalidAddress = &JanitorError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrNetworkError = &JanitorError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrAPIKeyRequired = &JanitorError{
		Code:       "API_KEY_REQUIRED",
		Message:    "indexer API key is required",
		Suggestion: "set the key in config.yaml or the matching JANITOR_* environment variable",
		ExitCode:   ExitInput,
	}

	ErrAPIError = &JanitorError{
		Code:     "API_ERROR",
		Message:  "indexer API returned an error",
		ExitCode: ExitGeneral,
	}

	ErrRateLimited = &JanitorError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited by remote API",
		ExitCode: ExitGeneral,
	}

	ErrTxRejected = &JanitorError{
		Code:     "TX_REJECTED",
		Message:  "transaction rejected by network",
		ExitCode: ExitGeneral,
	}

	ErrInvalidTransaction = &JanitorError{
		Code:     "INVALID_TRANSACTION",
		Message:  "invalid transaction",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &JanitorError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}
)

// Token and action errors.
var (
	ErrTokenNotFound = &JanitorError{
		Code:     "TOKEN_NOT_FOUND",
		Message:  "token not found",
		ExitCode: ExitNotFound,
	}

	ErrTokenExists = &JanitorError{
		Code:     "TOKEN_EXISTS",
		Message:  "token is already in the list",
		ExitCode: ExitInput,
	}

	ErrZeroBalance = &JanitorError{
		Code:     "ZERO_BALANCE",
		Message:  "You hold 0 of this token",
		ExitCode: ExitInput,
	}

	ErrUserRejected = &JanitorError{
		Code:     "USER_REJECTED",
		Message:  "signature request rejected by user",
		ExitCode: ExitRejected,
	}

	ErrBatchUnsupported = &JanitorError{
		Code:     "BATCH_UNSUPPORTED",
		Message:  "wallet does not support batched calls",
		ExitCode: ExitGeneral,
	}

	ErrNoRoute = &JanitorError{
		Code:     "NO_ROUTE",
		Message:  "no swap route available",
		ExitCode: ExitNotFound,
	}

	ErrTooManyAccounts = &JanitorError{
		Code:     "TOO_MANY_ACCOUNTS",
		Message:  "too many accounts for a single transaction",
		ExitCode: ExitInput,
	}
)

// Keystore errors.
var (
	ErrKeyNotFound = &JanitorError{
		Code:       "KEY_NOT_FOUND",
		Message:    "no signing key configured for this chain",
		Suggestion: "import one with 'janitor key import'",
		ExitCode:   ExitNotFound,
	}

	ErrKeyExists = &JanitorError{
		Code:     "KEY_EXISTS",
		Message:  "a signing key already exists for this chain",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &JanitorError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrInvalidKey = &JanitorError{
		Code:     "INVALID_KEY",
		Message:  "invalid private key",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &JanitorError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong password or corrupted file",
		ExitCode: ExitAuth,
	}
)

// Config and storage errors.
var (
	ErrConfigNotFound = &JanitorError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &JanitorError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrCorruptStore = &JanitorError{
		Code:     "CORRUPT_STORE",
		Message:  "stored data is corrupted",
		ExitCode: ExitGeneral,
	}
)

// New creates a new JanitorError with the given code and message.
func New(code, message string) *JanitorError {
	return &JanitorError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var je *JanitorError
	if errors.As(err, &je) {
		return &JanitorError{
			Code:       je.Code,
			Message:    fmt.Sprintf("%s: %s", msg, je.Message),
			Details:    je.Details,
			Suggestion: je.Suggestion,
			Cause:      err,
			ExitCode:   je.ExitCode,
		}
	}

	return &JanitorError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var je *JanitorError
	if errors.As(err, &je) {
		return &JanitorError{
			Code:       je.Code,
			Message:    je.Message,
			Details:    details,
			Suggestion: je.Suggestion,
			Cause:      je.Cause,
			ExitCode:   je.ExitCode,
		}
	}

	return &JanitorError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var je *JanitorError
	if errors.As(err, &je) {
		return &JanitorError{
			Code:       je.Code,
			Message:    je.Message,
			Details:    je.Details,
			Suggestion: suggestion,
			Cause:      je.Cause,
			ExitCode:   je.ExitCode,
		}
	}

	return &JanitorError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var je *JanitorError
	if errors.As(err, &je) {
		return je.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var je *JanitorError
	if errors.As(err, &je) {
		return je.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
