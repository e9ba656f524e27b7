// Package errors carries a machine-readable code alongside an error so the
// HTTP layer can pick a status and a safe public message.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeTooLarge     Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupported  Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is rendered to clients.
type Metadata struct {
	HTTPStatus int
	// PublicMessage is shown when the error's own message must stay private.
	PublicMessage string
	// EchoMessage means the error's message was written for the client.
	EchoMessage bool
	// DetailsAllowed lets structured details (field errors and the like) out.
	DetailsAllowed bool
}

func clientFault(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, EchoMessage: true, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:   clientFault(http.StatusBadRequest, "Date invalide.", true),
	CodeUnauthorized: clientFault(http.StatusUnauthorized, "Autentificare necesară.", false),
	CodeForbidden:    clientFault(http.StatusForbidden, "Acces interzis.", false),
	CodeNotFound:     clientFault(http.StatusNotFound, "Resursa nu a fost găsită.", false),
	CodeConflict:     clientFault(http.StatusConflict, "Conflict cu starea curentă.", false),
	CodeIdempotency:  clientFault(http.StatusConflict, "Cheia de idempotență a fost refolosită.", true),
	CodeTooLarge:     clientFault(http.StatusRequestEntityTooLarge, "Fișierul este prea mare.", true),
	CodeUnsupported:  clientFault(http.StatusUnsupportedMediaType, "Tip de fișier neacceptat.", true),
	CodeRateLimit:    clientFault(http.StatusTooManyRequests, "Prea multe cereri. Încearcă din nou mai târziu.", false),

	CodeInternal:   {HTTPStatus: http.StatusInternalServerError, PublicMessage: "Eroare internă a serverului."},
	CodeDependency: {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "Serviciu temporar indisponibil.", DetailsAllowed: true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// PublicMessage picks what a client may see for e.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.Code())
	if meta.EchoMessage && e.Message() != "" {
		return e.message
	}
	return meta.PublicMessage
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err; a nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails mutates and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
