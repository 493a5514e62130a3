package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLine        = errors.New("protocol: malformed field line")
	ErrNumberParse          = errors.New("protocol: invalid field number")
	ErrUnknownType          = errors.New("protocol: unknown value type")
	ErrNumericOverflow      = errors.New("protocol: numeric value out of range")
	ErrMalformedHex         = errors.New("protocol: malformed hex value")
	ErrMalformedDecimal     = errors.New("protocol: malformed decimal value")
	ErrFieldNumberTooLarge  = errors.New("protocol: field number too large")
	ErrDuplicateFieldNumber = errors.New("protocol: duplicate field number")
	ErrPayloadTooLarge      = errors.New("protocol: payload too large")
	ErrTruncated            = errors.New("protocol: truncated data")
	ErrInvalidLength        = errors.New("protocol: invalid length")
	ErrUnknownField         = errors.New("protocol: field not in schema")
	ErrTrailingData         = errors.New("protocol: trailing data after message")
	ErrNilMessage           = errors.New("protocol: nil message")
)

// FieldNumberTooLargeError reports a field number outside the bitmap width.
type FieldNumberTooLargeError struct {
	Number uint32
}

func (e *FieldNumberTooLargeError) Error() string {
	return fmt.Sprintf("protocol: field number %d too large (max %d)", e.Number, MaxFieldNumber)
}

func (e *FieldNumberTooLargeError) Is(target error) bool {
	return target == ErrFieldNumberTooLarge
}

// DuplicateFieldError reports a second insert for a field number.
type DuplicateFieldError struct {
	Number uint32
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("protocol: duplicate field number %d", e.Number)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateFieldNumber
}

// PayloadTooLargeError reports a Text or Blob payload that does not fit the
// three digit length prefix.
type PayloadTooLargeError struct {
	Tag  Tag
	Size int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("protocol: %s payload of %d bytes exceeds %d", e.Tag, e.Size, MaxPayloadLen)
}

func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

// LineError ties a parse failure to its position in a multi-line input.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
