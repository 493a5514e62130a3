package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Value is one typed field value. The set of implementations is closed:
// Short, Long, Text, Blob and Decimal.
type Value interface {
	// Tag returns the type code of the variant.
	Tag() Tag
	// Len returns the number of bytes Encode produces.
	Len() int
	// Encode returns the wire bytes for the value.
	Encode() ([]byte, error)
	// String renders the value in the text grammar.
	String() string

	appendTo(dst []byte) ([]byte, error)
}

// Short is a 16-bit unsigned value, tag N.
type Short uint16

// Long is a 32-bit unsigned value, tag U.
type Long uint32

// Text is a UTF-8 string value, tag S.
type Text string

// Blob is a raw byte value, tag H. It is written as hex in the text grammar.
type Blob []byte

// NewBlob copies b into a Blob.
func NewBlob(b []byte) Blob {
	out := make(Blob, len(b))
	copy(out, b)
	return out
}

// ParseValue builds a Value from a type tag and its text payload.
func ParseValue(tag, text string) (Value, error) {
	t, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}
	switch t {
	case TagShort:
		v, err := parseUint(text, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNumericOverflow, err)
		}
		return Short(v), nil
	case TagLong:
		v, err := parseUint(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNumericOverflow, err)
		}
		return Long(v), nil
	case TagText:
		return Text(text), nil
	case TagBlob:
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedHex, err)
		}
		return Blob(b), nil
	case TagDecimal:
		return ParseDecimal(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}

// parseUint parses a decimal unsigned integer with at most one leading '+'.
func parseUint(text string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(text, "+"), 10, bits)
}

func (v Short) Tag() Tag {
	return TagShort
}

func (v Short) Len() int {
	return 2
}

func (v Short) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (v Short) Encode() ([]byte, error) {
	return v.appendTo(make([]byte, 0, 2))
}

func (v Short) appendTo(dst []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint16(dst, uint16(v)), nil
}

func (v Long) Tag() Tag {
	return TagLong
}

func (v Long) Len() int {
	return 4
}

func (v Long) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (v Long) Encode() ([]byte, error) {
	return v.appendTo(make([]byte, 0, 4))
}

func (v Long) appendTo(dst []byte) ([]byte, error) {
	return binary.LittleEndian.AppendUint32(dst, uint32(v)), nil
}

func (v Text) Tag() Tag {
	return TagText
}

func (v Text) Len() int {
	return payloadPrefixLen + len(v)
}

func (v Text) String() string {
	return string(v)
}

func (v Text) Encode() ([]byte, error) {
	return v.appendTo(make([]byte, 0, v.Len()))
}

func (v Text) appendTo(dst []byte) ([]byte, error) {
	return appendPayload(dst, TagText, []byte(v))
}

func (v Blob) Tag() Tag {
	return TagBlob
}

func (v Blob) Len() int {
	return payloadPrefixLen + len(v)
}

func (v Blob) String() string {
	return hex.EncodeToString(v)
}

func (v Blob) Encode() ([]byte, error) {
	return v.appendTo(make([]byte, 0, v.Len()))
}

func (v Blob) appendTo(dst []byte) ([]byte, error) {
	return appendPayload(dst, TagBlob, v)
}

// appendPayload writes the zero padded three digit length and the payload.
func appendPayload(dst []byte, tag Tag, payload []byte) ([]byte, error) {
	if len(payload) >= MaxPayloadLen {
		return dst, &PayloadTooLargeError{Tag: tag, Size: len(payload)}
	}
	dst = fmt.Appendf(dst, "%03d", len(payload))
	return append(dst, payload...), nil
}
