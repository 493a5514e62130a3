package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Decode reads one message from r. The schema supplies the type of every
// field whose bit is set in the bitmap.
func Decode(r io.Reader, schema Schema) (*Message, error) {
	head, err := readN(r, BitmapSize)
	if err != nil {
		return nil, err
	}
	bitmap := binary.LittleEndian.Uint32(head)

	msg := NewMessage()
	for n := uint32(0); n < MaxFieldNumber; n++ {
		if bitmap&(1<<n) == 0 {
			continue
		}
		tag, ok := schema[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownField, n)
		}
		value, err := readValue(r, tag)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", n, err)
		}
		// Bits are visited in ascending order, so appending keeps the order.
		msg.fields = append(msg.fields, Field{Number: n, Value: value})
	}
	return msg, nil
}

// Unmarshal decodes b, which must hold exactly one message.
func Unmarshal(b []byte, schema Schema) (*Message, error) {
	r := bytes.NewReader(b)
	msg, err := Decode(r, schema)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return msg, nil
}

func readValue(r io.Reader, tag Tag) (Value, error) {
	switch tag {
	case TagShort:
		b, err := readN(r, 2)
		if err != nil {
			return nil, err
		}
		return Short(binary.LittleEndian.Uint16(b)), nil
	case TagLong:
		b, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return Long(binary.LittleEndian.Uint32(b)), nil
	case TagText:
		b, err := readPayload(r)
		if err != nil {
			return nil, err
		}
		return Text(b), nil
	case TagBlob:
		b, err := readPayload(r)
		if err != nil {
			return nil, err
		}
		return Blob(b), nil
	case TagDecimal:
		return readDecimal(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag.String())
	}
}

func readPayload(r io.Reader) ([]byte, error) {
	prefix, err := readN(r, payloadPrefixLen)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: length prefix %q", ErrInvalidLength, prefix)
		}
		size = size*10 + int(c-'0')
	}
	return readN(r, size)
}

// readDecimal recovers the digit count from its mod 10 digit by taking the
// smallest positive count, so it is exact for one to ten digits.
func readDecimal(r io.Reader) (Value, error) {
	head, err := readN(r, 2)
	if err != nil {
		return nil, err
	}
	if head[0] < '0' || head[0] > '9' {
		return nil, fmt.Errorf("%w: decimal length %q", ErrInvalidLength, head[0])
	}
	count := int(head[0] - '0')
	if count == 0 {
		count = 10
	}
	digits, err := readN(r, count)
	if err != nil {
		return nil, err
	}
	return NewDecimal(string(digits), int(head[1]))
}

func readN(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return buf, nil
}
