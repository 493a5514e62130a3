package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Field pairs a field number with its value.
type Field struct {
	Number uint32
	Value  Value
}

// ParseField parses one line of the form "<number> <tag> <value...>".
// Tokens after the tag are joined with single spaces, so runs of whitespace
// inside a Text value collapse to one space.
func ParseField(line string) (Field, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return Field{}, fmt.Errorf("%w: want \"<number> <type> <value>\", got %d tokens", ErrMalformedLine, len(tokens))
	}
	n, err := parseUint(tokens[0], 32)
	if err != nil {
		return Field{}, fmt.Errorf("%w: %w", ErrNumberParse, err)
	}
	value, err := ParseValue(tokens[1], strings.Join(tokens[2:], " "))
	if err != nil {
		return Field{}, fmt.Errorf("field %d: %w", n, err)
	}
	log.Debug().Uint64("number", n).Stringer("tag", value.Tag()).Msg("protocol.ParseField")
	return Field{Number: uint32(n), Value: value}, nil
}

// String renders f in the text grammar accepted by ParseField.
func (f Field) String() string {
	if f.Value == nil {
		return strconv.FormatUint(uint64(f.Number), 10)
	}
	return fmt.Sprintf("%d %s %s", f.Number, f.Value.Tag(), f.Value.String())
}
