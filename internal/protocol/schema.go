package protocol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Schema names the type of each field number. The wire format carries no
// type information, so a decoder needs the sender's schema.
type Schema map[uint32]Tag

// ParseSchema builds a Schema from config entries such as "0" = "N".
func ParseSchema(raw map[string]string) (Schema, error) {
	schema := make(Schema, len(raw))
	for key, tag := range raw {
		n, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("schema field %q: %w: %w", key, ErrNumberParse, err)
		}
		t, err := ParseTag(strings.ToUpper(strings.TrimSpace(tag)))
		if err != nil {
			return nil, fmt.Errorf("schema field %d: %w", n, err)
		}
		schema[uint32(n)] = t
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// SchemaOf returns the schema msg was built with.
func SchemaOf(msg *Message) Schema {
	schema := make(Schema, msg.Len())
	for _, f := range msg.fields {
		schema[f.Number] = f.Value.Tag()
	}
	return schema
}

// Validate checks every number fits the bitmap and every tag is known.
func (s Schema) Validate() error {
	for n, t := range s {
		if n >= MaxFieldNumber {
			return &FieldNumberTooLargeError{Number: n}
		}
		if !t.Valid() {
			return fmt.Errorf("schema field %d: %w: %q", n, ErrUnknownType, t.String())
		}
	}
	return nil
}

// Raw converts s back to config form.
func (s Schema) Raw() map[string]string {
	out := make(map[string]string, len(s))
	for n, t := range s {
		out[strconv.FormatUint(uint64(n), 10)] = t.String()
	}
	return out
}

// Numbers returns the field numbers of s in ascending order.
func (s Schema) Numbers() []uint32 {
	out := make([]uint32, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}
