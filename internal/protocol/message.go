package protocol

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Message is a set of fields keyed by number, iterated in ascending order.
// Insert is the only mutation; a Message is not safe for concurrent use.
type Message struct {
	fields []Field
}

// NewMessage returns an empty message.
func NewMessage() *Message {
	return &Message{}
}

// search returns the index where n is or would be stored.
func (m *Message) search(n uint32) int {
	return sort.Search(len(m.fields), func(i int) bool {
		return m.fields[i].Number >= n
	})
}

// Insert adds f. It fails without changing m when the number is outside the
// bitmap or already present.
func (m *Message) Insert(f Field) error {
	if f.Value == nil {
		return fmt.Errorf("%w: field %d has no value", ErrUnknownType, f.Number)
	}
	if f.Number >= MaxFieldNumber {
		log.Debug().Uint32("number", f.Number).Msg("protocol.Insert rejected: number too large")
		return &FieldNumberTooLargeError{Number: f.Number}
	}
	i := m.search(f.Number)
	if i < len(m.fields) && m.fields[i].Number == f.Number {
		log.Debug().Uint32("number", f.Number).Msg("protocol.Insert rejected: duplicate")
		return &DuplicateFieldError{Number: f.Number}
	}
	m.fields = append(m.fields, Field{})
	copy(m.fields[i+1:], m.fields[i:])
	m.fields[i] = f
	return nil
}

// InsertLine parses line with ParseField and inserts the result.
func (m *Message) InsertLine(line string) error {
	f, err := ParseField(line)
	if err != nil {
		return err
	}
	return m.Insert(f)
}

// Bitmap returns the presence bitmap: bit n is set when field n is present.
func (m *Message) Bitmap() uint32 {
	var bitmap uint32
	for _, f := range m.fields {
		bitmap |= 1 << f.Number
	}
	return bitmap
}

// Len returns the number of fields.
func (m *Message) Len() int {
	return len(m.fields)
}

// Has reports whether field n is present.
func (m *Message) Has(n uint32) bool {
	_, ok := m.Get(n)
	return ok
}

// Get returns the value of field n.
func (m *Message) Get(n uint32) (Value, bool) {
	i := m.search(n)
	if i < len(m.fields) && m.fields[i].Number == n {
		return m.fields[i].Value, true
	}
	return nil, false
}

// Fields returns a copy of the fields in ascending number order.
func (m *Message) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Size returns the number of bytes Marshal produces for m.
func (m *Message) Size() int {
	size := BitmapSize
	for _, f := range m.fields {
		size += f.Value.Len()
	}
	return size
}
