package protocol

import "fmt"

// Tag is the one character type code used in the text grammar.
type Tag byte

const (
	TagShort   Tag = 'N'
	TagLong    Tag = 'U'
	TagText    Tag = 'S'
	TagBlob    Tag = 'H'
	TagDecimal Tag = 'D'
)

const (
	// BitmapSize is the byte width of the presence bitmap that opens every message.
	BitmapSize = 4
	// MaxFieldNumber is the exclusive upper bound on field numbers.
	MaxFieldNumber = BitmapSize * 8
	// MaxPayloadLen is the exclusive upper bound on Text and Blob byte length.
	MaxPayloadLen = 1000

	payloadPrefixLen = 3
)

// ParseTag validates s as a single character type tag.
func ParseTag(s string) (Tag, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	t := Tag(s[0])
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagShort, TagLong, TagText, TagBlob, TagDecimal:
		return true
	}
	return false
}

func (t Tag) String() string {
	return string(rune(t))
}
