package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Marshal returns the wire form of msg: the little-endian presence bitmap
// followed by every value in ascending field number order. Values are not
// framed; a reader needs the same schema to find field boundaries.
func Marshal(msg *Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	buf := make([]byte, 0, msg.Size())
	buf = binary.LittleEndian.AppendUint32(buf, msg.Bitmap())
	for _, f := range msg.fields {
		var err error
		buf, err = f.Value.appendTo(buf)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", f.Number, err)
		}
	}
	return buf, nil
}

// Encode writes msg to w in a single write.
func Encode(w io.Writer, msg *Message) error {
	buf, err := Marshal(msg)
	if err != nil {
		return err
	}
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}
