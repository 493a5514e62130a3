package protocol

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/danmuck/fieldwire/internal/testutil/testlog"
)

func TestRoundTripEncodeDecode(t *testing.T) {
	testlog.Start(t)
	msg := buildMessage(t,
		"0 N 42",
		"1 U 1000000",
		"2 S hello world",
		"3 H deadbeef",
		"4 D 12.345",
		"20 D 1234567890",
		"31 S tail",
	)

	b := mustMarshal(t, msg)
	decoded, err := Unmarshal(b, SchemaOf(msg))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bitmap() != msg.Bitmap() {
		t.Fatalf("bitmap mismatch got=%b want=%b", decoded.Bitmap(), msg.Bitmap())
	}
	for _, f := range msg.Fields() {
		got, ok := decoded.Get(f.Number)
		if !ok {
			t.Fatalf("field %d missing after decode", f.Number)
		}
		if got.Tag() != f.Value.Tag() || got.String() != f.Value.String() {
			t.Fatalf("field %d got %s %q want %s %q", f.Number, got.Tag(), got, f.Value.Tag(), f.Value)
		}
	}

	again := mustMarshal(t, decoded)
	if !bytes.Equal(b, again) {
		t.Fatalf("re-encode mismatch")
	}
}

func TestDecodeReadsOneMessageFromStream(t *testing.T) {
	testlog.Start(t)
	first := buildMessage(t, "0 N 1")
	second := buildMessage(t, "0 N 2")

	var stream bytes.Buffer
	if err := Encode(&stream, first); err != nil {
		t.Fatalf("encode first: %v", err)
	}
	if err := Encode(&stream, second); err != nil {
		t.Fatalf("encode second: %v", err)
	}

	schema := Schema{0: TagShort}
	for _, want := range []Short{1, 2} {
		msg, err := Decode(&stream, schema)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if v, _ := msg.Get(0); v != want {
			t.Fatalf("got %v want %v", v, want)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	testlog.Start(t)
	msg := buildMessage(t, "0 S abc", "1 U 5")
	b := mustMarshal(t, msg)
	schema := SchemaOf(msg)

	for cut := 0; cut < len(b); cut++ {
		_, err := Unmarshal(b[:cut], schema)
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut=%d: expected ErrTruncated, got %v", cut, err)
		}
	}
}

func TestDecodeUnknownField(t *testing.T) {
	testlog.Start(t)
	msg := buildMessage(t, "0 N 1", "5 N 2")
	_, err := Unmarshal(mustMarshal(t, msg), Schema{0: TagShort})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestDecodeTrailingData(t *testing.T) {
	testlog.Start(t)
	msg := buildMessage(t, "0 N 1")
	b := append(mustMarshal(t, msg), 0xFF)
	_, err := Unmarshal(b, SchemaOf(msg))
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
}

func TestDecodeInvalidLengthPrefix(t *testing.T) {
	testlog.Start(t)
	b := []byte{0x01, 0x00, 0x00, 0x00, '0', 'x', '1', 'a'}
	_, err := Unmarshal(b, Schema{0: TagText})
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}

	d := []byte{0x01, 0x00, 0x00, 0x00, 'x', 0x00, '1'}
	_, err = Unmarshal(d, Schema{0: TagDecimal})
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength for decimal, got %v", err)
	}
}

func TestDecodeDecimalBadPrecision(t *testing.T) {
	testlog.Start(t)
	b := []byte{0x01, 0x00, 0x00, 0x00, '2', 0x05, '1', '2'}
	_, err := Unmarshal(b, Schema{0: TagDecimal})
	if !errors.Is(err, ErrMalformedDecimal) {
		t.Fatalf("expected ErrMalformedDecimal, got %v", err)
	}
}

func TestParseMessageSkipsCommentsAndBlankLines(t *testing.T) {
	testlog.Start(t)
	text := "# header\n0 N 42\n\n// note\n1 U 1000000\n   \n2 S hello"
	msg, err := ParseMessage(context.Background(), text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := buildMessage(t, "0 N 42", "1 U 1000000", "2 S hello")
	if !bytes.Equal(mustMarshal(t, msg), mustMarshal(t, want)) {
		t.Fatalf("script message differs from line built message")
	}
}

func TestParseMessageStopsAtFirstBadLine(t *testing.T) {
	testlog.Start(t)
	text := "0 N 1\n0 N 2\n1 N 3\n"
	_, err := ParseMessage(context.Background(), text)
	if !errors.Is(err, ErrDuplicateFieldNumber) {
		t.Fatalf("expected ErrDuplicateFieldNumber, got %v", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("expected LineError, got %T", err)
	}
	if lineErr.Line != 2 {
		t.Fatalf("line got=%d want=2", lineErr.Line)
	}
}

func TestParseMessageLineNumberCountsSkippedLines(t *testing.T) {
	testlog.Start(t)
	_, err := ParseMessage(context.Background(), "0 N 1\n# c\n// d\n3 N x\n")
	if !errors.Is(err, ErrNumericOverflow) {
		t.Fatalf("expected ErrNumericOverflow, got %v", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.Line != 4 {
		t.Fatalf("expected LineError on line 4, got %#v", err)
	}
}

func TestParseMessageWithoutTrailingNewline(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		text  string
		lines []string
	}{
		{"0 N 1", []string{"0 N 1"}},
		{"0 N 1\n1 N 2", []string{"0 N 1", "1 N 2"}},
		{"0 N 1\n4 D 12.345", []string{"0 N 1", "4 D 12.345"}},
		{"2 S hello   world", []string{"2 S hello world"}},
	}
	for _, test := range tests {
		msg, err := ParseMessage(context.Background(), test.text)
		if err != nil {
			t.Fatalf("%q: parse: %v", test.text, err)
		}
		want := buildMessage(t, test.lines...)
		if !bytes.Equal(mustMarshal(t, msg), mustMarshal(t, want)) {
			t.Fatalf("%q: got fields %v want %v", test.text, msg.Fields(), want.Fields())
		}
	}
}

func TestParseMessageLastLineErrorReported(t *testing.T) {
	testlog.Start(t)
	_, err := ParseMessage(context.Background(), "0 N 1\n0 N 2")
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.Line != 2 {
		t.Fatalf("expected LineError on line 2, got %v", err)
	}
}

func TestParseMessageEmpty(t *testing.T) {
	testlog.Start(t)
	msg, err := ParseMessage(context.Background(), "\n\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Len() != 0 {
		t.Fatalf("expected empty message, got %d fields", msg.Len())
	}
}

func TestParseMessageCanceled(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseMessage(ctx, "0 N 1\n"); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
