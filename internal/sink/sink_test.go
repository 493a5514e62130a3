package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/fieldwire/internal/config"
	"github.com/danmuck/fieldwire/internal/protocol"
	"github.com/danmuck/fieldwire/internal/testutil/testlog"
)

func sampleMessage(t *testing.T) []byte {
	t.Helper()
	msg := protocol.NewMessage()
	for _, line := range []string{"0 N 42", "1 U 1000000", "2 S hello", "3 H deadbeef", "4 D 12.345"} {
		if err := msg.InsertLine(line); err != nil {
			t.Fatalf("insert %q: %v", line, err)
		}
	}
	b, err := protocol.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestFileSinkRoundTrip(t *testing.T) {
	testlog.Start(t)
	payload := sampleMessage(t)
	for _, compression := range []string{"", config.CompressionNone, config.CompressionSnappy, config.CompressionZstd} {
		path := filepath.Join(t.TempDir(), "message.bin")
		s, err := Open(context.Background(), config.Sink{Mode: config.ModeFile, File: path, Compression: compression})
		if err != nil {
			t.Fatalf("%q: open: %v", compression, err)
		}
		n, err := s.Send(context.Background(), payload)
		if err != nil {
			t.Fatalf("%q: send: %v", compression, err)
		}
		if n != len(payload) {
			t.Fatalf("%q: written got=%d want=%d", compression, n, len(payload))
		}
		if err := s.Close(); err != nil {
			t.Fatalf("%q: close: %v", compression, err)
		}

		r, err := OpenFile(path, compression)
		if err != nil {
			t.Fatalf("%q: open for read: %v", compression, err)
		}
		got, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("%q: read: %v", compression, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("%q: read back mismatch: got % x want % x", compression, got, payload)
		}
	}
}

func TestFileSinkUncompressedIsRawWireBytes(t *testing.T) {
	testlog.Start(t)
	payload := sampleMessage(t)
	path := filepath.Join(t.TempDir(), "message.bin")
	s, err := CreateFile(path, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Send(context.Background(), payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("file differs from wire bytes")
	}
}

func TestFileSinkCreateFails(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "missing", "message.bin")
	_, err := CreateFile(path, "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist through wrap, got %v", err)
	}
}

func TestFileSinkCanceledContext(t *testing.T) {
	testlog.Start(t)
	s, err := CreateFile(filepath.Join(t.TempDir(), "message.bin"), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Send(ctx, []byte{0, 0, 0, 0}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTCPSinkDeliversBytes(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		received <- b
	}()

	payload := sampleMessage(t)
	s, err := Open(context.Background(), config.Sink{Mode: config.ModeTCP, Addr: ln.Addr().String(), Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n, err := s.Send(context.Background(), payload)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("written got=%d want=%d", n, len(payload))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, payload) {
			t.Fatalf("peer got % x want % x", got, payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("peer never received message")
	}
}

func TestTCPSinkDialFailure(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := DialTCP(context.Background(), addr, time.Second); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestOpenRejectsIncompleteConfig(t *testing.T) {
	testlog.Start(t)
	if _, err := Open(context.Background(), config.Sink{Mode: config.ModeTCP}); err == nil {
		t.Fatalf("expected error for tcp without addr")
	}
	if _, err := Open(context.Background(), config.Sink{Mode: config.ModeFile, File: "x", Compression: "lz4"}); err == nil {
		t.Fatalf("expected error for unknown compression")
	}
}

func TestCheckWriteReportsShortWrite(t *testing.T) {
	testlog.Start(t)
	n, err := checkWrite("test", 2, 4, nil)
	if n != 2 || !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("got n=%d err=%v", n, err)
	}
	if _, err := checkWrite("test", 4, 4, nil); err != nil {
		t.Fatalf("full write reported error: %v", err)
	}
}
