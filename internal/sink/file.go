package sink

import (
	"context"
	"io"
	"os"

	"github.com/danmuck/fieldwire/internal/config"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// File writes messages to a file, optionally through a compressor.
type File struct {
	f    *os.File
	w    io.Writer
	comp io.Closer
	path string
}

// CreateFile creates or truncates path. compression is one of the
// config.Compression* names; empty means none.
func CreateFile(path, compression string) (*File, error) {
	if err := config.ValidateCompression(compression); err != nil {
		return nil, errors.Wrap(err, "sink")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sink: create %s", path)
	}
	s := &File{f: f, w: f, path: path}
	switch compression {
	case config.CompressionSnappy:
		sw := snappy.NewBufferedWriter(f)
		s.w, s.comp = sw, sw
	case config.CompressionZstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "sink: zstd writer")
		}
		s.w, s.comp = zw, zw
	}
	return s, nil
}

func (s *File) Name() string {
	return "file"
}

// Send writes b. With compression on, the count is of message bytes taken
// by the compressor, not bytes on disk.
func (s *File) Send(ctx context.Context, b []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return checkWrite(s.Name(), 0, len(b), err)
	}
	n, err := s.w.Write(b)
	if err != nil {
		err = errors.Wrapf(err, "sink: write %s", s.path)
	}
	return checkWrite(s.Name(), n, len(b), err)
}

// Close flushes the compressor, if any, then syncs and closes the file.
func (s *File) Close() error {
	if s.comp != nil {
		if err := s.comp.Close(); err != nil {
			s.f.Close()
			return errors.Wrapf(err, "sink: flush %s", s.path)
		}
	}
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return errors.Wrapf(err, "sink: sync %s", s.path)
	}
	return s.f.Close()
}

// OpenFile opens a file written by a File sink for reading, undoing its
// compression.
func OpenFile(path, compression string) (io.ReadCloser, error) {
	if err := config.ValidateCompression(compression); err != nil {
		return nil, errors.Wrap(err, "sink")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sink: open %s", path)
	}
	switch compression {
	case config.CompressionSnappy:
		return readCloser{Reader: snappy.NewReader(f), close: f.Close}, nil
	case config.CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "sink: zstd reader")
		}
		return readCloser{Reader: zr, close: func() error {
			zr.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}
