package sink

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TCP sends messages over one TCP connection.
type TCP struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
}

// DialTCP connects to addr. timeout bounds the dial and each write; zero
// means no limit beyond ctx.
func DialTCP(ctx context.Context, addr string, timeout time.Duration) (*TCP, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "sink: dial %s", addr)
	}
	log.Debug().Str("addr", addr).Msg("sink.DialTCP connected")
	return &TCP{conn: conn, addr: addr, timeout: timeout}, nil
}

func (s *TCP) Name() string {
	return "tcp"
}

func (s *TCP) Send(ctx context.Context, b []byte) (int, error) {
	deadline, ok := ctx.Deadline()
	if !ok && s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return checkWrite(s.Name(), 0, len(b), errors.Wrapf(err, "sink: set deadline %s", s.addr))
	}
	n, err := s.conn.Write(b)
	if err != nil {
		err = errors.Wrapf(err, "sink: write %s", s.addr)
	}
	return checkWrite(s.Name(), n, len(b), err)
}

func (s *TCP) Close() error {
	return s.conn.Close()
}
