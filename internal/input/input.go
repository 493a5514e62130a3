// Package input reads field lines typed by a user into a protocol.Message.
package input

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/danmuck/fieldwire/internal/observability"
	"github.com/danmuck/fieldwire/internal/protocol"
	"github.com/rs/zerolog/log"
)

// ReportFunc receives every line that could not be added to the message.
// line is 1-based.
type ReportFunc func(line int, text string, err error)

// ReadMessage reads trimmed lines from r until EOF or a line of at most one
// character. Bad lines are passed to report and skipped; they never change
// the message. The returned error is a read or context error only.
func ReadMessage(ctx context.Context, r io.Reader, report ReportFunc) (*protocol.Message, error) {
	msg := protocol.NewMessage()
	scanner := bufio.NewScanner(r)
	for num := 1; scanner.Scan(); num++ {
		if err := ctx.Err(); err != nil {
			return msg, err
		}
		line := strings.TrimSpace(scanner.Text())
		if len(line) <= 1 {
			log.Debug().Int("line", num).Msg("input.ReadMessage end of message")
			return msg, nil
		}
		if err := msg.InsertLine(line); err != nil {
			observability.RecordInputLine(false)
			log.Debug().Int("line", num).Err(err).Msg("input.ReadMessage rejected line")
			if report != nil {
				report(num, line, err)
			}
			continue
		}
		observability.RecordInputLine(true)
	}
	return msg, scanner.Err()
}
