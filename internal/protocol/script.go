package protocol

import (
	"context"
	"strings"

	"github.com/johnsiilver/halfpike"
)

// ParseMessage parses a document holding one field per line. Blank lines and
// lines starting with "#" or "//" are skipped. The first bad line stops the
// parse and is reported as a *LineError with its 1-based line number.
func ParseMessage(ctx context.Context, text string) (*Message, error) {
	sp := &scriptParser{msg: NewMessage()}
	if strings.TrimSpace(text) == "" {
		return sp.msg, nil
	}
	err := halfpike.Parse(ctx, text, sp)
	if sp.err != nil {
		return nil, sp.err
	}
	if err != nil {
		return nil, err
	}
	return sp.msg, nil
}

// scriptParser implements halfpike.HalfPike.
type scriptParser struct {
	msg *Message
	err error
}

// Validate implements halfpike.Validator.
func (p *scriptParser) Validate() error {
	return p.err
}

func (p *scriptParser) Start(_ context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	return p.parseLines
}

func (p *scriptParser) parseLines(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	for {
		if err := ctx.Err(); err != nil {
			p.err = err
			return nil
		}
		line := hp.Next()
		if err := p.insert(line); err != nil {
			p.err = err
			return nil
		}
		// The last line may carry text when the document has no final newline.
		if hp.EOF(line) {
			return nil
		}
	}
}

func (p *scriptParser) insert(line halfpike.Line) error {
	text := lineText(line)
	if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
		return nil
	}
	if err := p.msg.InsertLine(text); err != nil {
		// halfpike counts lines from 0.
		return &LineError{Line: line.LineNum + 1, Err: err}
	}
	return nil
}

// lineText rebuilds a line from its lexed items. Raw is empty on a final
// line that has no trailing newline, so it cannot be used.
func lineText(line halfpike.Line) string {
	vals := make([]string, 0, len(line.Items))
	for _, item := range line.Items {
		if item.Type == halfpike.ItemEOL || item.Type == halfpike.ItemEOF {
			continue
		}
		if v := strings.TrimSpace(item.Val); v != "" {
			vals = append(vals, v)
		}
	}
	return strings.Join(vals, " ")
}
