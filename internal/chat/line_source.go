package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/game/color"
)

// LineSource reads chat events from text lines of the form
//
//	name[#rrggbb][*]: message
//
// where a trailing '*' on the sender marks a privileged chatter.
type LineSource struct {
	r      io.Reader
	logger *zap.Logger
}

// NewLineSource creates a LineSource over r.
//
// Precondition: r and logger must be non-nil.
func NewLineSource(r io.Reader, logger *zap.Logger) *LineSource {
	if r == nil || logger == nil {
		panic("chat: NewLineSource requires a reader and a logger")
	}
	return &LineSource{r: r, logger: logger}
}

// Run sends one Event per well-formed line to out until the input ends or
// ctx is cancelled. Malformed lines are logged and skipped.
//
// Postcondition: Returns nil at end of input, ctx.Err() on cancellation, or
// the read error.
func (s *LineSource) Run(ctx context.Context, out chan<- Event) error {
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		line := scanner.Text()
		ev, ok := ParseLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				s.logger.Debug("skipping malformed chat line", zap.String("line", line))
			}
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading chat lines: %w", err)
	}
	return nil
}

// ParseLine parses a single chat line. The sender ID is the lowercased name.
//
// Postcondition: Returns (event, true) for a line with a non-empty sender, or
// (zero, false).
func ParseLine(line string) (Event, bool) {
	sender, message, found := strings.Cut(line, ":")
	if !found {
		return Event{}, false
	}
	sender = strings.TrimSpace(sender)

	privileged := strings.HasSuffix(sender, "*")
	sender = strings.TrimSuffix(sender, "*")

	hex := DefaultColor
	if name, c, ok := strings.Cut(sender, "#"); ok {
		sender = name
		if normalized, valid := color.Normalize(c); valid {
			hex = normalized
		}
	}

	sender = strings.TrimSpace(sender)
	if sender == "" || strings.ContainsAny(sender, " \t") {
		return Event{}, false
	}
	return Event{
		Message:    strings.TrimSpace(message),
		SenderID:   strings.ToLower(sender),
		SenderName: sender,
		Color:      hex,
		Privileged: privileged,
	}, true
}
