package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Decoder parses a Server-Sent Events byte stream back into Events.
// It understands exactly the framing WriteSSE produces plus blank
// keep-alive lines; anything else is a protocol error.
type Decoder struct {
	scanner *bufio.Scanner
}

// maxEventSize bounds a single SSE line. Tool outputs embed full payloads,
// so this is generous.
const maxEventSize = 4 << 20

// NewDecoder wraps a reader producing an SSE stream.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxEventSize)
	return &Decoder{scanner: s}
}

// Next returns the next event, or io.EOF when the stream ends cleanly.
func (d *Decoder) Next() (Event, error) {
	var eventType string

	for d.scanner.Scan() {
		line := d.scanner.Text()

		switch {
		case line == "":
			// Frame separator; reset and continue to the next frame.
			eventType = ""

		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")

		case strings.HasPrefix(line, "data: "):
			if eventType == "" {
				return Event{}, fmt.Errorf("sse: data line without event type: %q", line)
			}
			data := strings.TrimPrefix(line, "data: ")
			ev, err := unmarshalEvent(eventType, []byte(data))
			if err != nil {
				return Event{}, err
			}
			return ev, nil

		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive, ignore.

		default:
			return Event{}, fmt.Errorf("sse: unexpected line: %q", line)
		}
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("sse: reading stream: %w", err)
	}
	return Event{}, io.EOF
}

func unmarshalEvent(eventType string, data []byte) (Event, error) {
	// Unknown JSON fields are tolerated for forward compatibility.
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("sse: decoding %s event: %w", eventType, err)
	}
	// The event: line is authoritative for the type; the JSON repeats it.
	if ev.Type == "" {
		ev.Type = EventType(eventType)
	}
	if string(ev.Type) != eventType {
		return Event{}, fmt.Errorf("sse: frame type %q does not match payload type %q", eventType, ev.Type)
	}
	return ev, nil
}
