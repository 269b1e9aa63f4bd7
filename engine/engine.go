package engine

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/ansel1/tally/parser"
)

// EventType identifies the type of event emitted by the engine
type EventType string

const (
	EventRawLine  EventType = "raw"      // Line that is not a test event
	EventTest     EventType = "test"     // Parsed test event
	EventError    EventType = "error"    // Error occurred during processing
	EventComplete EventType = "complete" // Input stream finished
)

// DefaultMaxLineSize bounds a single input line. go test output for a
// test that logs heavily can be far longer than bufio's 64KiB default.
const DefaultMaxLineSize = 1024 * 1024

// Event represents a single event emitted by the engine
type Event struct {
	Type      EventType
	RawLine   []byte           // Populated for EventRawLine
	TestEvent parser.TestEvent // Populated for EventTest
	Error     error            // Populated for EventError
	Fatal     bool             // EventError only: input stopped early and later lines were lost
}

// Engine turns an input stream into events. It keeps no state about tests.
type Engine struct {
	rawWriter   io.Writer
	jsonWriter  io.Writer
	maxLineSize int
}

// Option configures the engine
type Option func(*Engine)

// WithRawOutput copies every input line to w.
func WithRawOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.rawWriter = w
	}
}

// WithJSONOutput copies every line that parsed as a test event to w.
func WithJSONOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.jsonWriter = w
	}
}

// WithMaxLineSize overrides DefaultMaxLineSize.
func WithMaxLineSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLineSize = n
		}
	}
}

// NewEngine creates a new event processing engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{maxLineSize: DefaultMaxLineSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stream reads input line by line and emits events in input order.
//
// The last event is always EventComplete, after which the channel is closed.
// A JSON line without an Action is not a test event and is emitted raw.
// A read error ends the stream with a Fatal EventError; a failing tee
// writer is reported once with a non-fatal one.
func (e *Engine) Stream(input io.Reader) <-chan Event {
	events := make(chan Event, 100)

	go func() {
		defer close(events)

		raw := newTee(e.rawWriter, "raw output", events)
		js := newTee(e.jsonWriter, "json output", events)

		scanner := bufio.NewScanner(input)
		bufSize := 64 * 1024
		if e.maxLineSize < bufSize {
			bufSize = e.maxLineSize
		}
		scanner.Buffer(make([]byte, 0, bufSize), e.maxLineSize)
		for scanner.Scan() {
			line := scanner.Bytes()
			raw.writeLine(line)

			testEvent, err := parser.ParseEvent(line)
			if err != nil || testEvent.Action == "" {
				// Scanner reuses its buffer
				lineCopy := make([]byte, len(line))
				copy(lineCopy, line)
				events <- Event{
					Type:    EventRawLine,
					RawLine: lineCopy,
				}
				continue
			}

			js.writeLine(line)
			events <- Event{
				Type:      EventTest,
				TestEvent: testEvent,
			}
		}

		if err := scanner.Err(); err != nil {
			events <- Event{
				Type:  EventError,
				Error: errors.Wrap(err, "reading input"),
				Fatal: true,
			}
		}

		events <- Event{
			Type: EventComplete,
		}
	}()

	return events
}

// tee copies lines to an optional writer. After the first write error it
// reports once and stops writing.
type tee struct {
	w      io.Writer
	name   string
	events chan<- Event
}

func newTee(w io.Writer, name string, events chan<- Event) *tee {
	return &tee{w: w, name: name, events: events}
}

func (t *tee) writeLine(line []byte) {
	if t.w == nil {
		return
	}
	if _, err := t.w.Write(append(line[:len(line):len(line)], '\n')); err != nil {
		t.events <- Event{
			Type:  EventError,
			Error: errors.Wrapf(err, "writing %s", t.name),
		}
		t.w = nil
	}
}
