package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ansel1/tally/engine"
	"github.com/ansel1/tally/output/format"
	"github.com/ansel1/tally/parser"
	"github.com/ansel1/tally/results"
)

// SimpleOutput writes simple text output for -notty mode.
// It records outcomes as they arrive, accumulates output, and writes it
// followed by the summary report when the stream completes.
type SimpleOutput struct {
	writer     io.Writer
	output     []string
	aggregator *results.Aggregator
}

// NewSimpleOutput creates a simple output writer
func NewSimpleOutput(w io.Writer, aggregator *results.Aggregator) *SimpleOutput {
	return &SimpleOutput{
		writer:     w,
		output:     make([]string, 0),
		aggregator: aggregator,
	}
}

// ProcessEvents consumes events from channel and writes to output.
//
// An outcome with a malformed identifier, or input that ends early, stops
// processing: the error is returned and nothing is written.
func (s *SimpleOutput) ProcessEvents(events <-chan engine.Event) error {
	for evt := range events {
		switch evt.Type {
		case engine.EventRawLine:
			s.output = append(s.output, string(evt.RawLine))

		case engine.EventTest:
			if err := s.handleTestEvent(evt.TestEvent); err != nil {
				drain(events)
				return err
			}

		case engine.EventComplete:
			return s.writeOutput()

		case engine.EventError:
			if evt.Fatal {
				drain(events)
				return evt.Error
			}
			log.WithError(evt.Error).Warn("output error")
		}
	}
	return nil
}

// drain lets the engine finish so its goroutine can exit.
func drain(events <-chan engine.Event) {
	go func() {
		for range events {
		}
	}()
}

// handleTestEvent records the event's outcome, if it has one, and keeps its output.
func (s *SimpleOutput) handleTestEvent(evt parser.TestEvent) error {
	recorded, err := s.aggregator.Observe(evt)
	if err != nil {
		return errors.Wrapf(err, "%s event for package %q", evt.Action, evt.Package)
	}
	if !recorded {
		log.WithFields(log.Fields{
			"action":  evt.Action,
			"package": evt.Package,
			"test":    evt.Test,
		}).Trace("event is not a test outcome")
	}

	if evt.Output != "" {
		s.output = append(s.output, strings.TrimRight(evt.Output, "\n"))
	}
	return nil
}

// writeOutput writes all accumulated output and the summary report
func (s *SimpleOutput) writeOutput() error {
	for _, line := range s.output {
		if _, err := fmt.Fprintln(s.writer, line); err != nil {
			return err
		}
	}

	return format.WriteReport(format.NewLineWriter(s.writer), s.aggregator)
}

// HasFailures returns true if any tests failed or errored
func (s *SimpleOutput) HasFailures() bool {
	return s.aggregator.HasFailures()
}
