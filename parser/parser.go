package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ansel1/tally/identifier"
)

// TestEvent represents a single event from `go test -json` style output.
//
// ID and Address are extensions for runners whose tests are not Go
// packages. When present they take precedence over Package/Test.
type TestEvent struct {
	Time       time.Time `json:"Time"`
	Action     string    `json:"Action"`
	Package    string    `json:"Package"`
	Test       string    `json:"Test,omitempty"`
	Output     string    `json:"Output,omitempty"`
	Elapsed    float64   `json:"Elapsed,omitempty"`
	Source     string    `json:"Source,omitempty"`
	ImportPath string    `json:"ImportPath,omitempty"`
	ID         string    `json:"ID,omitempty"`
	Address    *Address  `json:"Address,omitempty"`
}

// Address is the JSON form of identifier.StructuredAddress.
type Address struct {
	Module string `json:"Module"`
	Path   string `json:"Path"`
	Method string `json:"Method"`
}

// ParseEvent parses a single line of JSON from `go test -json` output
func ParseEvent(line []byte) (TestEvent, error) {
	var event TestEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	return event, nil
}

// Identifier returns the identifier of the test the event is about.
// Package-level events have none.
func (e TestEvent) Identifier() (identifier.Identifier, bool) {
	switch {
	case e.Address != nil:
		return identifier.StructuredAddress{
			Module: e.Address.Module,
			Path:   e.Address.Path,
			Method: e.Address.Method,
		}, true
	case e.ID != "":
		return identifier.Classify(e.ID), true
	case e.Test != "":
		// Subtests and suite methods group under their top-level test.
		return identifier.StructuredAddress{
			Module: e.Package,
			Path:   strings.ReplaceAll(e.Package, "/", "."),
			Method: strings.Replace(e.Test, "/", ".", 1),
		}, true
	}
	return nil, false
}
