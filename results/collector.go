package results

import (
	"github.com/pkg/errors"

	"github.com/ansel1/tally/identifier"
	"github.com/ansel1/tally/parser"
)

// Aggregator counts test outcomes per grouping key.
//
// Every recorded outcome increments exactly one counter in exactly one row.
// The row for a key is created the first time the key is seen, so State().Rows
// keeps first-seen order.
//
// An Aggregator is not safe for concurrent use; the caller delivers outcomes
// one at a time.
type Aggregator struct {
	mode  identifier.Mode
	state *State
}

// NewAggregator creates an aggregator grouping by mode.
func NewAggregator(mode identifier.Mode) *Aggregator {
	return &Aggregator{
		mode:  mode,
		state: NewState(),
	}
}

// Mode returns the grouping mode.
func (a *Aggregator) Mode() identifier.Mode {
	return a.mode
}

// State returns the accumulated state. Callers must not modify it.
func (a *Aggregator) State() *State {
	return a.state
}

// Record counts one outcome for the test identified by id.
// A malformed identifier is returned as an error and nothing is counted.
func (a *Aggregator) Record(o Outcome, id identifier.Identifier) error {
	key, err := identifier.Resolve(id, a.mode)
	if err != nil {
		return errors.Wrapf(err, "recording %s", o)
	}
	a.state.row(key).Counts.add(o, 1)
	return nil
}

// AddSuccess records a passing test.
func (a *Aggregator) AddSuccess(id identifier.Identifier) error {
	return a.Record(OutcomeSuccess, id)
}

// AddError records a test that errored. The cause is not used.
func (a *Aggregator) AddError(id identifier.Identifier, _ error) error {
	return a.Record(OutcomeError, id)
}

// AddFailure records a failed test. The cause is not used.
func (a *Aggregator) AddFailure(id identifier.Identifier, _ error) error {
	return a.Record(OutcomeFailure, id)
}

// AddDeprecated records a deprecated test. The cause is not used.
func (a *Aggregator) AddDeprecated(id identifier.Identifier, _ error) error {
	return a.Record(OutcomeDeprecated, id)
}

// AddSkip records a skipped test. The reason is not used.
func (a *Aggregator) AddSkip(id identifier.Identifier, _ error) error {
	return a.Record(OutcomeSkip, id)
}

// Observe records the outcome carried by a stream event.
// It returns false for events that are not test outcomes: package-level
// results, run/output/pause events and the like.
func (a *Aggregator) Observe(event parser.TestEvent) (bool, error) {
	outcome, ok := OutcomeForAction(event.Action)
	if !ok {
		return false, nil
	}
	id, ok := event.Identifier()
	if !ok {
		return false, nil
	}

	var err error
	switch outcome {
	case OutcomeSuccess:
		err = a.AddSuccess(id)
	case OutcomeError:
		err = a.AddError(id, nil)
	case OutcomeFailure:
		err = a.AddFailure(id, nil)
	case OutcomeDeprecated:
		err = a.AddDeprecated(id, nil)
	case OutcomeSkip:
		err = a.AddSkip(id, nil)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasFailures returns true if any test failed or errored.
func (a *Aggregator) HasFailures() bool {
	totals := a.state.Totals()
	return totals.Failure > 0 || totals.Error > 0
}
