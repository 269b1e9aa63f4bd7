package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansel1/tally/identifier"
	"github.com/ansel1/tally/parser"
)

func TestAggregatorRecord(t *testing.T) {
	agg := NewAggregator(identifier.ModeTopModule)

	require.NoError(t, agg.AddSuccess(identifier.DottedString("alpha.mod.Klass.test_a")))
	require.NoError(t, agg.AddFailure(identifier.DottedString("beta.mod.Klass.test_b"), nil))
	require.NoError(t, agg.AddSuccess(identifier.DottedString("alpha.other.Klass.test_c")))
	require.NoError(t, agg.AddSkip(identifier.ContextString("[gamma.mod context=Klass]:test_d"), nil))

	state := agg.State()
	require.Len(t, state.Rows, 3)
	assert.Equal(t, "alpha", state.Rows[0].Key)
	assert.Equal(t, "beta", state.Rows[1].Key)
	assert.Equal(t, "gamma", state.Rows[2].Key)

	assert.Equal(t, Counts{Success: 2}, state.Rows[0].Counts)
	assert.Equal(t, Counts{Failure: 1}, state.Rows[1].Counts)
	assert.Equal(t, Counts{Skip: 1}, state.Rows[2].Counts)
}

func TestAggregatorEachOutcome(t *testing.T) {
	agg := NewAggregator(identifier.ModeModulePath)
	id := identifier.StructuredAddress{Path: "pkg.mod", Method: "test_x"}

	require.NoError(t, agg.AddSuccess(id))
	require.NoError(t, agg.AddError(id, nil))
	require.NoError(t, agg.AddFailure(id, nil))
	require.NoError(t, agg.AddDeprecated(id, nil))
	require.NoError(t, agg.AddSkip(id, nil))

	row, ok := agg.State().Row("pkg.mod")
	require.True(t, ok)
	for _, o := range Outcomes {
		assert.Equal(t, 1, row.Counts.Get(o), o.String())
	}
}

// Recording the same outcome K times adds exactly K, however the calls interleave.
func TestAggregatorRepeatedRecords(t *testing.T) {
	agg := NewAggregator(identifier.ModeClass)
	a := identifier.DottedString("pkg.mod.Alpha.test")
	b := identifier.DottedString("pkg.mod.Beta.test")

	for i := 0; i < 7; i++ {
		require.NoError(t, agg.AddFailure(a, nil))
		if i%2 == 0 {
			require.NoError(t, agg.AddSuccess(b))
		}
	}

	row, ok := agg.State().Row("Alpha")
	require.True(t, ok)
	assert.Equal(t, 7, row.Counts.Failure)
	row, ok = agg.State().Row("Beta")
	require.True(t, ok)
	assert.Equal(t, 4, row.Counts.Success)
}

// The sum of all counters always equals the number of recorded outcomes,
// including outcomes that land on the empty key.
func TestAggregatorConservation(t *testing.T) {
	ids := []identifier.Identifier{
		identifier.DottedString("pkg.mod.Klass.test_a"),
		identifier.DottedString("pkg.mod.helper.test_b"), // no class
		identifier.ContextString("[other.mod context=Klass]:test_c"),
		identifier.StructuredAddress{Path: "third", Method: "test_d"}, // no class
		identifier.StructuredAddress{Path: "third", Method: "Suite.test_e"},
	}

	for _, mode := range identifier.Modes {
		t.Run(string(mode), func(t *testing.T) {
			agg := NewAggregator(mode)
			n := 0
			for i := 0; i < 23; i++ {
				o := Outcomes[i%len(Outcomes)]
				require.NoError(t, agg.Record(o, ids[i%len(ids)]))
				n++
			}
			totals := agg.State().Totals()
			assert.Equal(t, n, totals.Total())
		})
	}
}

func TestAggregatorEmptyKeyRow(t *testing.T) {
	agg := NewAggregator(identifier.ModeClass)
	require.NoError(t, agg.AddSuccess(identifier.DottedString("pkg.mod.helper.test_a")))
	require.NoError(t, agg.AddSuccess(identifier.DottedString("pkg.mod.Klass.test_b")))

	row, ok := agg.State().Row("")
	require.True(t, ok, "tests without a class still get a row")
	assert.Equal(t, 1, row.Counts.Success)
	assert.Equal(t, 2, agg.State().Totals().Success)
}

func TestAggregatorMalformed(t *testing.T) {
	agg := NewAggregator(identifier.ModeTopModule)

	err := agg.AddSuccess(identifier.DottedString("lonely"))
	require.Error(t, err)
	assert.ErrorIs(t, err, identifier.ErrMalformedIdentifier)
	assert.Contains(t, err.Error(), "recording success")
	assert.Empty(t, agg.State().Rows, "nothing is counted for a malformed identifier")
}

func TestAggregatorObserve(t *testing.T) {
	agg := NewAggregator(identifier.ModeModulePath)

	events := []struct {
		event    parser.TestEvent
		recorded bool
	}{
		{parser.TestEvent{Action: "start", Package: "example.com/a"}, false},
		{parser.TestEvent{Action: "run", Package: "example.com/a", Test: "TestOne"}, false},
		{parser.TestEvent{Action: "output", Package: "example.com/a", Test: "TestOne", Output: "=== RUN   TestOne\n"}, false},
		{parser.TestEvent{Action: "pass", Package: "example.com/a", Test: "TestOne"}, true},
		{parser.TestEvent{Action: "fail", Package: "example.com/a", Test: "TestTwo"}, true},
		{parser.TestEvent{Action: "skip", Package: "example.com/b", Test: "TestThree"}, true},
		{parser.TestEvent{Action: "fail", Package: "example.com/a"}, false}, // package result
		{parser.TestEvent{Action: "deprecated", ID: "py.mod.Klass.test_old"}, true},
		{parser.TestEvent{Action: "error", Address: &parser.Address{Path: "py.mod", Method: "Klass.test_err"}}, true},
	}

	for _, e := range events {
		recorded, err := agg.Observe(e.event)
		require.NoError(t, err)
		assert.Equal(t, e.recorded, recorded, "%s %s", e.event.Action, e.event.Test)
	}

	state := agg.State()
	require.Len(t, state.Rows, 3)
	assert.Equal(t, "example.com.a", state.Rows[0].Key)
	assert.Equal(t, Counts{Success: 1, Failure: 1}, state.Rows[0].Counts)
	assert.Equal(t, "example.com.b", state.Rows[1].Key)
	assert.Equal(t, Counts{Skip: 1}, state.Rows[1].Counts)
	assert.Equal(t, "py.mod", state.Rows[2].Key)
	assert.Equal(t, Counts{Deprecated: 1, Error: 1}, state.Rows[2].Counts)
	assert.True(t, agg.HasFailures())
}

func TestAggregatorObserveMalformed(t *testing.T) {
	agg := NewAggregator(identifier.ModeTopModule)
	recorded, err := agg.Observe(parser.TestEvent{Action: "pass", ID: "nodots"})
	assert.False(t, recorded)
	assert.ErrorIs(t, err, identifier.ErrMalformedIdentifier)
}

func TestAggregatorHasFailures(t *testing.T) {
	agg := NewAggregator(identifier.ModeTopModule)
	assert.False(t, agg.HasFailures())

	require.NoError(t, agg.AddSkip(identifier.DottedString("a.B.c"), nil))
	require.NoError(t, agg.AddDeprecated(identifier.DottedString("a.B.c"), nil))
	assert.False(t, agg.HasFailures())

	require.NoError(t, agg.AddError(identifier.DottedString("a.B.c"), nil))
	assert.True(t, agg.HasFailures())
}

func TestOutcomeForAction(t *testing.T) {
	tests := map[string]Outcome{
		"pass":       OutcomeSuccess,
		"success":    OutcomeSuccess,
		"error":      OutcomeError,
		"fail":       OutcomeFailure,
		"failure":    OutcomeFailure,
		"deprecated": OutcomeDeprecated,
		"skip":       OutcomeSkip,
	}
	for action, want := range tests {
		got, ok := OutcomeForAction(action)
		assert.True(t, ok, action)
		assert.Equal(t, want, got, action)
	}

	for _, action := range []string{"run", "output", "pause", "cont", "start", "bench", ""} {
		_, ok := OutcomeForAction(action)
		assert.False(t, ok, action)
	}
}

func TestOutcomeString(t *testing.T) {
	var names []string
	for _, o := range Outcomes {
		names = append(names, o.String())
	}
	assert.Equal(t, []string{"success", "error", "failure", "deprecated", "skip"}, names)
	assert.Equal(t, "unknown", Outcome(42).String())
}
