package results

// Outcome is the final result of a single test.
type Outcome int

// Outcomes in report column order.
const (
	OutcomeSuccess Outcome = iota
	OutcomeError
	OutcomeFailure
	OutcomeDeprecated
	OutcomeSkip
)

// Outcomes lists every outcome in report column order.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeError, OutcomeFailure, OutcomeDeprecated, OutcomeSkip}

var outcomeNames = [...]string{
	OutcomeSuccess:    "success",
	OutcomeError:      "error",
	OutcomeFailure:    "failure",
	OutcomeDeprecated: "deprecated",
	OutcomeSkip:       "skip",
}

// String returns the report column name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// OutcomeForAction maps an event action to an outcome.
// go test reports "pass", "fail" and "skip"; other runners may use the outcome names directly.
func OutcomeForAction(action string) (Outcome, bool) {
	switch action {
	case "pass", "success":
		return OutcomeSuccess, true
	case "error":
		return OutcomeError, true
	case "fail", "failure":
		return OutcomeFailure, true
	case "deprecated":
		return OutcomeDeprecated, true
	case "skip":
		return OutcomeSkip, true
	}
	return 0, false
}

// Counts holds one counter per outcome.
type Counts struct {
	Success    int
	Error      int
	Failure    int
	Deprecated int
	Skip       int
}

// Get returns the counter for o.
func (c Counts) Get(o Outcome) int {
	switch o {
	case OutcomeSuccess:
		return c.Success
	case OutcomeError:
		return c.Error
	case OutcomeFailure:
		return c.Failure
	case OutcomeDeprecated:
		return c.Deprecated
	case OutcomeSkip:
		return c.Skip
	}
	return 0
}

func (c *Counts) add(o Outcome, n int) {
	switch o {
	case OutcomeSuccess:
		c.Success += n
	case OutcomeError:
		c.Error += n
	case OutcomeFailure:
		c.Failure += n
	case OutcomeDeprecated:
		c.Deprecated += n
	case OutcomeSkip:
		c.Skip += n
	}
}

// Total returns the sum of all counters.
func (c Counts) Total() int {
	return c.Success + c.Error + c.Failure + c.Deprecated + c.Skip
}

// Row is the counters for one grouping key.
// An empty Key is the row for tests with nothing to group on.
type Row struct {
	Key    string
	Counts Counts
}

// State holds one Row per grouping key in the order keys were first seen.
type State struct {
	Rows  []*Row
	index map[string]*Row
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Rows:  make([]*Row, 0),
		index: make(map[string]*Row),
	}
}

// Row returns the row for key, if one has been created.
func (s *State) Row(key string) (*Row, bool) {
	row, ok := s.index[key]
	return row, ok
}

// row returns the row for key, appending a zeroed one if it doesn't exist yet.
func (s *State) row(key string) *Row {
	if row, ok := s.index[key]; ok {
		return row
	}
	row := &Row{Key: key}
	s.index[key] = row
	s.Rows = append(s.Rows, row)
	return row
}

// Totals sums every row, including the row for the empty key.
func (s *State) Totals() Counts {
	var totals Counts
	for _, row := range s.Rows {
		for _, o := range Outcomes {
			totals.add(o, row.Counts.Get(o))
		}
	}
	return totals
}
