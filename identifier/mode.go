package identifier

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which part of a test's location becomes its grouping key.
type Mode string

const (
	ModeTopModule  Mode = "top-module"  // First dot-delimited segment of the path
	ModeModulePath Mode = "module-path" // Full dotted path
	ModeClass      Mode = "class"       // Class name, empty if the test has none
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeTopModule

// Modes lists the accepted modes in display order.
var Modes = []Mode{ModeTopModule, ModeModulePath, ModeClass}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Errorf("invalid summary-report-on value %q (choose from %s)", s, modeChoices())
}

func (m Mode) String() string {
	return string(m)
}

// Set implements flag.Value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Key reduces a resolved location to the grouping key for m.
// An empty key means the location has nothing to group on under m.
func (m Mode) Key(loc Location) string {
	switch m {
	case ModeModulePath:
		return loc.Path
	case ModeClass:
		return loc.Class
	default:
		top, _, _ := strings.Cut(loc.Path, ".")
		return top
	}
}

func modeChoices() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
