// Package identifier turns test identifiers into grouping keys.
//
// A test reaches the summary in one of three shapes:
//
//   - StructuredAddress: an explicit (module, path, method) triple.
//   - ContextString: "[pkg.mod context=Class]:method".
//   - DottedString: "pkg.mod.Class.method" or "pkg.mod.helper.method".
//
// Raw strings are sorted into a shape by Classify before anything else looks at them.
package identifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const contextMarker = " context="

// ErrMalformedIdentifier is returned when an identifier does not fit the shape it was classified as.
var ErrMalformedIdentifier = errors.New("malformed test identifier")

// Location is the parsed form of an identifier.
// Class is empty when the test does not belong to a class.
type Location struct {
	Path   string
	Class  string
	Method string
}

// Identifier is one of StructuredAddress, ContextString or DottedString.
type Identifier interface {
	// Location parses the identifier.
	Location() (Location, error)
	String() string

	isIdentifier()
}

// StructuredAddress is a test that carries its own address.
type StructuredAddress struct {
	Module string
	Path   string
	Method string
}

// ContextString is a string identifier carrying a " context=" annotation.
type ContextString string

// DottedString is a plain dotted string identifier.
type DottedString string

// Classify sorts a raw string identifier into its shape.
func Classify(raw string) Identifier {
	if strings.Contains(raw, contextMarker) {
		return ContextString(raw)
	}
	return DottedString(raw)
}

// Resolve computes the grouping key of id under mode.
func Resolve(id Identifier, mode Mode) (string, error) {
	loc, err := id.Location()
	if err != nil {
		return "", err
	}
	return mode.Key(loc), nil
}

func (a StructuredAddress) Location() (Location, error) {
	loc := Location{Path: a.Path, Method: a.Method}
	// Split at the first dot only; later dots stay in the method so
	// subtest names like "TestX.v1.2" still resolve.
	if class, method, ok := strings.Cut(a.Method, "."); ok {
		loc.Class = class
		loc.Method = method
	}
	return loc, nil
}

func (a StructuredAddress) String() string {
	return a.Path + ":" + a.Method
}

func (StructuredAddress) isIdentifier() {}

// Location splits "[path context=Class]:method".
func (c ContextString) Location() (Location, error) {
	s := string(c)
	if n := strings.Count(s, ":"); n != 1 {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: want exactly one ':' in context form, found %d", s, n)
	}
	bracketed, method, _ := strings.Cut(s, ":")
	if len(bracketed) < 2 {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: missing bracketed path", s)
	}
	path, class, ok := strings.Cut(bracketed[1:len(bracketed)-1], contextMarker)
	if !ok {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: context marker outside brackets", s)
	}
	return Location{Path: path, Class: class, Method: method}, nil
}

func (c ContextString) String() string {
	return string(c)
}

func (ContextString) isIdentifier() {}

// Location splits "path.Class.method" from the right. A lowercase class
// segment is a nested module or function, so it moves back onto the path.
func (d DottedString) Location() (Location, error) {
	s := string(d)
	head, method, ok := cutLast(s, ".")
	if !ok {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: want at least path.class.method", s)
	}
	path, class, ok := cutLast(head, ".")
	if !ok {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: want at least path.class.method", s)
	}
	if class == "" {
		return Location{}, errors.Wrapf(ErrMalformedIdentifier, "%q: empty class segment", s)
	}
	if r, _ := utf8.DecodeRuneInString(class); unicode.IsLower(r) {
		path = path + "." + class
		class = ""
	}
	return Location{Path: path, Class: class, Method: method}, nil
}

func (d DottedString) String() string {
	return string(d)
}

func (DottedString) isIdentifier() {}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
