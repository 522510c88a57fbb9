// Package roadmap propagates roadmap prefix codes down an issue hierarchy
// as labels.
//
// A roadmap code is the dotted identifier that opens an issue summary, such
// as "C1.5.1 Improve search". Every issue below a coded root receives the
// codes of its ancestry as lowercase labels, capped at three.
package roadmap

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^([A-Z]\d+(?:\.\d+)*)`)

// Code is a roadmap prefix code, e.g. "C1.5.1".
type Code string

// ParseCode extracts the roadmap code from the start of summary. Leading
// whitespace is ignored.
func ParseCode(summary string) (Code, bool) {
	m := codePattern.FindStringSubmatch(strings.TrimLeft(summary, " \t"))
	if m == nil {
		return "", false
	}
	return Code(m[1]), true
}

// Family is the leading letter of the code.
func (c Code) Family() string {
	if c == "" {
		return ""
	}
	return string(c[0])
}

// Label is the label form of the code.
func (c Code) Label() string {
	return strings.ToLower(string(c))
}
