package viewers

import (
	"strings"

	"golang.org/x/text/cases"
)

// labelMatcher does case-insensitive substring matching with Unicode case
// folding, so "STRASSE" finds "straße".
type labelMatcher struct {
	caser  cases.Caser
	needle string
}

func newLabelMatcher(filter string) *labelMatcher {
	m := &labelMatcher{caser: cases.Fold()}
	m.needle = m.caser.String(strings.TrimSpace(filter))
	return m
}

func (m *labelMatcher) active() bool { return m.needle != "" }

func (m *labelMatcher) matches(label string) bool {
	return strings.Contains(m.caser.String(label), m.needle)
}
