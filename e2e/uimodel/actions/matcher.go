package actions

import (
	"fmt"
	"regexp"
	"strings"
)

// TextMatcher decides whether element text is the expected one
type TextMatcher interface {
	Match(text string) bool
	String() string
}

// ExactText matches text equal to s after trimming surrounding whitespace
func ExactText(s string) TextMatcher {
	return exactText(s)
}

// TextPattern matches text against a regular expression
func TextPattern(re *regexp.Regexp) TextMatcher {
	return textPattern{re}
}

type exactText string

func (e exactText) Match(text string) bool {
	return strings.TrimSpace(text) == string(e)
}

func (e exactText) String() string {
	return fmt.Sprintf("%q", string(e))
}

type textPattern struct {
	re *regexp.Regexp
}

func (p textPattern) Match(text string) bool {
	return p.re.MatchString(text)
}

func (p textPattern) String() string {
	return "/" + p.re.String() + "/"
}
