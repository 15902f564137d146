package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCategory = regexp.MustCompile(`^[\pL\pN &'_-]{0,40}$`)
	reToken    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

// ID validates a simple resource identifier (product ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a product name: required, at most 80 characters.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 80 {
		return "", false
	}
	return s, true
}

func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 1000 {
		return "", false
	}
	return s, true
}

// Category is optional free text.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCategory.MatchString(s)
}

// Price must be a positive finite amount.
func Price(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Token checks the shape of a client supplied access token. An empty token
// is allowed here; the adapter decides whether one is needed.
func Token(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reToken.MatchString(s)
}
