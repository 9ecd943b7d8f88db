package explain

import (
	"regexp"
	"strings"
	"unicode"
)

const maxTextLen = 180

var (
	digitsRe   = regexp.MustCompile(`[0-9%]`)
	spaceRe    = regexp.MustCompile(`\s+`)
	clinicalRe = regexp.MustCompile(`(?i)\b(diagnos\w*|diabet\w*|prediabet\w*|insulin resistan\w*|disease|disorder|medication|dose|dosage|prescri\w*|treat\w*|cure\w*|hypoglyc\w*|hyperglyc\w*)\b`)
)

// Sanitize normalizes provider prose to a single short line. It rejects text that carries
// numbers or clinical vocabulary instead of trying to repair it.
func Sanitize(text string) (string, bool) {
	s := spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	s = strings.Trim(s, "\"'` ")
	if s == "" {
		return "", false
	}
	if digitsRe.MatchString(s) || clinicalRe.MatchString(s) {
		return "", false
	}
	if r := []rune(s); len(r) > maxTextLen {
		cut := string(r[:maxTextLen-1])
		if i := strings.LastIndex(cut, " "); i > maxTextLen/2 {
			cut = cut[:i]
		}
		s = strings.TrimRightFunc(cut, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		}) + "."
	}
	return s, true
}
