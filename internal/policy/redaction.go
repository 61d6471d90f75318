// Package policy holds content rules applied before transcripts and replies
// leave the process.
package policy

import "regexp"

type redactionRule struct {
	kind    string
	pattern *regexp.Regexp
}

// Order matters: long digit runs are claimed by the card and SSN rules before
// the looser phone rule sees them.
var redactionRules = []redactionRule{
	{"EMAIL", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{"CARD", regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)},
	{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"IP", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{"PHONE", regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)},
}

// RedactPII masks emails, card numbers, social security numbers, IPv4
// addresses and phone numbers in spoken text. changed reports whether any
// rule matched.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	for _, rule := range redactionRules {
		next := rule.pattern.ReplaceAllString(out, "[REDACTED_"+rule.kind+"]")
		if next != out {
			changed = true
			out = next
		}
	}
	return out, changed
}
