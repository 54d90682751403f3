package question

import (
	"fmt"
	"regexp"

	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

// ErrParseFailure is returned when the input string matches none of the
// three recognized surface patterns. It never propagates past the
// orchestrator, which converts it into a DONT_KNOW QueryResult.
type ErrParseFailure struct {
	Input string
}

func (e *ErrParseFailure) Error() string {
	return fmt.Sprintf("question: %q matches no recognized pattern", e.Input)
}

// Patterns are tried in this order; the first surface that fully matches
// wins. Each keeps the keyword text case-insensitive while leaving the
// captured head/tail groups exactly as typed.
var (
	subclassPattern  = regexp.MustCompile(`(?i)^is\s+(.+?)\s+a\s+type\s+of\s+(.+?)\s*\?$`)
	instancePattern  = regexp.MustCompile(`(?i)^is\s+(.+?)\s+an?\s+(.+?)\s*\?$`)
	attributePattern = regexp.MustCompile(`(?i)^is\s+(.+?)\s+considered\s+to\s+be\s+(.+?)\s*\?$`)
)

// Parse maps a natural-language question string to a structured triple.
// The entire string must match one of the three patterns; there is no
// partial-match fallback.
func Parse(input string) (Parsed, error) {
	if m := subclassPattern.FindStringSubmatch(input); m != nil {
		return Parsed{Type: reasoning.QuestionSubclassOf, Head: m[1], Tail: m[2]}, nil
	}
	if m := instancePattern.FindStringSubmatch(input); m != nil {
		return Parsed{Type: reasoning.QuestionInstanceOf, Head: m[1], Tail: m[2]}, nil
	}
	if m := attributePattern.FindStringSubmatch(input); m != nil {
		return Parsed{Type: reasoning.QuestionHasAttribute, Head: m[1], Tail: m[2]}, nil
	}
	return Parsed{}, &ErrParseFailure{Input: input}
}

// Format is the inverse of Parse, used by the parse round-trip testable
// property: formatting a triple and parsing it back must yield the
// original triple.
func Format(p Parsed) string {
	switch p.Type {
	case reasoning.QuestionSubclassOf:
		return fmt.Sprintf("is %s a type of %s?", p.Head, p.Tail)
	case reasoning.QuestionInstanceOf:
		return fmt.Sprintf("is %s %s %s?", p.Head, article(p.Tail), p.Tail)
	case reasoning.QuestionHasAttribute:
		return fmt.Sprintf("is %s considered to be %s?", p.Head, p.Tail)
	default:
		return ""
	}
}

// article picks "an" for a tail beginning with a vowel sound's written
// vowel, "a" otherwise — good enough for the round-trip property since
// Parse treats "a"/"an" identically.
func article(tail string) string {
	if len(tail) == 0 {
		return "a"
	}
	switch tail[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	default:
		return "a"
	}
}
