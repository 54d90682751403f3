// Package question parses the three fixed natural-language question
// surfaces into structured (type, head, tail) triples.
package question

import "github.com/cloud-princess/ontology-processor/internal/reasoning"

// Parsed is a successfully parsed question, ready for validation against
// the Graph Store.
type Parsed struct {
	Type reasoning.QuestionType
	Head string
	Tail string
}
