package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

func TestParse_ThreeSurfacePatterns(t *testing.T) {
	cases := []struct {
		input string
		want  Parsed
	}{
		{"is dog a type of mammal?", Parsed{Type: reasoning.QuestionSubclassOf, Head: "dog", Tail: "mammal"}},
		{"is Lassie a dog?", Parsed{Type: reasoning.QuestionInstanceOf, Head: "Lassie", Tail: "dog"}},
		{"is Luna an orca?", Parsed{Type: reasoning.QuestionInstanceOf, Head: "Luna", Tail: "orca"}},
		{"is hemlock considered to be poisonous?", Parsed{Type: reasoning.QuestionHasAttribute, Head: "hemlock", Tail: "poisonous"}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_RejectsNonMatchingInput(t *testing.T) {
	_, err := Parse("how are pufferfish and fish related?")
	require.Error(t, err)
	var parseErr *ErrParseFailure
	assert.ErrorAs(t, err, &parseErr)
}

func TestParse_RequiresFullMatchNotPartial(t *testing.T) {
	_, err := Parse("is dog a type of mammal? extra trailing text")
	assert.Error(t, err)
}

func TestParse_RoundTrip(t *testing.T) {
	cases := []Parsed{
		{Type: reasoning.QuestionSubclassOf, Head: "dog", Tail: "mammal"},
		{Type: reasoning.QuestionInstanceOf, Head: "Lassie", Tail: "dog"},
		{Type: reasoning.QuestionHasAttribute, Head: "hemlock", Tail: "poisonous"},
	}

	for _, p := range cases {
		formatted := Format(p)
		reparsed, err := Parse(formatted)
		require.NoError(t, err)
		assert.Equal(t, p, reparsed)
	}
}
