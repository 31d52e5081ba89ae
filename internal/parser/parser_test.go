package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedCards int
		expectedQ     string
		expectedA     string
		expectedC     string
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedQ:     "What is the capital of France?",
			expectedA:     "Paris",
			expectedC:     "",
		},
		{
			name:          "Simple Q, A, and C",
			input:         "Q: What is 1+1?\nA: 2\nC: Basic arithmetic",
			expectedCards: 1,
			expectedQ:     "What is 1+1?",
			expectedA:     "2",
			expectedC:     "Basic arithmetic",
		},
		{
			name: "Multiline Answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedQ:     "What are the primary colors?",
			expectedA:     "Red\nBlue\nYellow",
			expectedC:     "",
		},
		{
			name: "Two cards split by a new question",
			input: `
Q: First question
A: First answer
Q: Second question
A: Second answer
`,
			expectedCards: 2,
			expectedQ:     "First question",
			expectedA:     "First answer",
			expectedC:     "",
		},
		{
			name: "Two cards split by a separator",
			input: `
Q: First question
A: First answer
---
Q: Second question
A: Second answer
`,
			expectedCards: 2,
			expectedQ:     "First question",
			expectedA:     "First answer",
			expectedC:     "",
		},
		{
			name:          "Answer without a question is dropped",
			input:         "A: Orphaned answer",
			expectedCards: 0,
		},
		{
			name:          "Prose outside any card is ignored",
			input:         "# Notes on Go\n\nSome prose.\n\nQ: What does gofmt do?\nA: Formats Go source",
			expectedCards: 1,
			expectedQ:     "What does gofmt do?",
			expectedA:     "Formats Go source",
			expectedC:     "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse returned an unexpected error: %v", err)
			}
			if len(cards) != tc.expectedCards {
				t.Fatalf("Expected %d cards, got %d", tc.expectedCards, len(cards))
			}
			if tc.expectedCards == 0 {
				return
			}
			if cards[0].Question != tc.expectedQ {
				t.Errorf("Expected question %q, got %q", tc.expectedQ, cards[0].Question)
			}
			if cards[0].Answer != tc.expectedA {
				t.Errorf("Expected answer %q, got %q", tc.expectedA, cards[0].Answer)
			}
			if cards[0].Context != tc.expectedC {
				t.Errorf("Expected context %q, got %q", tc.expectedC, cards[0].Context)
			}
		})
	}
}
