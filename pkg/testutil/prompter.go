// pkg/testutil/prompter.go
// DEPENDENCIES: pkg/prompt
// PURPOSE: Canned answers for interactive gates

package testutil

import (
	"strings"

	"github.com/arthur-debert/stowman/pkg/prompt"
)

// ScriptedPrompter answers prompts from a fixed script, in order.
// Running out of answers behaves like end of input: Confirm declines
// and Ask returns prompt.ErrInterrupted.
type ScriptedPrompter struct {
	Answers []string
	// Questions records every prompt shown, in order.
	Questions []string
	next      int
}

// NewScriptedPrompter creates a prompter that replies with answers.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Answers: answers}
}

// Yes is a prompter that accepts the first n confirmations.
func Yes(n int) *ScriptedPrompter {
	answers := make([]string, n)
	for i := range answers {
		answers[i] = "y"
	}
	return NewScriptedPrompter(answers...)
}

func (s *ScriptedPrompter) Confirm(question string) bool {
	answer, err := s.Ask(question)
	if err != nil {
		return false
	}
	return prompt.IsYes(answer)
}

func (s *ScriptedPrompter) Ask(question string) (string, error) {
	s.Questions = append(s.Questions, question)
	if s.next >= len(s.Answers) {
		return "", prompt.ErrInterrupted
	}
	answer := s.Answers[s.next]
	s.next++
	return strings.TrimSpace(answer), nil
}

// Remaining reports how many scripted answers were not consumed.
func (s *ScriptedPrompter) Remaining() int {
	return len(s.Answers) - s.next
}
