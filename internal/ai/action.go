package ai

import (
	"fmt"
	"strings"

	"github.com/starford/lumina/internal/apperr"
)

// Action is one of the fixed transforms.
type Action string

const (
	Summarize  Action = "summarize"
	Improve    Action = "improve"
	Brainstorm Action = "brainstorm"
	Simplify   Action = "simplify"
	Expand     Action = "expand"
)

var templates = map[Action]string{
	Summarize:  "Provide a concise summary of the following note content. Use bullet points if necessary. Keep it professional and brief.",
	Improve:    "Proofread and enhance the following text. Fix grammar, improve flow, and make it more engaging while maintaining the original meaning.",
	Brainstorm: "Based on the content of this note, suggest 5 related creative ideas or next steps that could be explored.",
	Simplify:   "Rewrite the following content so it's much easier to understand. Use simple language and clear sentences.",
	Expand:     "Elaborate on the key points in this note. Add relevant details and context to make the content more comprehensive.",
}

var labels = map[Action]string{
	Summarize:  "Summarize",
	Improve:    "Improve writing",
	Brainstorm: "Brainstorm ideas",
	Simplify:   "Simplify",
	Expand:     "Expand",
}

// Actions returns every action in display order.
func Actions() []Action {
	return []Action{Summarize, Improve, Brainstorm, Simplify, Expand}
}

// ParseAction accepts an action name in any case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := templates[a]; !ok {
		return "", fmt.Errorf("ai: unknown action %q: %w", s, apperr.ErrInvalid)
	}
	return a, nil
}

// Valid reports whether a is one of the fixed actions.
func (a Action) Valid() bool {
	_, ok := templates[a]
	return ok
}

// Template returns the instruction sent for a.
func (a Action) Template() string { return templates[a] }

// Label is the human-readable name.
func (a Action) Label() string {
	if l, ok := labels[a]; ok {
		return l
	}
	return string(a)
}
