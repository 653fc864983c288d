package usecase

import (
	"fmt"
	"strings"

	"softsell-assistant/internal/domain"
)

// CannedAnswers is an ordered, exact-match question table.
type CannedAnswers struct {
	order   []string
	answers map[string]string
}

// NewCannedAnswers builds a table from entries. Questions must be non-blank
// and unique; they are matched byte for byte.
func NewCannedAnswers(entries []domain.CannedAnswer) (*CannedAnswers, error) {
	t := &CannedAnswers{answers: make(map[string]string, len(entries))}
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			return nil, fmt.Errorf("usecase: canned answer %d: question must not be empty", i)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("usecase: canned answer %d: answer must not be empty", i)
		}
		if _, dup := t.answers[e.Question]; dup {
			return nil, fmt.Errorf("usecase: canned answer %d: duplicate question %q", i, e.Question)
		}
		t.answers[e.Question] = e.Answer
		t.order = append(t.order, e.Question)
	}
	return t, nil
}

// Lookup returns the answer for an exact question match.
func (t *CannedAnswers) Lookup(question string) (string, bool) {
	if t == nil {
		return "", false
	}
	a, ok := t.answers[question]
	return a, ok
}

// Questions returns the known questions in table order.
func (t *CannedAnswers) Questions() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

func (t *CannedAnswers) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
