// Package faq holds the canned-answer tables the assistant can start from:
// the built-in SoftSell questions and tables read from YAML files.
package faq

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"softsell-assistant/internal/domain"
)

// Defaults returns the reference table, in the order the widget suggests
// the questions.
func Defaults() []domain.CannedAnswer {
	return []domain.CannedAnswer{
		{
			Question: "How do I sell my license?",
			Answer:   "To sell your license, go to the 'Get a Quote' tab, choose your software, and follow the on-screen steps.",
		},
		{
			Question: "Is there a fee for using SoftSell?",
			Answer:   "SoftSell charges a small service fee of 5% on every successful transaction.",
		},
		{
			Question: "How fast will I receive payment?",
			Answer:   "You’ll receive payment within 1-2 business days after the buyer confirms receipt.",
		},
		{
			Question: "What types of software can I sell?",
			Answer:   "You can sell licenses for most major software brands including Microsoft, Adobe, and more.",
		},
	}
}

type document struct {
	Answers []domain.CannedAnswer `yaml:"answers"`
}

// LoadYAML decodes a document of the form
//
//	answers:
//	  - question: "..."
//	    answer: "..."
//
// Questions are kept verbatim since lookups are exact matches.
func LoadYAML(r io.Reader) ([]domain.CannedAnswer, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("faq: document is empty")
		}
		return nil, fmt.Errorf("faq: decode yaml: %w", err)
	}
	for i, a := range doc.Answers {
		if strings.TrimSpace(a.Question) == "" {
			return nil, fmt.Errorf("faq: entry %d: question is empty", i)
		}
		if strings.TrimSpace(a.Answer) == "" {
			return nil, fmt.Errorf("faq: entry %d: answer is empty", i)
		}
	}
	return doc.Answers, nil
}

func LoadFile(path string) ([]domain.CannedAnswer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("faq: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadYAML(f)
}
