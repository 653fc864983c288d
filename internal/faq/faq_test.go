package faq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"softsell-assistant/internal/domain"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Len(t, d, 4)
	require.Equal(t, "Is there a fee for using SoftSell?", d[1].Question)
	require.Equal(t, "SoftSell charges a small service fee of 5% on every successful transaction.", d[1].Answer)

	// callers get their own copy
	d[0].Answer = "changed"
	require.NotEqual(t, "changed", Defaults()[0].Answer)
}

func TestLoadYAML(t *testing.T) {
	doc := `
answers:
  - question: "Do you buy expired licenses?"
    answer: "No, licenses must be active."
  - question: "Can I sell volume licenses?"
    answer: "Yes."
`
	got, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []domain.CannedAnswer{
		{Question: "Do you buy expired licenses?", Answer: "No, licenses must be active."},
		{Question: "Can I sell volume licenses?", Answer: "Yes."},
	}, got)
}

func TestLoadYAML_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "empty document", doc: "", want: "empty"},
		{name: "unknown field", doc: "answers:\n  - question: q\n    reply: r\n", want: "decode yaml"},
		{name: "blank question", doc: "answers:\n  - question: ' '\n    answer: a\n", want: "question is empty"},
		{name: "blank answer", doc: "answers:\n  - question: q\n    answer: ''\n", want: "answer is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tc.doc))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("answers:\n  - question: q\n    answer: a\n"), 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []domain.CannedAnswer{{Question: "q", Answer: "a"}}, got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "open")
}
