package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"softsell-assistant/internal/domain"
)

func TestNewCannedAnswers_Validates(t *testing.T) {
	cases := []struct {
		name    string
		entries []domain.CannedAnswer
		want    string
	}{
		{name: "blank question", entries: []domain.CannedAnswer{{Question: " ", Answer: "a"}}, want: "question must not be empty"},
		{name: "blank answer", entries: []domain.CannedAnswer{{Question: "q", Answer: ""}}, want: "answer must not be empty"},
		{name: "duplicate", entries: []domain.CannedAnswer{{Question: "q", Answer: "a"}, {Question: "q", Answer: "b"}}, want: "duplicate question"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCannedAnswers(tc.entries)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCannedAnswers_LookupExactMatch(t *testing.T) {
	table, err := NewCannedAnswers([]domain.CannedAnswer{
		{Question: "How fast will I receive payment?", Answer: "1-2 business days."},
	})
	require.NoError(t, err)

	a, ok := table.Lookup("How fast will I receive payment?")
	require.True(t, ok)
	require.Equal(t, "1-2 business days.", a)

	for _, q := range []string{"how fast will I receive payment?", "How fast will I receive payment", "How fast will I receive payment? "} {
		_, ok := table.Lookup(q)
		require.False(t, ok, "q=%q", q)
	}
}

func TestCannedAnswers_QuestionsKeepOrder(t *testing.T) {
	table, err := NewCannedAnswers([]domain.CannedAnswer{
		{Question: "b", Answer: "1"},
		{Question: "a", Answer: "2"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, table.Questions())
	require.Equal(t, 2, table.Len())

	qs := table.Questions()
	qs[0] = "changed"
	require.Equal(t, "b", table.Questions()[0])
}

func TestCannedAnswers_NilTable(t *testing.T) {
	var table *CannedAnswers
	_, ok := table.Lookup("anything")
	require.False(t, ok)
	require.Nil(t, table.Questions())
	require.Zero(t, table.Len())
}
