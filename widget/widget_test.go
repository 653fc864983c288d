package widget

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"softsell-assistant/internal/domain"
	"softsell-assistant/internal/usecase"
)

type fakeEngine struct {
	mu          sync.Mutex
	state       domain.ConversationState
	suggestions []string
	submitted   []string
	submitErr   error
	toggles     int
	events      chan usecase.Event
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		suggestions: []string{"How do I sell my license?", "Is there a fee for using SoftSell?"},
		events:      make(chan usecase.Event, 8),
	}
}

func (f *fakeEngine) State() domain.ConversationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeEngine) Suggestions() []string { return f.suggestions }

func (f *fakeEngine) Submit(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, text)
	return f.submitErr
}

func (f *fakeEngine) Toggle(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
}

func (f *fakeEngine) Subscribe(context.Context) <-chan usecase.Event { return f.events }

func openState(msgs ...domain.Message) domain.ConversationState {
	return domain.ConversationState{Open: true, Messages: msgs}.Derive()
}

func welcome() domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: usecase.WelcomeMessage}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_ReadsEngine(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())

	m := New(context.Background(), eng)
	require.Equal(t, eng.state, m.state)
	require.Equal(t, eng.suggestions, m.suggestions)
	require.NotNil(t, m.Init())
}

func TestUpdate_EventReplacesState(t *testing.T) {
	eng := newFakeEngine()
	m := New(context.Background(), eng)

	st := openState(welcome())
	m, cmd := update(t, m, eventMsg(usecase.Event{Kind: usecase.EventMessage, State: st}))
	require.Equal(t, st, m.state)
	require.NotNil(t, cmd, "keeps listening for events")

	eng.events <- usecase.Event{Kind: usecase.EventPending, State: st}
	next := cmd()
	require.IsType(t, eventMsg{}, next)
}

func TestUpdate_ClosedEventStreamStopsListening(t *testing.T) {
	eng := newFakeEngine()
	close(eng.events)
	m := New(context.Background(), eng)

	msg := waitForEvent(m.events)()
	require.IsType(t, eventsClosedMsg{}, msg)
	_, cmd := update(t, m, msg)
	require.Nil(t, cmd)
}

func TestKeys_ToggleAndQuit(t *testing.T) {
	eng := newFakeEngine()
	m := New(context.Background(), eng)

	_, cmd := update(t, m, key("ctrl+o"))
	require.NotNil(t, cmd)
	require.IsType(t, toggledMsg{}, cmd())
	require.Equal(t, 1, eng.toggles)

	_, cmd = update(t, m, key("enter"))
	require.NotNil(t, cmd, "enter opens the closed launcher")
	cmd()
	require.Equal(t, 2, eng.toggles)

	_, cmd = update(t, m, key("ctrl+c"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeys_EscClosesOpenWidget(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)

	_, cmd := update(t, m, key("esc"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, 1, eng.toggles)
}

func TestKeys_EnterSubmitsAndClearsInput(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)
	m.input.SetValue("  Can I sell Autodesk licenses?  ")

	m, cmd := update(t, m, key("enter"))
	require.Empty(t, m.input.Value())
	require.NotNil(t, cmd)

	done := cmd()
	require.Equal(t, submitDoneMsg{text: "Can I sell Autodesk licenses?"}, done)
	require.Equal(t, []string{"Can I sell Autodesk licenses?"}, eng.submitted)
}

func TestKeys_EnterIgnoredWhenBlankOrPending(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)

	m.input.SetValue("   ")
	_, cmd := update(t, m, key("enter"))
	require.Nil(t, cmd)

	pending := openState(welcome(), domain.Message{Role: domain.RoleUser, Content: "hi"})
	pending.Pending = true
	m, _ = update(t, m, eventMsg(usecase.Event{Kind: usecase.EventPending, State: pending.Derive()}))
	m.input.SetValue("another")
	m, cmd = update(t, m, key("enter"))
	require.Nil(t, cmd)
	require.Equal(t, "another", m.input.Value())
	require.Empty(t, eng.submitted)
}

func TestKeys_DigitSubmitsSuggestion(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)

	_, cmd := update(t, m, key("2"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"Is there a fee for using SoftSell?"}, eng.submitted)
}

func TestKeys_DigitTypesWhenSuggestionsHidden(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(
		welcome(),
		domain.Message{Role: domain.RoleUser, Content: "hi"},
		domain.Message{Role: domain.RoleAssistant, Content: "hello"},
	)
	m := New(context.Background(), eng)

	m, _ = update(t, m, key("2"))
	require.Equal(t, "2", m.input.Value())
	require.Empty(t, eng.submitted)
}

func TestSubmitDone_BusyRestoresInput(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)

	busy := &usecase.Error{Code: usecase.ErrorBusy, Reason: "submission_pending"}
	m, _ = update(t, m, submitDoneMsg{text: "hello", err: busy})
	require.Equal(t, "hello", m.input.Value())
	require.NotEmpty(t, m.notice)
}

func TestView_Launcher(t *testing.T) {
	eng := newFakeEngine()
	m := New(context.Background(), eng)
	require.Contains(t, m.View(), "Chat with SoftSell Assistant")
	require.NotContains(t, m.View(), "●")

	unread := domain.ConversationState{Messages: []domain.Message{
		welcome(),
		{Role: domain.RoleUser, Content: "hi"},
	}}.Derive()
	m, _ = update(t, m, eventMsg(usecase.Event{Kind: usecase.EventVisibility, State: unread}))
	require.Contains(t, m.View(), "●")
}

func TestView_OpenPanel(t *testing.T) {
	eng := newFakeEngine()
	eng.state = openState(welcome())
	m := New(context.Background(), eng)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	require.Contains(t, view, "SoftSell Assistant")
	require.Contains(t, view, "Hi there!")
	require.Contains(t, view, "1) How do I sell my license?")
	require.NotContains(t, view, "typing...")

	typing := openState(welcome(), domain.Message{Role: domain.RoleUser, Content: "hi"})
	typing.Pending = true
	m, _ = update(t, m, eventMsg(usecase.Event{Kind: usecase.EventPending, State: typing.Derive()}))
	view = m.View()
	require.Contains(t, view, "typing...")
	require.False(t, strings.Contains(view, "1) How do I sell my license?"))
}
