// Package widget is the terminal chat widget: a floating launcher that opens
// into a conversation panel. It only renders engine state and forwards user
// actions; all conversation logic lives in the engine.
package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"softsell-assistant/internal/domain"
	"softsell-assistant/internal/usecase"
)

const (
	defaultWidth  = 64
	defaultHeight = 24
	// header, typing line, input panel and help line
	chromeHeight = 8
)

// Engine is the conversation surface the widget drives.
type Engine interface {
	State() domain.ConversationState
	Suggestions() []string
	Submit(ctx context.Context, text string) error
	Toggle(ctx context.Context)
	Subscribe(ctx context.Context) <-chan usecase.Event
}

type eventMsg usecase.Event

type eventsClosedMsg struct{}

type submitDoneMsg struct {
	text string
	err  error
}

type toggledMsg struct{}

type Model struct {
	ctx         context.Context
	engine      Engine
	events      <-chan usecase.Event
	suggestions []string

	state      domain.ConversationState
	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	theme      theme
	width      int
	notice     string
}

// New builds the widget and subscribes to the engine for the lifetime of ctx.
func New(ctx context.Context, engine Engine) Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Type your message..."
	input.CharLimit = 1000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		engine:      engine,
		events:      engine.Subscribe(ctx),
		suggestions: engine.Suggestions(),
		state:       engine.State(),
		input:       input,
		transcript:  viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:     sp,
		theme:       newTheme(),
		width:       defaultWidth,
	}
	m.input.Width = defaultWidth - 6
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		m.spinner.Tick,
		textinput.Blink,
	)
}

func waitForEvent(events <-chan usecase.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) toggleCmd() tea.Cmd {
	return func() tea.Msg {
		m.engine.Toggle(m.ctx)
		return toggledMsg{}
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{text: text, err: m.engine.Submit(m.ctx, text)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.state = msg.State
		m.refresh()
		return m, waitForEvent(m.events)

	case eventsClosedMsg, toggledMsg:
		return m, nil

	case submitDoneMsg:
		if usecase.IsRejected(msg.err, usecase.ErrorBusy) {
			m.input.SetValue(msg.text)
			m.notice = "Still working on your last message..."
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+o":
		return m, m.toggleCmd()
	}

	if !m.state.Open {
		if msg.String() == "enter" {
			return m, m.toggleCmd()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, m.toggleCmd()
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.state.Pending {
			return m, nil
		}
		m.notice = ""
		m.input.Reset()
		return m, m.submitCmd(text)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	if q, ok := m.suggestionFor(msg.String()); ok {
		m.notice = ""
		return m, m.submitCmd(q)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// suggestionFor maps the digit keys to suggested questions while the
// suggestions are on screen and nothing has been typed.
func (m Model) suggestionFor(key string) (string, bool) {
	if !m.state.ShowSuggestions || m.state.Pending || m.input.Value() != "" {
		return "", false
	}
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return "", false
	}
	idx := int(key[0] - '1')
	if idx >= len(m.suggestions) {
		return "", false
	}
	return m.suggestions[idx], true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.transcript.Width = width - 2
	m.transcript.Height = max(height-chromeHeight-len(m.suggestions), 3)
	m.input.Width = max(width-6, 10)
}

func (m *Model) refresh() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

func (m Model) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(m.transcript.Width-4, 10))
	var b strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		label, style := "Assistant", m.theme.assistant
		if msg.Role == domain.RoleUser {
			label, style = "You", m.theme.user
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(wrap.Render(msg.Content))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() string {
	if !m.state.Open {
		return m.launcherView()
	}

	var b strings.Builder
	b.WriteString(m.theme.header.Render("🤖 SoftSell Assistant"))
	b.WriteString("\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n")

	if m.state.Typing {
		b.WriteString(m.spinner.View() + m.theme.muted.Render(" typing..."))
		b.WriteString("\n")
	}
	if m.state.ShowSuggestions && len(m.suggestions) > 0 {
		b.WriteString(m.theme.muted.Render("Ask me anything about selling your software licenses:"))
		b.WriteString("\n")
		for i, q := range m.suggestions {
			b.WriteString(m.theme.suggestion.Render(fmt.Sprintf("  %d) %s", i+1, q)))
			b.WriteString("\n")
		}
	}
	if m.notice != "" {
		b.WriteString(m.theme.notice.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.inputPanel.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.theme.muted.Render("enter send · esc close · ctrl+c quit"))
	return b.String()
}

func (m Model) launcherView() string {
	badge := ""
	if m.state.Unread {
		badge = m.theme.badge.Render(" ●")
	}
	return m.theme.launcher.Render("🤖 Chat with SoftSell Assistant") + badge + "\n" +
		m.theme.muted.Render("ctrl+o or enter to open · ctrl+c quit")
}
