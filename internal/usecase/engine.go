package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"softsell-assistant/internal/domain"
)

const (
	WelcomeMessage         = "👋 Hi there! I'm your SoftSell assistant. How can I help you today?"
	FallbackReply          = "Sorry, I couldn't generate a response."
	ConnectivityErrorReply = "Sorry, I'm having trouble connecting to our systems. Please try again in a moment."

	defaultWelcomeDelay = 500 * time.Millisecond
	defaultCannedDelay  = 800 * time.Millisecond
	defaultReplyDelay   = 800 * time.Millisecond
	defaultBackoffBase  = time.Second
	defaultMaxAttempts  = 3
)

// Generator produces a completion for a rendered transcript prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine owns one widget session: the transcript, the pending gate and the
// widget visibility. At most one submission is in flight at a time, and each
// accepted submission ends with exactly one assistant message unless its
// context is cancelled first.
type Engine struct {
	gen       Generator
	canned    *CannedAnswers
	clock     Clock
	logger    *slog.Logger
	events    *broadcaster
	sessionID string

	welcomeText  string
	welcomeDelay time.Duration
	cannedDelay  time.Duration
	replyDelay   time.Duration
	backoffBase  time.Duration
	maxAttempts  int

	mu               sync.Mutex
	messages         []domain.Message
	pending          bool
	open             bool
	welcomeScheduled bool
	phase            domain.Phase
	attempt          int
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDelays sets the welcome delay and the simulated latency applied before
// canned and generated replies. Negative values are treated as zero.
func WithDelays(welcome, canned, reply time.Duration) Option {
	return func(e *Engine) {
		e.welcomeDelay = max(welcome, 0)
		e.cannedDelay = max(canned, 0)
		e.replyDelay = max(reply, 0)
	}
}

// WithBackoffBase sets the unit of the exponential backoff; the wait after
// the n-th rate-limited attempt is base * 2^n.
func WithBackoffBase(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.backoffBase = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithWelcomeMessage(text string) Option {
	return func(e *Engine) {
		if t := strings.TrimSpace(text); t != "" {
			e.welcomeText = t
		}
	}
}

// NewEngine creates an engine for a fresh session. A nil canned table means
// every submission goes to the generator.
func NewEngine(gen Generator, canned *CannedAnswers, opts ...Option) (*Engine, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	e := &Engine{
		gen:          gen,
		canned:       canned,
		clock:        realClock{},
		logger:       slog.Default(),
		sessionID:    newUUID(),
		welcomeText:  WelcomeMessage,
		welcomeDelay: defaultWelcomeDelay,
		cannedDelay:  defaultCannedDelay,
		replyDelay:   defaultReplyDelay,
		backoffBase:  defaultBackoffBase,
		maxAttempts:  defaultMaxAttempts,
		phase:        domain.PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "conversation_engine", "session_id", e.sessionID)
	e.events = newBroadcaster(e.logger)
	return e, nil
}

func (e *Engine) SessionID() string {
	return e.sessionID
}

// Submit appends text as a user message and resolves the turn, blocking until
// the assistant reply is in the transcript. It returns an *Error only when the
// submission is rejected: blank text or another submission still pending.
// Generation failures are reported through the transcript, never returned.
func (e *Engine) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return newError(ErrorInvalidInput, "empty_input", nil)
	}

	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return newError(ErrorBusy, "submission_pending", nil)
	}
	history := slices.Clone(e.messages)
	userMsg := domain.Message{Role: domain.RoleUser, Content: text}
	e.messages = append(e.messages, userMsg)
	e.pending = true
	e.phase = domain.PhaseSending
	e.attempt = 0
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("submission accepted", "length", len(text))
	e.events.publish(Event{Kind: EventMessage, Message: &userMsg, State: state})

	reply, ok := e.resolve(ctx, history, text)
	e.finish(reply, ok)
	return nil
}

func (e *Engine) resolve(ctx context.Context, history []domain.Message, text string) (string, bool) {
	if answer, ok := e.canned.Lookup(text); ok {
		e.logger.Debug("canned answer matched")
		if err := e.clock.Sleep(ctx, e.cannedDelay); err != nil {
			e.logAbandoned(err)
			return "", false
		}
		return answer, true
	}
	return e.generate(ctx, buildPrompt(history, text))
}

// finish appends the reply, if any, and releases the pending gate in one step.
func (e *Engine) finish(reply string, ok bool) {
	e.mu.Lock()
	var msg *domain.Message
	if ok {
		m := domain.Message{Role: domain.RoleAssistant, Content: reply}
		e.messages = append(e.messages, m)
		msg = &m
	}
	e.pending = false
	e.phase = domain.PhaseDone
	state := e.snapshotLocked()
	e.mu.Unlock()

	if msg != nil {
		e.events.publish(Event{Kind: EventMessage, Message: msg, State: state})
	}
	e.events.publish(Event{Kind: EventPending, State: state})
}

// Open shows the widget. The first time it opens on an empty transcript it
// waits for the welcome delay and then adds the welcome message, unless the
// transcript has been written to in the meantime.
func (e *Engine) Open(ctx context.Context) {
	e.mu.Lock()
	if e.open {
		e.mu.Unlock()
		return
	}
	e.open = true
	schedule := len(e.messages) == 0 && !e.welcomeScheduled
	if schedule {
		e.welcomeScheduled = true
	}
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.events.publish(Event{Kind: EventVisibility, State: state})
	if !schedule {
		return
	}

	if err := e.clock.Sleep(ctx, e.welcomeDelay); err != nil {
		e.mu.Lock()
		e.welcomeScheduled = false
		e.mu.Unlock()
		e.logger.Info("welcome message abandoned", "err", err)
		return
	}

	e.mu.Lock()
	if len(e.messages) != 0 {
		e.mu.Unlock()
		e.logger.Debug("welcome message skipped, transcript already started")
		return
	}
	msg := domain.Message{Role: domain.RoleAssistant, Content: e.welcomeText}
	e.messages = append(e.messages, msg)
	state = e.snapshotLocked()
	e.mu.Unlock()

	e.events.publish(Event{Kind: EventMessage, Message: &msg, State: state})
}

func (e *Engine) Close() {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return
	}
	e.open = false
	state := e.snapshotLocked()
	e.mu.Unlock()

	e.events.publish(Event{Kind: EventVisibility, State: state})
}

// Toggle flips visibility, like the floating launcher button.
func (e *Engine) Toggle(ctx context.Context) {
	e.mu.Lock()
	open := e.open
	e.mu.Unlock()

	if open {
		e.Close()
		return
	}
	e.Open(ctx)
}

func (e *Engine) State() domain.ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Suggestions returns the canned questions in table order.
func (e *Engine) Suggestions() []string {
	return e.canned.Questions()
}

// Subscribe streams state transitions until ctx is cancelled, after which the
// channel is closed. Events are dropped for a subscriber that falls behind.
func (e *Engine) Subscribe(ctx context.Context) <-chan Event {
	ch, _ := e.events.subscribe(ctx)
	return ch
}

func (e *Engine) snapshotLocked() domain.ConversationState {
	return domain.ConversationState{
		SessionID: e.sessionID,
		Messages:  slices.Clone(e.messages),
		Pending:   e.pending,
		Open:      e.open,
		Phase:     e.phase,
		Attempt:   e.attempt,
	}.Derive()
}

func (e *Engine) logAbandoned(err error) {
	e.logger.Info("turn abandoned", "err", err)
}

var newUUID = func() string {
	return uuid.NewString()
}
