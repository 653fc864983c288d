package usecase

import (
	"context"
	"time"

	"softsell-assistant/internal/domain"
)

// generate runs the remote half of a turn as a small state machine:
//
//	Sending --ok--> Done (reply)
//	Sending --429--> BackingOff --wait--> Sending | Done (connectivity error once attempts run out)
//	Sending --other error--> Done (connectivity error)
//
// The pending gate stays closed for the whole run. It returns false when ctx
// ends first and the turn is abandoned.
func (e *Engine) generate(ctx context.Context, prompt string) (string, bool) {
	for attempt := 1; ; attempt++ {
		e.enterPhase(domain.PhaseSending, attempt)

		raw, err := e.gen.Generate(ctx, prompt)
		if err == nil {
			if err := e.clock.Sleep(ctx, e.replyDelay); err != nil {
				e.logAbandoned(err)
				return "", false
			}
			return normalizeReply(raw), true
		}

		code := classify(ctx, err)
		switch code {
		case ErrorCanceled:
			e.logAbandoned(err)
			return "", false

		case ErrorRateLimited:
			wait := e.backoff(attempt)
			e.logger.Warn("generation rate limited",
				"code", code,
				"attempt", attempt,
				"backoff", wait,
				"err", err)
			e.enterPhase(domain.PhaseBackingOff, attempt)
			if err := e.clock.Sleep(ctx, wait); err != nil {
				e.logAbandoned(err)
				return "", false
			}
			if attempt >= e.maxAttempts {
				e.logger.Error("generation retries exhausted", "code", code, "attempts", attempt)
				return ConnectivityErrorReply, true
			}

		default:
			e.logger.Warn("generation failed", "code", code, "attempt", attempt, "err", err)
			return ConnectivityErrorReply, true
		}
	}
}

func (e *Engine) backoff(attempt int) time.Duration {
	return e.backoffBase * time.Duration(int64(1)<<attempt)
}

func (e *Engine) enterPhase(phase domain.Phase, attempt int) {
	e.mu.Lock()
	e.phase = phase
	e.attempt = attempt
	state := e.snapshotLocked()
	e.mu.Unlock()

	if phase == domain.PhaseBackingOff {
		e.events.publish(Event{Kind: EventBackoff, State: state})
	}
}
