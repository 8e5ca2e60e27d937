// Package coordinator runs the side effects that follow a settled payment.
//
// Unlike a saga there is nothing to compensate: the charge already happened
// and must never be rolled back or hidden, so every step runs regardless of
// how the previous one ended and each result is reported separately.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
)

// ErrSkipped marks a step that chose not to run, e.g. because its
// integration has no credentials.
var ErrSkipped = errors.New("skipped")

// Step is a single best-effort side effect.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
}

// Outcome is the result of one step.
type Outcome struct {
	Step    string `json:"step"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Outcomes []Outcome

// Failed reports whether any step returned an error other than ErrSkipped.
func (outs Outcomes) Failed() bool {
	for _, o := range outs {
		if !o.OK && !o.Skipped {
			return true
		}
	}
	return false
}

// Coordinator executes steps in order and never stops early.
type Coordinator struct {
	steps []Step
}

func New(steps ...Step) *Coordinator {
	return &Coordinator{steps: steps}
}

func (c *Coordinator) Run(ctx context.Context) Outcomes {
	out := make(Outcomes, 0, len(c.steps))

	for _, step := range c.steps {
		slog.DebugContext(ctx, "executing step", "step", step.Name())

		err := step.Execute(ctx)
		switch {
		case err == nil:
			out = append(out, Outcome{Step: step.Name(), OK: true})
		case errors.Is(err, ErrSkipped):
			slog.InfoContext(ctx, "step skipped", "step", step.Name(), "reason", err.Error())
			out = append(out, Outcome{Step: step.Name(), Skipped: true, Error: err.Error()})
		default:
			slog.WarnContext(ctx, "step failed", "step", step.Name(), "error", err)
			out = append(out, Outcome{Step: step.Name(), Error: err.Error()})
		}
	}
	return out
}
