package event

import "fmt"

const (
	// EventIssues is the event name the pipeline responds to.
	EventIssues = "issues"

	// ActionOpened is the issue action for newly created issues.
	ActionOpened = "opened"

	// ActionEdited is the issue action for edited issues.
	ActionEdited = "edited"
)

// Decision is the outcome of evaluating a context against the trigger rules.
// An ineligible event is a clean no-op, mirroring the platform's own trigger
// matching, so the reason is informational rather than an error.
type Decision struct {
	// Eligible reports whether the pipeline should run for this context.
	Eligible bool

	// Reason explains why an ineligible context was rejected.
	Reason string
}

// Evaluate applies the trigger rules to a context: only "issues" events of
// type "opened" or "edited", targeting the given branch, are eligible.
func Evaluate(ctx *Context, branch string) Decision {
	if ctx.EventName != EventIssues {
		return Decision{Reason: fmt.Sprintf("event %q is not an issues event", ctx.EventName)}
	}

	switch ctx.Event.Action {
	case ActionOpened, ActionEdited:
	default:
		return Decision{Reason: fmt.Sprintf("issue action %q is not opened or edited", ctx.Event.Action)}
	}

	if ctx.Event.Issue == nil {
		return Decision{Reason: "event payload has no issue"}
	}

	if got := ctx.Branch(); got != branch {
		return Decision{Reason: fmt.Sprintf("ref %q does not target branch %q", ctx.Ref, branch)}
	}

	return Decision{Eligible: true}
}
