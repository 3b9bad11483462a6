// Package troubleshooting drives the guided keypad troubleshooting dialogue:
// confirm, pick a device, pick a problem, read the solution, rate it.
package troubleshooting

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

var (
	ErrNoDevice    = errors.New("no device selected")
	ErrUnknownStep = errors.New("unknown troubleshooting step")
)

// Catalog is the read-only device/problem data the engine navigates.
type Catalog interface {
	ListDevices() []domain.Device
	Device(key string) (domain.Device, bool)
}

// Input is one turn handed to the engine. Session.Messages must already hold
// the parent's current log, ending with the user utterance.
type Input struct {
	Session  domain.TroubleshootingSession
	Business domain.BusinessInfo
}

// Outcome is the engine's copy-out for one turn.
type Outcome struct {
	Session domain.TroubleshootingSession
	// Active is false once the session reached its terminal step or was exited.
	Active bool
	Exited bool
	Rating *domain.RatingOutcome
	Images []domain.ImageRef
	Err    error
}

// State projects the outcome onto the session variant the caller persists.
func (o Outcome) State() domain.SessionState {
	if !o.Active {
		return domain.InactiveSession()
	}
	return domain.ActiveSession(o.Session)
}

// Replies are the assistant messages appended after baseLen.
func (o Outcome) Replies(baseLen int) []domain.Message {
	if baseLen >= len(o.Session.Messages) {
		return nil
	}
	return domain.CloneMessages(o.Session.Messages[baseLen:])
}

type Engine struct {
	catalog Catalog
	metrics *observability.Metrics
}

func NewEngine(catalog Catalog, metrics *observability.Metrics) *Engine {
	return &Engine{catalog: catalog, metrics: metrics}
}

// Start enters the flow: the confirmation question is always the first reply.
func (e *Engine) Start(ctx context.Context, in Input) Outcome {
	sess := in.Session
	sess.Messages = domain.CloneMessages(sess.Messages)
	sess.Step = domain.StepConfirm

	sess.Messages = append(sess.Messages, domain.AssistantMessage(msgConfirm))
	sess.Step = domain.StepAwaitConfirmation
	e.transition(ctx, domain.StepConfirm, sess.Step.String())
	return Outcome{Session: sess, Active: true}
}

// Advance moves an existing session one step using the last user utterance.
// Internal faults never escape: they end the session with an apology.
func (e *Engine) Advance(ctx context.Context, in Input) (out Outcome) {
	sess := in.Session
	sess.Messages = domain.CloneMessages(sess.Messages)
	sess.SolutionsShown = append([]string(nil), sess.SolutionsShown...)
	from := sess.Step

	defer func() {
		if r := recover(); r != nil {
			out = e.fault(ctx, in, from, fmt.Errorf("panic in step %s: %v", from, r))
		}
	}()

	utterance := domain.LastUserUtterance(sess.Messages)
	if IsExit(utterance) {
		sess.Messages = append(sess.Messages, domain.AssistantMessage(msgExit))
		e.transition(ctx, from, "exit")
		return Outcome{Session: terminal(sess), Exited: true}
	}

	out, err := e.step(sess, utterance, in.Business)
	if err != nil {
		return e.fault(ctx, in, from, err)
	}

	if out.Session.Step == domain.StepConfirm {
		out.Active = false
	}
	to := out.Session.Step.String()
	if out.Exited {
		to = "exit"
	}
	e.transition(ctx, from, to)
	return out
}

func (e *Engine) step(sess domain.TroubleshootingSession, utterance string, business domain.BusinessInfo) (Outcome, error) {
	say := func(text string) {
		sess.Messages = append(sess.Messages, domain.AssistantMessage(text))
	}

	switch sess.Step {
	case domain.StepConfirm:
		if IsAffirmative(utterance) {
			say(deviceMenu(e.catalog.ListDevices()))
			sess.Step = domain.StepSelectDevice
		} else {
			say(msgConfirm)
			sess.Step = domain.StepAwaitConfirmation
		}
		return Outcome{Session: sess, Active: true}, nil

	case domain.StepAwaitConfirmation:
		if !IsAffirmative(utterance) {
			say(msgExit)
			return Outcome{Session: terminal(sess), Exited: true}, nil
		}
		say(deviceMenu(e.catalog.ListDevices()))
		sess.Step = domain.StepSelectDevice
		return Outcome{Session: sess, Active: true}, nil

	case domain.StepSelectDevice:
		devices := e.catalog.ListDevices()
		device, ok := selectDevice(utterance, devices)
		if !ok {
			say(deviceRetryMenu(devices))
			return Outcome{Session: sess, Active: true}, nil
		}
		sess.DeviceType = device.Key
		if device.DirectSupport || len(device.Problems) == 0 {
			say(directSupportMessage(device, business))
			sess.Step = domain.StepConfirm
			return Outcome{Session: sess, Exited: true}, nil
		}
		sess.ProblemType = ""
		say(problemMenu(device, sess))
		sess.Step = domain.StepSelectProblem
		out := Outcome{Session: sess, Active: true}
		if device.Image != "" {
			out.Images = []domain.ImageRef{{Reference: device.Image, Caption: device.Name}}
		}
		return out, nil

	case domain.StepSelectProblem:
		device, ok := e.catalog.Device(sess.DeviceType)
		if sess.DeviceType == "" || !ok {
			return Outcome{}, fmt.Errorf("%w: %q", ErrNoDevice, sess.DeviceType)
		}
		problem, ok := selectProblem(utterance, device.Problems)
		if !ok {
			say(problemRetryMenu(device, sess))
			return Outcome{Session: sess, Active: true}, nil
		}
		sess.ProblemType = problem.Key
		if !sess.HasShown(problem.Key) {
			sess.SolutionsShown = append(sess.SolutionsShown, problem.Key)
		}
		say(solutionMessage(problem))
		sess.Step = domain.StepRate
		return Outcome{Session: sess, Active: true}, nil

	case domain.StepRate:
		rating, ok := ParseRating(utterance)
		if !ok {
			say(msgAnotherIssue + msgExitHintShort)
			sess.Step = domain.StepAwaitConfirmation
			return Outcome{Session: sess, Active: true}, nil
		}
		sess.Rating = rating
		say(fmt.Sprintf(msgRatingThanks, rating) + msgExitHintShort)
		sess.Step = domain.StepConfirm
		e.metrics.IncRating(rating)
		return Outcome{
			Session: sess,
			Rating: &domain.RatingOutcome{
				Rating:      rating,
				DeviceType:  sess.DeviceType,
				ProblemType: sess.ProblemType,
			},
		}, nil

	default:
		return Outcome{}, fmt.Errorf("%w: %d", ErrUnknownStep, int(sess.Step))
	}
}

// fault rebuilds the outcome from the input so a half-applied step never leaks.
func (e *Engine) fault(ctx context.Context, in Input, from domain.Step, err error) Outcome {
	observability.LoggerFromContext(ctx).Error("troubleshooting step failed",
		"step", from.String(),
		"device_type", in.Session.DeviceType,
		"error", err,
	)
	e.transition(ctx, from, "fault")

	sess := in.Session
	sess.Messages = append(domain.CloneMessages(in.Session.Messages), domain.AssistantMessage(faultMessage(in.Business)))
	return Outcome{Session: terminal(sess), Exited: true, Err: err}
}

func (e *Engine) transition(ctx context.Context, from domain.Step, to string) {
	e.metrics.IncTransition(from.String(), to)
	observability.LoggerFromContext(ctx).Debug("troubleshooting transition",
		"from", from.String(),
		"to", to,
	)
}

func terminal(sess domain.TroubleshootingSession) domain.TroubleshootingSession {
	sess.Step = domain.StepConfirm
	return sess
}
