package dialogue

import (
	"context"

	"github.com/PabloGalante/taborra-agent/internal/app/troubleshooting"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// TroubleshootingHandler hands the turn to the sub-engine. The turn owns the
// log: it is copied into the session before the call and copied back after.
type TroubleshootingHandler struct {
	engine *troubleshooting.Engine
	start  bool
}

func NewTroubleshootingHandler(engine *troubleshooting.Engine, start bool) *TroubleshootingHandler {
	return &TroubleshootingHandler{engine: engine, start: start}
}

func (h *TroubleshootingHandler) Name() string {
	if h.start {
		return "troubleshooting_start"
	}
	return "troubleshooting"
}

func (h *TroubleshootingHandler) Handle(ctx context.Context, turn *domain.Turn) error {
	sess, active := turn.Troubleshooting.Session()
	if h.start || !active {
		sess = domain.TroubleshootingSession{}
	}
	sess.Messages = domain.CloneMessages(turn.Messages)

	in := troubleshooting.Input{Session: sess, Business: turn.Business}
	var out troubleshooting.Outcome
	if h.start || !active {
		out = h.engine.Start(ctx, in)
	} else {
		out = h.engine.Advance(ctx, in)
	}

	turn.Messages = domain.CloneMessages(out.Session.Messages)
	turn.Troubleshooting = out.State()
	turn.RatingOutcome = out.Rating
	turn.Images = append(turn.Images, out.Images...)

	observability.LoggerFromContext(ctx).Info("troubleshooting advanced",
		"step_before", sess.Step.String(),
		"step_after", out.Session.Step.String(),
		"active", out.Active,
		"exited", out.Exited,
	)
	// Engine faults are already answered and logged; the turn itself succeeded.
	return nil
}
