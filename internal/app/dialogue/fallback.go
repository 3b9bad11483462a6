package dialogue

import (
	"context"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// FallbackHandler delegates unmatched turns to the generator.
type FallbackHandler struct {
	generator domain.Generator
	metrics   *observability.Metrics
}

func NewFallbackHandler(generator domain.Generator, metrics *observability.Metrics) *FallbackHandler {
	return &FallbackHandler{generator: generator, metrics: metrics}
}

func (h *FallbackHandler) Name() string {
	return "fallback"
}

func (h *FallbackHandler) Handle(ctx context.Context, turn *domain.Turn) error {
	turn.Say(generateOrFallback(ctx, h.generator, h.metrics, turn))
	return nil
}

// generateOrFallback returns the clarification prompt whenever no usable
// reply comes back.
func generateOrFallback(ctx context.Context, g domain.Generator, metrics *observability.Metrics, turn *domain.Turn) string {
	if g == nil {
		return msgFallback
	}
	reply, err := g.Generate(ctx, domain.GenerateRequest{
		History:     domain.CloneMessages(turn.Messages),
		Business:    turn.Business,
		AccessLevel: turn.User.AccessLevel,
		Intents:     turn.Intents,
	})
	if err != nil {
		metrics.IncCollaboratorFailure("generator")
		observability.LoggerFromContext(ctx).Error("generator failed", "error", err)
		return msgFallback
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		metrics.IncCollaboratorFailure("generator")
		observability.LoggerFromContext(ctx).Warn("generator returned empty reply")
		return msgFallback
	}
	return reply
}
