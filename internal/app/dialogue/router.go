// Package dialogue routes one inbound turn to exactly one handling path.
package dialogue

import (
	"context"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/app/troubleshooting"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// Handlers is the set of handlers the default rules dispatch to.
type Handlers struct {
	Troubleshooting      Handler
	TroubleshootingStart Handler
	AccessDenied         Handler
	AlarmStatus          Handler
	CameraScan           Handler
	GeneralInquiry       Handler
	Fallback             Handler
}

// Deps are the collaborators of the default handlers. Generator and Monitor are optional.
type Deps struct {
	Engine    *troubleshooting.Engine
	Generator domain.Generator
	Monitor   domain.SecurityMonitor
	Metrics   *observability.Metrics
}

func DefaultHandlers(d Deps) Handlers {
	return Handlers{
		Troubleshooting:      NewTroubleshootingHandler(d.Engine, false),
		TroubleshootingStart: NewTroubleshootingHandler(d.Engine, true),
		AccessDenied:         NewAccessDeniedHandler(),
		AlarmStatus:          NewAlarmStatusHandler(d.Monitor, d.Metrics),
		CameraScan:           NewCameraScanHandler(d.Monitor, d.Metrics),
		GeneralInquiry:       NewGeneralInquiryHandler(d.Generator, d.Metrics),
		Fallback:             NewFallbackHandler(d.Generator, d.Metrics),
	}
}

// Router evaluates its rules top to bottom and runs the first matching handler.
type Router struct {
	rules   []Rule
	metrics *observability.Metrics
}

func NewRouter(rules []Rule, metrics *observability.Metrics) *Router {
	return &Router{rules: rules, metrics: metrics}
}

// NewDefaultRouter wires the default handlers into the default rules.
func NewDefaultRouter(d Deps) *Router {
	return NewRouter(DefaultRules(DefaultHandlers(d)), d.Metrics)
}

// Route never fails: a handler error degrades to the clarification prompt.
func (r *Router) Route(ctx context.Context, turn *domain.Turn) domain.TurnResult {
	start := time.Now()
	log := observability.LoggerFromContext(ctx).With(
		"user_id", turn.User.ID,
		"access_level", int(turn.User.AccessLevel),
		"intents", turn.Intents.Strings(),
	)

	rule, ok := r.match(turn)
	if !ok {
		log.Warn("no dialogue rule matched")
		turn.Say(msgFallback)
		r.metrics.ObserveTurn(RouteFallback, time.Since(start))
		return turn.Result(RouteFallback)
	}

	log.Info("handler run start", "route", rule.Route, "handler", rule.Handler.Name())
	if err := rule.Handler.Handle(ctx, turn); err != nil {
		log.Error("handler failed",
			"route", rule.Route,
			"handler", rule.Handler.Name(),
			"error", err)
		if len(turn.Replies()) == 0 {
			turn.Say(msgFallback)
		}
	}

	elapsed := time.Since(start)
	log.Info("handler run end",
		"route", rule.Route,
		"replies", len(turn.Replies()),
		"troubleshooting_active", turn.Troubleshooting.Active(),
		"elapsed_ms", elapsed.Milliseconds())
	r.metrics.ObserveTurn(rule.Route, elapsed)

	return turn.Result(rule.Route)
}

func (r *Router) match(turn *domain.Turn) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.Handler != nil && rule.Match(turn) {
			return rule, true
		}
	}
	return Rule{}, false
}
