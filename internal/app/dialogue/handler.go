package dialogue

import (
	"context"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// Route names, also used as metric labels.
const (
	RouteTroubleshooting      = "troubleshooting"
	RouteTroubleshootingStart = "troubleshooting_start"
	RouteAccessDenied         = "access_denied"
	RouteAlarmStatus          = "alarm_status"
	RouteCameraScan           = "camera_scan"
	RouteGeneralInquiry       = "general_inquiry"
	RouteFallback             = "fallback"
)

// Handler produces the assistant replies of one turn by mutating it.
type Handler interface {
	Name() string
	Handle(ctx context.Context, turn *domain.Turn) error
}

// Rule pairs a predicate with the handler it selects.
type Rule struct {
	Route   string
	Match   func(turn *domain.Turn) bool
	Handler Handler
}

func levelAtLeast(turn *domain.Turn, min domain.AccessLevel) bool {
	return turn.User.AccessLevel >= min
}

func wantsTroubleshooting(turn *domain.Turn) bool {
	return turn.Intents.Has(domain.IntentAlarmProblem)
}

func wantsAlarmStatus(turn *domain.Turn) bool {
	return turn.Intents.HasAny(domain.IntentAlarmStatus, domain.IntentSensors)
}

func wantsCameraScan(turn *domain.Turn) bool {
	return turn.Intents.HasAny(domain.IntentCameraScan, domain.IntentCameraImage)
}

func wantsGeneralInfo(turn *domain.Turn) bool {
	return turn.Intents.HasAny(domain.GeneralIntents...)
}

// denied lists the capabilities the turn asks for but the user cannot reach,
// in a fixed order.
func denied(turn *domain.Turn) []string {
	var out []string
	if turn.Intents.Has(domain.IntentAlarmControl) {
		out = append(out, capabilityAlarmControl)
	}
	if wantsTroubleshooting(turn) && !levelAtLeast(turn, domain.MinLevelTroubleshooting) {
		out = append(out, capabilityTroubleshooting)
	}
	if wantsAlarmStatus(turn) && !levelAtLeast(turn, domain.MinLevelAlarmStatus) {
		out = append(out, capabilityAlarmStatus)
	}
	if wantsCameraScan(turn) && !levelAtLeast(turn, domain.MinLevelCameraScan) {
		out = append(out, capabilityCameraScan)
	}
	return out
}

// DefaultRules is the dispatch table. First match wins.
func DefaultRules(h Handlers) []Rule {
	return []Rule{
		{
			Route:   RouteTroubleshooting,
			Match:   func(t *domain.Turn) bool { return t.Troubleshooting.Active() },
			Handler: h.Troubleshooting,
		},
		{
			Route: RouteTroubleshootingStart,
			Match: func(t *domain.Turn) bool {
				return wantsTroubleshooting(t) && levelAtLeast(t, domain.MinLevelTroubleshooting)
			},
			Handler: h.TroubleshootingStart,
		},
		{
			Route:   RouteAccessDenied,
			Match:   func(t *domain.Turn) bool { return len(denied(t)) > 0 },
			Handler: h.AccessDenied,
		},
		{
			Route: RouteAlarmStatus,
			Match: func(t *domain.Turn) bool {
				return wantsAlarmStatus(t) && levelAtLeast(t, domain.MinLevelAlarmStatus)
			},
			Handler: h.AlarmStatus,
		},
		{
			Route: RouteCameraScan,
			Match: func(t *domain.Turn) bool {
				return wantsCameraScan(t) && levelAtLeast(t, domain.MinLevelCameraScan)
			},
			Handler: h.CameraScan,
		},
		{
			Route:   RouteGeneralInquiry,
			Match:   wantsGeneralInfo,
			Handler: h.GeneralInquiry,
		},
		{
			Route:   RouteFallback,
			Match:   func(*domain.Turn) bool { return true },
			Handler: h.Fallback,
		},
	}
}
