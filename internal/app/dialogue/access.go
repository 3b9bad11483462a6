package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// AccessDeniedHandler names each capability the user asked for but cannot
// reach and points them to sales.
type AccessDeniedHandler struct{}

func NewAccessDeniedHandler() *AccessDeniedHandler {
	return &AccessDeniedHandler{}
}

func (h *AccessDeniedHandler) Name() string {
	return "access_denied"
}

func (h *AccessDeniedHandler) Handle(_ context.Context, turn *domain.Turn) error {
	var parts []string
	upsell := false
	for _, capability := range denied(turn) {
		if capability == capabilityAlarmControl {
			msg := msgAlarmControlDenied
			if tech := turn.Business.Get(domain.BizTechSupport, ""); tech != "" {
				msg += " al " + tech
			}
			parts = append(parts, msg+".")
			continue
		}
		parts = append(parts, fmt.Sprintf(msgCapabilityDenied, capability))
		upsell = true
	}

	if upsell {
		if sales := turn.Business.Get(domain.BizSales, ""); sales != "" {
			parts = append(parts, fmt.Sprintf(msgUpsell, sales))
		} else {
			parts = append(parts, msgUpsellNoContact)
		}
	}

	turn.Say(strings.Join(parts, "\n\n"))
	return nil
}
