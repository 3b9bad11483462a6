package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

const (
	msgNoAutomationConfig = "No se ha configurado Home Assistant para tu cuenta. Por favor, contactate con nuestro equipo de soporte técnico para más información."
	msgNoMethods          = "No hay métodos disponibles en tu configuración de Home Assistant. Por favor, contactate con nuestro equipo de soporte técnico para más información."
	msgMethodUnavailable  = "El método '%s' no está disponible en la configuración de Home Assistant. Por favor, contactate con nuestro equipo de soporte técnico para más información."
	msgUnknownMethod      = "La acción '%s' no es reconocida por el sistema."
	msgWebhookFailed      = "No pudimos comunicarnos con tu sistema en este momento. Intentá nuevamente en unos minutos."
	msgRequestSent        = "Solicitud enviada exitosamente"
)

// HomeAutomationTool triggers a method on the user's home-automation webhook.
// Refusals are returned as a result with success=false and a user-facing
// message; only broken context is an error.
type HomeAutomationTool struct {
	configs       domain.AutomationConfigStore
	webhook       domain.AutomationWebhook
	callbackURL   string
	callbackToken string
}

func NewHomeAutomationTool(configs domain.AutomationConfigStore, webhook domain.AutomationWebhook, callbackURL, callbackToken string) *HomeAutomationTool {
	return &HomeAutomationTool{
		configs:       configs,
		webhook:       webhook,
		callbackURL:   callbackURL,
		callbackToken: callbackToken,
	}
}

func (t *HomeAutomationTool) Name() string {
	return "home_automation"
}

// Call expects an input with this shape:
//
//	{
//	  "method": "get_alarm_status",
//	  "params": {"camera_id": "camera.cocina"}
//	}
//
// UserID, Phone and ConversationID come in ToolContext.
func (t *HomeAutomationTool) Call(
	ctx context.Context,
	tctx ToolContext,
	input map[string]any,
) (map[string]any, error) {

	if tctx.UserID == "" || tctx.Phone == "" {
		return nil, fmt.Errorf("home_automation: missing UserID or Phone in ToolContext")
	}

	method := getString(input, "method")
	log := observability.LoggerFromContext(ctx).With(
		"tool", t.Name(),
		"user_id", tctx.UserID,
		"method", method,
	)

	if !domain.IsAutomationMethod(method) {
		return refused(fmt.Sprintf(msgUnknownMethod, method)), nil
	}

	cfg, err := t.configs.GetAutomationConfig(ctx, domain.UserID(tctx.UserID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return refused(msgNoAutomationConfig), nil
		}
		return nil, fmt.Errorf("home_automation: load config: %w", err)
	}
	if cfg.WebhookURL == "" {
		return refused(msgNoAutomationConfig), nil
	}
	if len(cfg.AvailableMethods) == 0 {
		return refused(msgNoMethods), nil
	}
	if !cfg.HasMethod(method) {
		return refused(fmt.Sprintf(msgMethodUnavailable, method)), nil
	}

	params, _ := input["params"].(map[string]any)
	err = t.webhook.Trigger(ctx, *cfg, domain.AutomationCall{
		Method:         method,
		Phone:          tctx.Phone,
		ConversationID: domain.ConversationID(tctx.ConversationID),
		CallbackURL:    t.callbackURL,
		CallbackToken:  t.callbackToken,
		Params:         params,
	})
	if err != nil {
		log.Error("home automation webhook failed", "error", err)
		return refused(msgWebhookFailed), nil
	}

	log.Info("home automation method triggered")
	return map[string]any{
		"success": true,
		"message": msgRequestSent,
		"method":  method,
	}, nil
}

func refused(message string) map[string]any {
	return map[string]any{
		"success": false,
		"message": message,
	}
}
