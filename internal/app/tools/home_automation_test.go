package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type recordingWebhook struct {
	calls []domain.AutomationCall
	err   error
}

func (w *recordingWebhook) Trigger(_ context.Context, _ domain.AutomationConfig, call domain.AutomationCall) error {
	w.calls = append(w.calls, call)
	return w.err
}

func newTool(t *testing.T, webhook *recordingWebhook) *HomeAutomationTool {
	t.Helper()
	store := memory.NewStore(nil)
	store.PutAutomationConfig(domain.AutomationConfig{
		UserID:           "u1",
		WebhookURL:       "https://ha.example/api/webhook/x",
		Token:            "tok",
		AvailableMethods: []string{domain.MethodAlarmStatus},
	})
	store.PutAutomationConfig(domain.AutomationConfig{
		UserID:     "u2",
		WebhookURL: "https://ha.example/api/webhook/y",
	})
	return NewHomeAutomationTool(store, webhook, "https://bot/webhook/home_assistant_response", "cb-token")
}

func TestHomeAutomationToolTriggers(t *testing.T) {
	webhook := &recordingWebhook{}
	tool := newTool(t, webhook)

	out, err := tool.Call(context.Background(),
		ToolContext{UserID: "u1", Phone: "543471627777", ConversationID: "conv-1"},
		map[string]any{"method": domain.MethodAlarmStatus},
	)
	require.NoError(t, err)
	assert.Equal(t, true, out["success"])

	require.Len(t, webhook.calls, 1)
	call := webhook.calls[0]
	assert.Equal(t, domain.MethodAlarmStatus, call.Method)
	assert.Equal(t, "543471627777", call.Phone)
	assert.Equal(t, domain.ConversationID("conv-1"), call.ConversationID)
	assert.Equal(t, "cb-token", call.CallbackToken)
}

func TestHomeAutomationToolRefusals(t *testing.T) {
	cases := []struct {
		name    string
		user    string
		method  string
		message string
	}{
		{"unknown method", "u1", "open_garage", "La acción 'open_garage' no es reconocida por el sistema."},
		{"no config", "u9", domain.MethodAlarmStatus, msgNoAutomationConfig},
		{"no methods", "u2", domain.MethodAlarmStatus, msgNoMethods},
		{"method unavailable", "u1", domain.MethodScanCameras, "El método 'scan_cameras' no está disponible en la configuración de Home Assistant. Por favor, contactate con nuestro equipo de soporte técnico para más información."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			webhook := &recordingWebhook{}
			tool := newTool(t, webhook)

			out, err := tool.Call(context.Background(),
				ToolContext{UserID: tc.user, Phone: "543471627777"},
				map[string]any{"method": tc.method},
			)
			require.NoError(t, err)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tc.message, out["message"])
			assert.Empty(t, webhook.calls)
		})
	}
}

func TestHomeAutomationToolWebhookFailure(t *testing.T) {
	tool := newTool(t, &recordingWebhook{err: errors.New("connection refused")})

	out, err := tool.Call(context.Background(),
		ToolContext{UserID: "u1", Phone: "543471627777"},
		map[string]any{"method": domain.MethodAlarmStatus},
	)
	require.NoError(t, err)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, msgWebhookFailed, out["message"])
}

func TestHomeAutomationToolMissingContext(t *testing.T) {
	tool := newTool(t, &recordingWebhook{})
	_, err := tool.Call(context.Background(), ToolContext{}, map[string]any{"method": domain.MethodAlarmStatus})
	assert.Error(t, err)
}
