package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

func TestParseIntents(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Intents
	}{
		{"saludo, horario", domain.Intents{domain.IntentGreeting, domain.IntentHours}},
		{"Ninguna", domain.Intents{}},
		{"", domain.Intents{}},
		{"- saludo\n- telefono2\n- telefono1", domain.Intents{domain.IntentGreeting, domain.IntentPhone}},
		{`"problema_alarma".`, domain.Intents{domain.IntentAlarmProblem}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseIntents(tt.raw), tt.raw)
	}
}

func TestBuildResponseSystemPrompt(t *testing.T) {
	prompt := BuildResponseSystemPrompt(domain.GenerateRequest{
		AccessLevel: domain.LevelVIP,
		Intents:     domain.NewIntents("saludo"),
		Business: domain.BusinessInfo{
			domain.BizHours:   "8 a 17",
			domain.BizAddress: "San Martín 1234",
			domain.BizEmail:   "",
		},
	})

	assert.Contains(t, prompt, "Taborra Alarmas")
	assert.Contains(t, prompt, "Nivel de acceso del usuario: 3")
	assert.Contains(t, prompt, "Intenciones detectadas: saludo")
	assert.Contains(t, prompt, "- direccion: San Martín 1234\n- horario: 8 a 17")
	assert.NotContains(t, prompt, "- email:")
}

func TestTranscript(t *testing.T) {
	got := Transcript([]domain.Message{
		domain.UserMessage("hola"),
		domain.AssistantMessage("¡Hola!"),
	})
	assert.Equal(t, "usuario: hola\nasistente: ¡Hola!\nasistente:", got)
}

func TestMockClassifier(t *testing.T) {
	m := NewMockLLM()
	tests := map[string]domain.Intents{
		"Hola, ¿cuál es el horario?":       {domain.IntentGreeting, domain.IntentHours},
		"tengo un problema con el teclado": {domain.IntentAlarmProblem},
		"quiero ver las cámaras":           {domain.IntentCameraScan},
		"podés desactivar la alarma?":      {domain.IntentAlarmControl},
		"blablabla":                        {},
	}
	for text, want := range tests {
		got, err := m.ClassifyIntents(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
}

func TestMockGenerate(t *testing.T) {
	reply, err := NewMockLLM().Generate(context.Background(), domain.GenerateRequest{
		History: []domain.Message{domain.UserMessage("qué planes tienen?")},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(reply, `"qué planes tienen?"`))
}

func TestHistoryContentsRoles(t *testing.T) {
	contents := historyContents([]domain.Message{
		domain.UserMessage("hola"),
		{Role: domain.RoleAssistant, Content: "¿En qué te ayudo?"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hola", contents[0].Parts[0].Text)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "¿En qué te ayudo?", contents[1].Parts[0].Text)
	assert.Empty(t, historyContents(nil))
}
