package troubleshooting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExit(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"salir", true},
		{"SALIR!", true},
		{"quiero cancelar", true},
		{"no quiero seguir", true},
		{"no quiero", true},
		{"quiero hablar de otra cosa", true},
		{"menú principal", true},
		{"atrás", true},
		{"no", true},
		{"No.", true},
		{"stop", true},
		{"no gracias", false},
		{"stop please", false},
		{"No puedo activar el sistema", false},
		{"Necesito anular una zona", false},
		{"sí", false},
		{"2", false},
		{"", false},
		{"salirme", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsExit(tt.utterance), tt.utterance)
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, u := range []string{"sí", "Si, dale", "ok", "quiero seguir", "1", "claro que sí", "por favor"} {
		assert.True(t, IsAffirmative(u), u)
	}
	for _, u := range []string{"mañana", "2", "sistema", ""} {
		assert.False(t, IsAffirmative(u), u)
	}
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "5": 5, " 3 ": 3} {
		got, ok := ParseRating(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"0", "6", "10", "5 estrellas", "cinco", "", "3.0"} {
		_, ok := ParseRating(in)
		assert.False(t, ok, in)
	}
}
