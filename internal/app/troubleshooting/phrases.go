package troubleshooting

import (
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/textutil"
)

// Exit vocabulary. Words match on word boundaries, phrases as word sequences,
// and the bare forms only when they are the whole utterance.
var (
	exitWords   = []string{"salir", "cancelar", "terminar", "volver", "atras", "menu", "exit", "cancel"}
	exitPhrases = []string{"no quiero", "no quiero seguir", "quiero hablar de otra cosa", "menu principal"}
	exitBare    = []string{"no", "stop", "basta", "chau"}
)

var (
	affirmativeWords   = []string{"si", "yes", "quiero", "dale", "ok", "okay", "1", "aceptar", "claro", "bueno", "porfa"}
	affirmativePhrases = []string{"quiero seguir", "quiero continuar", "por favor", "de acuerdo"}
)

// IsExit reports whether the utterance abandons the guided flow.
func IsExit(utterance string) bool {
	norm := textutil.Normalize(utterance)
	if norm == "" {
		return false
	}
	bare := strings.Trim(norm, ".!?¡¿ ")
	for _, w := range exitBare {
		if bare == w {
			return true
		}
	}
	for _, p := range exitPhrases {
		if textutil.ContainsWord(norm, p) {
			return true
		}
	}
	for _, w := range exitWords {
		if textutil.ContainsWord(norm, w) {
			return true
		}
	}
	return false
}

// IsAffirmative reports whether the utterance accepts the offer of help.
func IsAffirmative(utterance string) bool {
	words := textutil.Words(utterance)
	for _, w := range words {
		for _, a := range affirmativeWords {
			if w == a {
				return true
			}
		}
	}
	for _, p := range affirmativePhrases {
		if textutil.ContainsWord(utterance, p) {
			return true
		}
	}
	return false
}

// ParseRating accepts exactly one digit between 1 and 5.
func ParseRating(utterance string) (int, bool) {
	s := strings.TrimSpace(utterance)
	if len(s) != 1 || s[0] < '1' || s[0] > '5' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
