package troubleshooting

import (
	"strconv"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/textutil"
)

// minReverseMatch is the shortest utterance that may match as a fragment of a title.
const minReverseMatch = 5

// menuIndex parses a 1-based menu position. ok is false for non-numeric input;
// idx is -1 when the number is out of range.
func menuIndex(utterance string, size int) (idx int, ok bool) {
	s := strings.TrimSpace(utterance)
	if !textutil.IsDigits(s) {
		return -1, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > size {
		return -1, true
	}
	return n - 1, true
}

func selectDevice(utterance string, devices []domain.Device) (domain.Device, bool) {
	if idx, numeric := menuIndex(utterance, len(devices)); numeric {
		if idx < 0 {
			return domain.Device{}, false
		}
		return devices[idx], true
	}
	for _, d := range devices {
		if textutil.ContainsWord(utterance, d.Name) || textutil.ContainsWord(utterance, d.Key) {
			return d, true
		}
		for _, alias := range d.Aliases {
			if textutil.ContainsWord(utterance, alias) {
				return d, true
			}
		}
	}
	return domain.Device{}, false
}

func selectProblem(utterance string, problems []domain.Problem) (domain.Problem, bool) {
	if idx, numeric := menuIndex(utterance, len(problems)); numeric {
		if idx < 0 {
			return domain.Problem{}, false
		}
		return problems[idx], true
	}
	for _, p := range problems {
		if textutil.ContainsWord(utterance, p.Title) || textutil.ContainsWord(utterance, p.Key) {
			return p, true
		}
	}
	if len(textutil.Normalize(utterance)) < minReverseMatch {
		return domain.Problem{}, false
	}
	for _, p := range problems {
		if textutil.ContainsWord(p.Title, utterance) {
			return p, true
		}
	}
	return domain.Problem{}, false
}
