package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// ErrCorruptRecord marks a persisted record that cannot be turned back into a session.
var ErrCorruptRecord = errors.New("corrupt session record")

// MessageRecord is the flattened form of a log entry.
type MessageRecord struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is the persisted projection of a troubleshooting session.
type Record struct {
	CurrentStep    int             `json:"current_step"`
	KeyboardType   string          `json:"keyboard_type,omitempty"`
	ProblemType    string          `json:"problem_type,omitempty"`
	SolutionsShown []string        `json:"solutions_shown,omitempty"`
	Rating         int             `json:"rating,omitempty"`
	Messages       []MessageRecord `json:"messages,omitempty"`
}

// Encode projects a session onto its record form.
func Encode(s domain.TroubleshootingSession) Record {
	r := Record{
		CurrentStep:  int(s.Step),
		KeyboardType: s.DeviceType,
		ProblemType:  s.ProblemType,
		Rating:       s.Rating,
	}
	if len(s.SolutionsShown) > 0 {
		r.SolutionsShown = append([]string(nil), s.SolutionsShown...)
	}
	if len(s.Messages) > 0 {
		r.Messages = make([]MessageRecord, len(s.Messages))
		for i, m := range s.Messages {
			r.Messages[i] = MessageRecord{Role: string(m.Role), Content: m.Content}
		}
	}
	return r
}

// Decode rebuilds a session from its record, rejecting shapes no session could produce.
func Decode(r Record) (domain.TroubleshootingSession, error) {
	step := domain.Step(r.CurrentStep)
	if !step.Valid() {
		return domain.TroubleshootingSession{}, fmt.Errorf("%w: step %d", ErrCorruptRecord, r.CurrentStep)
	}
	if r.Rating < 0 || r.Rating > 5 {
		return domain.TroubleshootingSession{}, fmt.Errorf("%w: rating %d", ErrCorruptRecord, r.Rating)
	}

	s := domain.TroubleshootingSession{
		Step:        step,
		DeviceType:  r.KeyboardType,
		ProblemType: r.ProblemType,
		Rating:      r.Rating,
	}
	if len(r.SolutionsShown) > 0 {
		s.SolutionsShown = append([]string(nil), r.SolutionsShown...)
	}
	if len(r.Messages) > 0 {
		s.Messages = make([]domain.Message, len(r.Messages))
		for i, m := range r.Messages {
			role := domain.Role(m.Role)
			if !role.Valid() {
				return domain.TroubleshootingSession{}, fmt.Errorf("%w: message %d has role %q", ErrCorruptRecord, i, m.Role)
			}
			s.Messages[i] = domain.Message{Role: role, Content: m.Content}
		}
	}
	return s, nil
}

// Marshal encodes a session to the bytes stored in the cache.
func Marshal(s domain.TroubleshootingSession) ([]byte, error) {
	data, err := json.Marshal(Encode(s))
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// Unmarshal decodes cache bytes. Any failure wraps ErrCorruptRecord.
func Unmarshal(data []byte) (domain.TroubleshootingSession, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.TroubleshootingSession{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return Decode(r)
}
