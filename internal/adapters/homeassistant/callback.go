package homeassistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

var ErrIncompleteCallback = errors.New("callback requires phone and conversation_id")

// Callback is what the webhook posts back once a method ran. Exactly one of
// TextMessage, ImageURL, Results or Error is expected.
type Callback struct {
	Phone          string          `json:"phone"`
	ConversationID string          `json:"conversation_id"`
	TextMessage    string          `json:"text_message,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Caption        string          `json:"caption,omitempty"`
	Method         string          `json:"method,omitempty"`
	Results        json.RawMessage `json:"results,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func ParseCallback(body []byte) (Callback, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return Callback{}, fmt.Errorf("decode callback: %w", err)
	}
	if cb.Phone == "" || cb.ConversationID == "" {
		return Callback{}, ErrIncompleteCallback
	}
	return cb, nil
}

// DecodePartitions reads {"partitions": {"name": "state"}}, sorted by name.
func DecodePartitions(raw json.RawMessage) ([]domain.PartitionStatus, bool) {
	var body struct {
		Partitions map[string]string `json:"partitions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Partitions == nil {
		return nil, false
	}

	names := make([]string, 0, len(body.Partitions))
	for name := range body.Partitions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.PartitionStatus, 0, len(names))
	for _, name := range names {
		out = append(out, domain.PartitionStatus{Name: name, State: body.Partitions[name]})
	}
	return out, true
}

// DecodeCameras reads {"cameras": [{"id", "name", "state"}]}.
func DecodeCameras(raw json.RawMessage) ([]domain.CameraStatus, bool) {
	var body struct {
		Cameras []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"cameras"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Cameras == nil {
		return nil, false
	}

	out := make([]domain.CameraStatus, 0, len(body.Cameras))
	for _, c := range body.Cameras {
		state := c.State
		if state == "" {
			state = "Desconocido"
		}
		out = append(out, domain.CameraStatus{ID: c.ID, Name: c.Name, State: state})
	}
	return out, true
}

// RawResults renders results the caller has no dedicated format for.
func RawResults(method string, raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Sprintf("Resultados recibidos para '%s' (formato no reconocido).", method)
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	return fmt.Sprintf("Resultados de '%s':\n\n%s", method, strings.TrimSpace(string(pretty)))
}
