// Package cache holds the shared pieces of the ephemeral keyed-cache adapters.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

const (
	// HistoryMaxLen is how many entries a history list keeps, newest first.
	HistoryMaxLen = 50
	// HistoryTTL is refreshed on every append.
	HistoryTTL = 7 * 24 * time.Hour
)

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EncodeHistory is the list element format shared by every cache backend.
func EncodeHistory(msg domain.Message) ([]byte, error) {
	data, err := json.Marshal(historyEntry{Role: string(msg.Role), Content: msg.Content})
	if err != nil {
		return nil, fmt.Errorf("encode history entry: %w", err)
	}
	return data, nil
}

func DecodeHistory(data []byte) (domain.Message, error) {
	var e historyEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return domain.Message{}, fmt.Errorf("decode history entry: %w", err)
	}
	role := domain.Role(e.Role)
	if !role.Valid() {
		return domain.Message{}, fmt.Errorf("decode history entry: unknown role %q", e.Role)
	}
	return domain.Message{Role: role, Content: e.Content}, nil
}
