package domain

import (
	"errors"
	"time"
)

type UserID string
type ConversationID string
type MessageID string

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two roles a message log may carry.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// AccessLevel is the tier that gates which handlers a user can reach.
type AccessLevel int

const (
	LevelGeneral  AccessLevel = 1 // public, basic information only
	LevelCustomer AccessLevel = 2 // + guided troubleshooting
	LevelVIP      AccessLevel = 3 // + alarm status and camera scan
)

// Access thresholds. Alarm control has no threshold: it is denied at every level.
const (
	MinLevelTroubleshooting = LevelCustomer
	MinLevelAlarmStatus     = LevelVIP
	MinLevelCameraScan      = LevelVIP
)

type Timestamp = time.Time
