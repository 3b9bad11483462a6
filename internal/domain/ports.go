package domain

import (
	"context"
	"time"
)

// IntentClassifier turns a free-text utterance into intent tags.
type IntentClassifier interface {
	ClassifyIntents(ctx context.Context, text string) (Intents, error)
}

// GenerateRequest gives the text generator the context of the conversation.
type GenerateRequest struct {
	History     []Message
	Business    BusinessInfo
	AccessLevel AccessLevel
	Intents     Intents
}

// Generator produces a free-form assistant reply.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// LLMClient is a text-generation service able to both classify and generate.
type LLMClient interface {
	IntentClassifier
	Generator
}

// Cache is the ephemeral keyed store. Get returns ErrNotFound for missing keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// HistoryStore keeps the short-term message history of a chat.
type HistoryStore interface {
	AppendHistory(ctx context.Context, key string, msg Message) error
	RecentHistory(ctx context.Context, key string, limit int) ([]Message, error)
}

// Delivery sends content to a recipient over the messaging channel.
type Delivery interface {
	SendText(ctx context.Context, to, text string) error
	SendImage(ctx context.Context, to, imageURL, caption string) error
	SendLongText(ctx context.Context, to, text string) error
}

// SecurityMonitor supplies the data behind privileged status reports.
type SecurityMonitor interface {
	AlarmStatus(ctx context.Context, user User) ([]PartitionStatus, error)
	Cameras(ctx context.Context, user User) ([]CameraStatus, error)
}

// UserStore defines user persistence.
type UserStore interface {
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	RegisterUser(ctx context.Context, user *User) error
	UpdateAccessLevel(ctx context.Context, phone string, level AccessLevel) error
}

// MessageStore defines the durable conversation transcript.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *StoredMessage) error
	GetMessagesByConversation(ctx context.Context, id ConversationID, limit int) ([]*StoredMessage, error)
}

// RatingStore defines rating persistence.
type RatingStore interface {
	SaveRating(ctx context.Context, rating *Rating) error
	ListRatings(ctx context.Context, deviceType string) ([]*Rating, error)
}

// BusinessInfoStore loads the business facts.
type BusinessInfoStore interface {
	LoadBusinessInfo(ctx context.Context) (BusinessInfo, error)
}

// AutomationConfigStore loads per-user home-automation settings.
type AutomationConfigStore interface {
	GetAutomationConfig(ctx context.Context, userID UserID) (*AutomationConfig, error)
}

// Store is a durable backend implementing every persistence port.
type Store interface {
	UserStore
	MessageStore
	RatingStore
	BusinessInfoStore
	AutomationConfigStore
}

// AutomationCall is one method invocation on a customer's home-automation webhook.
type AutomationCall struct {
	Method         string
	Phone          string
	ConversationID ConversationID
	CallbackURL    string
	CallbackToken  string
	Params         map[string]any
}

// AutomationWebhook triggers methods on the webhook described by cfg.
// Results arrive later through the automation callback.
type AutomationWebhook interface {
	Trigger(ctx context.Context, cfg AutomationConfig, call AutomationCall) error
}
