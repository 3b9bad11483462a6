package sql

import (
	"strings"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type userRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Phone       string    `gorm:"uniqueIndex;size:32;not null"`
	FirstName   string    `gorm:"size:128"`
	LastName    string    `gorm:"size:128"`
	AccessLevel int       `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toUser() *domain.User {
	return &domain.User{
		ID:          domain.UserID(r.ID),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Phone:       r.Phone,
		AccessLevel: domain.AccessLevel(r.AccessLevel),
		CreatedAt:   r.CreatedAt,
	}
}

type messageRow struct {
	ID             string    `gorm:"primaryKey;size:64"`
	ConversationID string    `gorm:"index:idx_conversation_created,priority:1;size:64;not null"`
	UserID         string    `gorm:"size:64"`
	Role           string    `gorm:"size:16;not null"`
	Content        string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index:idx_conversation_created,priority:2;not null"`
}

func (messageRow) TableName() string { return "conversations" }

func (r messageRow) toMessage() *domain.StoredMessage {
	return &domain.StoredMessage{
		ID:             domain.MessageID(r.ID),
		ConversationID: domain.ConversationID(r.ConversationID),
		UserID:         domain.UserID(r.UserID),
		Role:           domain.Role(r.Role),
		Content:        r.Content,
		CreatedAt:      r.CreatedAt,
	}
}

type ratingRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	UserID      string    `gorm:"index;size:64"`
	Rating      int       `gorm:"not null"`
	DeviceType  string    `gorm:"index;size:64"`
	ProblemType string    `gorm:"size:64"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ratingRow) TableName() string { return "ratings" }

func (r ratingRow) toRating() *domain.Rating {
	return &domain.Rating{
		ID:          r.ID,
		UserID:      domain.UserID(r.UserID),
		Rating:      r.Rating,
		DeviceType:  r.DeviceType,
		ProblemType: r.ProblemType,
		CreatedAt:   r.CreatedAt,
	}
}

type businessInfoRow struct {
	Key   string `gorm:"primaryKey;column:clave;size:64"`
	Value string `gorm:"column:valor;type:text"`
}

func (businessInfoRow) TableName() string { return "business_info" }

type automationRow struct {
	UserID           string `gorm:"primaryKey;size:64"`
	WebhookURL       string `gorm:"size:512"`
	Token            string `gorm:"size:512"`
	AvailableMethods string `gorm:"type:text"` // comma separated
	Verified         bool
}

func (automationRow) TableName() string { return "home_assistant_configs" }

func (r automationRow) toConfig() *domain.AutomationConfig {
	var methods []string
	for _, m := range strings.Split(r.AvailableMethods, ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return &domain.AutomationConfig{
		UserID:           domain.UserID(r.UserID),
		WebhookURL:       r.WebhookURL,
		Token:            r.Token,
		AvailableMethods: methods,
		Verified:         r.Verified,
	}
}
