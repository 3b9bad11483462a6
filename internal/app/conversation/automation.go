package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/taborra-agent/internal/app/tools"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

var ErrNoTool = errors.New("home automation tool not configured")

// AutomationReply is a home-automation result ready to be delivered: either
// Text, or an image with an optional caption.
type AutomationReply struct {
	Phone          string
	ConversationID domain.ConversationID
	Text           string
	ImageURL       string
	Caption        string
}

// HandleAutomationReply delivers an asynchronous home-automation result and
// appends it to the conversation history.
func (s *Service) HandleAutomationReply(ctx context.Context, r AutomationReply) error {
	log := observability.LoggerFromContext(ctx).With(
		"phone", r.Phone,
		"conversation_id", r.ConversationID,
	)

	var entry string
	if r.ImageURL != "" {
		if err := s.deps.Delivery.SendImage(ctx, r.Phone, r.ImageURL, r.Caption); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("delivery")
			return fmt.Errorf("deliver automation image: %w", err)
		}
		entry = "📸 [Imagen enviada]"
		if r.Caption != "" {
			entry += ": " + r.Caption
		}
	} else {
		if err := s.deps.Delivery.SendLongText(ctx, r.Phone, r.Text); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("delivery")
			return fmt.Errorf("deliver automation reply: %w", err)
		}
		entry = r.Text
	}

	var user domain.User
	if u, err := s.deps.Store.GetUserByPhone(ctx, r.Phone); err == nil {
		user = *u
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Warn("user lookup failed, transcript skipped", "error", err)
	}
	s.record(ctx, user, r.ConversationID, []domain.Message{domain.AssistantMessage(entry)})

	log.Info("automation reply delivered", "image", r.ImageURL != "")
	return nil
}

// TriggerAutomation runs a home-automation method for a registered phone
// outside of a conversation turn.
func (s *Service) TriggerAutomation(ctx context.Context, phone, method string, params map[string]any) (map[string]any, error) {
	if s.deps.Tool == nil {
		return nil, ErrNoTool
	}

	u, err := s.deps.Store.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("trigger automation: %w", err)
	}
	convID := s.conversationID(ctx, phone)

	return s.deps.Tool.Call(ctx, tools.ToolContext{
		UserID:         string(u.ID),
		Phone:          phone,
		ConversationID: string(convID),
	}, map[string]any{
		"method": method,
		"params": params,
	})
}
