package domain

// Message is one role-tagged entry of the conversation log.
type Message struct {
	Role    Role
	Content string
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CloneMessages returns an independent copy of a message log.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// LastUserUtterance returns the content of the most recent user message, or "".
func LastUserUtterance(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// User is the identity record resolved for the sender of an inbound message.
type User struct {
	ID          UserID
	FirstName   string
	LastName    string
	Phone       string
	AccessLevel AccessLevel
	CreatedAt   Timestamp
}

func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// StoredMessage is a transcript entry persisted in the durable store.
type StoredMessage struct {
	ID             MessageID
	ConversationID ConversationID
	UserID         UserID
	Role           Role
	Content        string
	CreatedAt      Timestamp
}

// Rating is the durable projection of a RatingOutcome.
type Rating struct {
	ID          string
	UserID      UserID
	Rating      int
	DeviceType  string
	ProblemType string
	CreatedAt   Timestamp
}

// AutomationConfig describes a user's home-automation webhook.
type AutomationConfig struct {
	UserID           UserID
	WebhookURL       string
	Token            string
	AvailableMethods []string
	Verified         bool
}

// HasMethod reports whether method is enabled for this user.
func (c AutomationConfig) HasMethod(method string) bool {
	for _, m := range c.AvailableMethods {
		if m == method {
			return true
		}
	}
	return false
}
