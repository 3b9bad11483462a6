package domain

// Turn is the transient state of one inbound message being processed.
type Turn struct {
	Messages        []Message
	User            User
	Intents         Intents
	Business        BusinessInfo
	Troubleshooting SessionState

	RatingOutcome     *RatingOutcome
	PendingSideEffect *SideEffect
	Images            []ImageRef

	// baseLen is the log length before routing.
	baseLen int
}

// NewTurn builds a turn over a snapshot of the given log.
func NewTurn(messages []Message, user User, intents Intents, business BusinessInfo, st SessionState) *Turn {
	msgs := CloneMessages(messages)
	return &Turn{
		Messages:        msgs,
		User:            user,
		Intents:         intents,
		Business:        business,
		Troubleshooting: st,
		baseLen:         len(msgs),
	}
}

// Say appends an assistant message to the log.
func (t *Turn) Say(content string) {
	t.Messages = append(t.Messages, AssistantMessage(content))
}

// Utterance is the current user message.
func (t *Turn) Utterance() string {
	return LastUserUtterance(t.Messages)
}

// Replies returns the assistant messages produced during this turn.
func (t *Turn) Replies() []Message {
	if t.baseLen > len(t.Messages) {
		return nil
	}
	var out []Message
	for _, m := range t.Messages[t.baseLen:] {
		if m.Role == RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}

// TurnResult is what the engine hands back to its caller for one turn.
type TurnResult struct {
	Route             string
	Messages          []Message
	Replies           []Message
	Session           SessionState
	RatingOutcome     *RatingOutcome
	PendingSideEffect *SideEffect
	Images            []ImageRef
}

// Result snapshots the turn into a TurnResult.
func (t *Turn) Result(route string) TurnResult {
	return TurnResult{
		Route:             route,
		Messages:          CloneMessages(t.Messages),
		Replies:           t.Replies(),
		Session:           t.Troubleshooting,
		RatingOutcome:     t.RatingOutcome,
		PendingSideEffect: t.PendingSideEffect,
		Images:            t.Images,
	}
}
