// Package conversation runs one inbound message through the whole pipeline:
// duplicate suppression, user resolution, classification, routing, session
// persistence, transcript and delivery.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/taborra-agent/internal/app/dialogue"
	"github.com/PabloGalante/taborra-agent/internal/app/session"
	"github.com/PabloGalante/taborra-agent/internal/app/tools"
	"github.com/PabloGalante/taborra-agent/internal/catalog"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

const (
	businessInfoKey = "info_business"

	DefaultHistoryLimit    = 10
	DefaultDedupTTL        = 24 * time.Hour
	DefaultBusinessInfoTTL = 24 * time.Hour
	ConversationTTL        = 24 * time.Hour
)

// Status tells the transport what happened to an inbound message.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusDuplicate Status = "duplicate"
)

func dedupKey(messageID string) string {
	return "message:" + messageID
}

func conversationKey(phone string) string {
	return fmt.Sprintf("taborra:user:%s:current_chat", phone)
}

// HistoryKey is the cache list holding the short-term history of a conversation.
func HistoryKey(id domain.ConversationID) string {
	return fmt.Sprintf("taborra:chat:%s:messages", id)
}

// Deps are the collaborators of the pipeline. Tool is optional.
type Deps struct {
	Classifier domain.IntentClassifier
	Router     *dialogue.Router
	Sessions   *session.Store
	Cache      domain.Cache
	History    domain.HistoryStore
	Store      domain.Store
	Delivery   domain.Delivery
	Tool       tools.Tool
	Metrics    *observability.Metrics
}

type Options struct {
	HistoryLimit    int
	DedupTTL        time.Duration
	BusinessInfoTTL time.Duration
	// PublicBaseURL prefixes catalog image references.
	PublicBaseURL string
}

type Service struct {
	deps Deps
	opts Options
	now  func() time.Time

	// locks serializes turns of the same phone inside this process.
	locks sync.Map
}

func NewService(deps Deps, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = DefaultDedupTTL
	}
	if opts.BusinessInfoTTL <= 0 {
		opts.BusinessInfoTTL = DefaultBusinessInfoTTL
	}
	return &Service{
		deps: deps,
		opts: opts,
		now:  time.Now,
	}
}

type InboundMessage struct {
	MessageID string
	Phone     string
	Name      string
	Text      string
}

type InboundResult struct {
	Status         Status
	ConversationID domain.ConversationID
	Route          string
	Replies        []domain.Message
	Session        domain.SessionState
	SideEffect     map[string]any
}

// HandleInbound processes one user message. Collaborator failures degrade
// the turn instead of failing it; an error is returned only when nothing
// could be delivered.
func (s *Service) HandleInbound(ctx context.Context, in InboundMessage) (*InboundResult, error) {
	log := observability.LoggerFromContext(ctx).With(
		"phone", in.Phone,
		"message_id", in.MessageID,
	)

	if in.MessageID != "" {
		fresh, err := s.deps.Cache.SetNX(ctx, dedupKey(in.MessageID), []byte("1"), s.opts.DedupTTL)
		if err != nil {
			s.deps.Metrics.IncCollaboratorFailure("cache")
			log.Warn("dedup marker failed, processing anyway", "error", err)
		} else if !fresh {
			log.Info("duplicate message ignored")
			return &InboundResult{Status: StatusDuplicate}, nil
		}
	}

	unlock := s.lock(in.Phone)
	defer unlock()

	user := s.resolveUser(ctx, in.Phone, in.Name)
	intents := s.classify(ctx, in.Text)
	convID := s.conversationID(ctx, in.Phone)
	log = log.With("user_id", user.ID, "conversation_id", convID)

	history, err := s.deps.History.RecentHistory(ctx, HistoryKey(convID), s.opts.HistoryLimit)
	if err != nil {
		s.deps.Metrics.IncCollaboratorFailure("cache")
		log.Warn("history unavailable", "error", err)
		history = nil
	}
	userMsg := domain.UserMessage(in.Text)
	messages := append(history, userMsg)

	business := s.businessInfo(ctx)

	sessKey := session.Key(in.Phone, convID)
	state, loadErr := s.deps.Sessions.Load(ctx, sessKey)
	if loadErr != nil {
		s.deps.Metrics.IncCollaboratorFailure("cache")
		log.Warn("session unavailable, starting fresh", "error", loadErr)
	}

	turn := domain.NewTurn(messages, user, intents, business, state)
	res := s.deps.Router.Route(ctx, turn)

	log.Info("turn routed",
		"route", res.Route,
		"intents", intents.Strings(),
		"session_before", stepOf(state),
		"session_after", stepOf(res.Session),
	)

	// An unreadable record may still hold a live flow; only a session this
	// turn produced may replace it.
	if loadErr == nil || res.Session.Active() {
		if err := s.deps.Sessions.Save(ctx, sessKey, res.Session); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("cache")
			log.Error("failed to persist session", "error", err)
		}
	}

	if res.RatingOutcome != nil {
		rating := &domain.Rating{
			UserID:      user.ID,
			Rating:      res.RatingOutcome.Rating,
			DeviceType:  res.RatingOutcome.DeviceType,
			ProblemType: res.RatingOutcome.ProblemType,
		}
		if err := s.deps.Store.SaveRating(ctx, rating); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("store")
			log.Error("failed to save rating", "error", err)
		}
	}

	s.record(ctx, user, convID, append([]domain.Message{userMsg}, res.Replies...))

	if err := s.deliver(ctx, in.Phone, res); err != nil {
		return nil, err
	}

	out := &InboundResult{
		Status:         StatusProcessed,
		ConversationID: convID,
		Route:          res.Route,
		Replies:        res.Replies,
		Session:        res.Session,
	}

	if res.PendingSideEffect != nil {
		out.SideEffect = s.runSideEffect(ctx, user, in.Phone, convID, res.PendingSideEffect)
	}
	return out, nil
}

func (s *Service) lock(phone string) func() {
	v, _ := s.locks.LoadOrStore(phone, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) resolveUser(ctx context.Context, phone, name string) domain.User {
	log := observability.LoggerFromContext(ctx).With("phone", phone)

	u, err := s.deps.Store.GetUserByPhone(ctx, phone)
	if err == nil {
		return *u
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.deps.Metrics.IncCollaboratorFailure("store")
		log.Error("user lookup failed, continuing as general user", "error", err)
		return domain.User{Phone: phone, AccessLevel: domain.LevelGeneral}
	}

	first, last := splitName(name)
	nu := &domain.User{
		FirstName:   first,
		LastName:    last,
		Phone:       phone,
		AccessLevel: domain.LevelGeneral,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.deps.Store.RegisterUser(ctx, nu); err != nil {
		s.deps.Metrics.IncCollaboratorFailure("store")
		log.Error("failed to register user", "error", err)
	} else {
		log.Info("registered new user", "user_id", nu.ID)
	}
	return *nu
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Usuario", ""
	}
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}

func (s *Service) classify(ctx context.Context, text string) domain.Intents {
	if s.deps.Classifier == nil {
		return domain.Intents{}
	}
	intents, err := s.deps.Classifier.ClassifyIntents(ctx, text)
	if err != nil {
		s.deps.Metrics.IncCollaboratorFailure("classifier")
		observability.LoggerFromContext(ctx).Error("intent classification failed", "error", err)
		return domain.Intents{}
	}
	return intents
}

func (s *Service) conversationID(ctx context.Context, phone string) domain.ConversationID {
	key := conversationKey(phone)
	data, err := s.deps.Cache.Get(ctx, key)
	if err == nil && len(data) > 0 {
		return domain.ConversationID(data)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.deps.Metrics.IncCollaboratorFailure("cache")
		observability.LoggerFromContext(ctx).Warn("conversation id lookup failed", "error", err)
	}

	id := domain.ConversationID(uuid.NewString())
	if err := s.deps.Cache.Set(ctx, key, []byte(id), ConversationTTL); err != nil {
		s.deps.Metrics.IncCollaboratorFailure("cache")
		observability.LoggerFromContext(ctx).Warn("failed to store conversation id", "error", err)
	}
	return id
}

func (s *Service) businessInfo(ctx context.Context) domain.BusinessInfo {
	log := observability.LoggerFromContext(ctx)

	if data, err := s.deps.Cache.Get(ctx, businessInfoKey); err == nil {
		var info domain.BusinessInfo
		if err := json.Unmarshal(data, &info); err == nil {
			return info
		}
		log.Warn("discarding unreadable cached business info")
	}

	info, err := s.deps.Store.LoadBusinessInfo(ctx)
	if err != nil {
		s.deps.Metrics.IncCollaboratorFailure("store")
		log.Error("failed to load business info", "error", err)
		return domain.BusinessInfo{}
	}
	if data, err := json.Marshal(info); err == nil {
		if err := s.deps.Cache.Set(ctx, businessInfoKey, data, s.opts.BusinessInfoTTL); err != nil {
			log.Warn("failed to cache business info", "error", err)
		}
	}
	return info
}

// record appends msgs to the cached history and the durable transcript.
func (s *Service) record(ctx context.Context, user domain.User, convID domain.ConversationID, msgs []domain.Message) {
	log := observability.LoggerFromContext(ctx)
	for _, m := range msgs {
		if err := s.deps.History.AppendHistory(ctx, HistoryKey(convID), m); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("cache")
			log.Warn("failed to append history", "error", err)
		}
		if user.ID == "" {
			continue
		}
		err := s.deps.Store.AppendMessage(ctx, &domain.StoredMessage{
			ConversationID: convID,
			UserID:         user.ID,
			Role:           m.Role,
			Content:        m.Content,
			CreatedAt:      s.now().UTC(),
		})
		if err != nil {
			s.deps.Metrics.IncCollaboratorFailure("store")
			log.Warn("failed to append transcript", "error", err)
		}
	}
}

// deliver sends images first, then every reply. Image failures are logged;
// a text failure is returned.
func (s *Service) deliver(ctx context.Context, phone string, res domain.TurnResult) error {
	log := observability.LoggerFromContext(ctx)

	for _, img := range res.Images {
		url := catalog.ImageURL(s.opts.PublicBaseURL, img.Reference)
		if url == "" {
			continue
		}
		if err := s.deps.Delivery.SendImage(ctx, phone, url, img.Caption); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("delivery")
			log.Warn("failed to send image", "image", img.Reference, "error", err)
		}
	}

	for _, m := range res.Replies {
		if err := s.deps.Delivery.SendLongText(ctx, phone, m.Content); err != nil {
			s.deps.Metrics.IncCollaboratorFailure("delivery")
			log.Error("failed to deliver reply", "error", err)
			return fmt.Errorf("deliver reply: %w", err)
		}
	}
	return nil
}

// runSideEffect executes the pending action after delivery. A refusal is
// delivered to the user and recorded in the history.
func (s *Service) runSideEffect(ctx context.Context, user domain.User, phone string, convID domain.ConversationID, effect *domain.SideEffect) map[string]any {
	log := observability.LoggerFromContext(ctx).With("method", effect.Method)
	if s.deps.Tool == nil {
		log.Warn("pending side effect dropped, no tool configured")
		return nil
	}

	out, err := s.deps.Tool.Call(ctx, tools.ToolContext{
		UserID:         string(user.ID),
		Phone:          phone,
		ConversationID: string(convID),
	}, map[string]any{
		"method": effect.Method,
		"params": effect.Params,
	})
	if err != nil {
		s.deps.Metrics.IncCollaboratorFailure("automation")
		log.Error("side effect failed", "error", err)
		return nil
	}

	if ok, _ := out["success"].(bool); !ok {
		msg, _ := out["message"].(string)
		if msg != "" {
			if err := s.deps.Delivery.SendLongText(ctx, phone, msg); err != nil {
				log.Warn("failed to deliver side effect refusal", "error", err)
			}
			s.record(ctx, user, convID, []domain.Message{domain.AssistantMessage(msg)})
		}
	}
	return out
}

func stepOf(st domain.SessionState) string {
	sess, ok := st.Session()
	if !ok {
		return "inactive"
	}
	return sess.Step.String()
}
