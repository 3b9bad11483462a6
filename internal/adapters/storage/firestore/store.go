package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store on the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(phone string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(phone)
}

func (s *Store) messagesCol(id domain.ConversationID) *firestore.CollectionRef {
	return s.client.Collection("conversations").Doc(string(id)).Collection("messages")
}

func (s *Store) ratingsCol() *firestore.CollectionRef {
	return s.client.Collection("ratings")
}

func (s *Store) businessDoc() *firestore.DocumentRef {
	return s.client.Collection("config").Doc("business_info")
}

func (s *Store) automationDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("automation_configs").Doc(string(userID))
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type userDoc struct {
	ID          string    `firestore:"id"`
	FirstName   string    `firestore:"first_name"`
	LastName    string    `firestore:"last_name"`
	AccessLevel int       `firestore:"access_level"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type messageDoc struct {
	ConversationID string    `firestore:"conversation_id"`
	UserID         string    `firestore:"user_id"`
	Role           string    `firestore:"role"`
	Content        string    `firestore:"content"`
	CreatedAt      time.Time `firestore:"created_at"`
}

type ratingDoc struct {
	UserID      string    `firestore:"user_id"`
	Rating      int       `firestore:"rating"`
	DeviceType  string    `firestore:"device_type"`
	ProblemType string    `firestore:"problem_type"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type automationDoc struct {
	WebhookURL       string   `firestore:"webhook_url"`
	Token            string   `firestore:"token"`
	AvailableMethods []string `firestore:"available_methods"`
	Verified         bool     `firestore:"verified"`
}

// ─────────────────────────────────────────
// UserStore implementation
// ─────────────────────────────────────────

func (s *Store) RegisterUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = domain.UserID(uuid.NewString())
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.AccessLevel == 0 {
		user.AccessLevel = domain.LevelGeneral
	}

	doc := userDoc{
		ID:          string(user.ID),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AccessLevel: int(user.AccessLevel),
		CreatedAt:   user.CreatedAt,
	}
	if _, err := s.userDoc(user.Phone).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore RegisterUser: %w", err)
	}
	return nil
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	snap, err := s.userDoc(phone).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetUserByPhone: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetUserByPhone decode: %w", err)
	}

	return &domain.User{
		ID:          domain.UserID(doc.ID),
		FirstName:   doc.FirstName,
		LastName:    doc.LastName,
		Phone:       phone,
		AccessLevel: domain.AccessLevel(doc.AccessLevel),
		CreatedAt:   doc.CreatedAt,
	}, nil
}

func (s *Store) UpdateAccessLevel(ctx context.Context, phone string, level domain.AccessLevel) error {
	_, err := s.userDoc(phone).Update(ctx, []firestore.Update{
		{Path: "access_level", Value: int(level)},
	})
	if err != nil {
		if notFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore UpdateAccessLevel: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.StoredMessage) error {
	if msg.ID == "" {
		msg.ID = domain.MessageID(uuid.NewString())
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	doc := messageDoc{
		ConversationID: string(msg.ConversationID),
		UserID:         string(msg.UserID),
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}

	_, err := s.messagesCol(msg.ConversationID).Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// GetMessagesByConversation returns the newest limit messages, oldest first.
func (s *Store) GetMessagesByConversation(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.StoredMessage, error) {
	q := s.messagesCol(id).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.StoredMessage
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesByConversation: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.StoredMessage{
			ID:             domain.MessageID(snap.Ref.ID),
			ConversationID: id,
			UserID:         domain.UserID(doc.UserID),
			Role:           domain.Role(doc.Role),
			Content:        doc.Content,
			CreatedAt:      doc.CreatedAt,
		})
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ─────────────────────────────────────────
// RatingStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveRating(ctx context.Context, rating *domain.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	doc := ratingDoc{
		UserID:      string(rating.UserID),
		Rating:      rating.Rating,
		DeviceType:  rating.DeviceType,
		ProblemType: rating.ProblemType,
		CreatedAt:   rating.CreatedAt,
	}
	if _, err := s.ratingsCol().Doc(rating.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveRating: %w", err)
	}
	return nil
}

func (s *Store) ListRatings(ctx context.Context, deviceType string) ([]*domain.Rating, error) {
	q := s.ratingsCol().OrderBy("created_at", firestore.Asc)
	if deviceType != "" {
		q = s.ratingsCol().Where("device_type", "==", deviceType).OrderBy("created_at", firestore.Asc)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Rating
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListRatings: %w", err)
		}

		var doc ratingDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode ratingDoc: %w", err)
		}
		out = append(out, &domain.Rating{
			ID:          snap.Ref.ID,
			UserID:      domain.UserID(doc.UserID),
			Rating:      doc.Rating,
			DeviceType:  doc.DeviceType,
			ProblemType: doc.ProblemType,
			CreatedAt:   doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// Reference data
// ─────────────────────────────────────────

// LoadBusinessInfo reads config/business_info as a flat string map.
func (s *Store) LoadBusinessInfo(ctx context.Context) (domain.BusinessInfo, error) {
	snap, err := s.businessDoc().Get(ctx)
	if err != nil {
		if notFound(err) {
			return domain.BusinessInfo{}, nil
		}
		return nil, fmt.Errorf("firestore LoadBusinessInfo: %w", err)
	}

	out := make(domain.BusinessInfo)
	for k, v := range snap.Data() {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out, nil
}

func (s *Store) GetAutomationConfig(ctx context.Context, userID domain.UserID) (*domain.AutomationConfig, error) {
	snap, err := s.automationDoc(userID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetAutomationConfig: %w", err)
	}

	var doc automationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode automationDoc: %w", err)
	}
	return &domain.AutomationConfig{
		UserID:           userID,
		WebhookURL:       doc.WebhookURL,
		Token:            doc.Token,
		AvailableMethods: doc.AvailableMethods,
		Verified:         doc.Verified,
	}, nil
}

var _ domain.Store = (*Store)(nil)
