package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type Store struct {
	db *gorm.DB
}

func NewStore(driver, dsn string) (*Store, error) {
	gormDB, err := OpenGorm(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open gorm store: %w", err)
	}

	store := &Store{db: gormDB}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&userRow{}, &messageRow{}, &ratingRow{}, &businessInfoRow{}, &automationRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

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

	row := userRow{
		ID:          string(user.ID),
		Phone:       user.Phone,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AccessLevel: int(user.AccessLevel),
		CreatedAt:   user.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("phone = ?", phone).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}

func (s *Store) UpdateAccessLevel(ctx context.Context, phone string, level domain.AccessLevel) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("phone = ?", phone).Update("access_level", int(level))
	if res.Error != nil {
		return fmt.Errorf("update access level: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.StoredMessage) error {
	if msg.ID == "" {
		msg.ID = domain.MessageID(uuid.NewString())
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	row := messageRow{
		ID:             string(msg.ID),
		ConversationID: string(msg.ConversationID),
		UserID:         string(msg.UserID),
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// GetMessagesByConversation returns the newest limit messages, oldest first.
func (s *Store) GetMessagesByConversation(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.StoredMessage, error) {
	q := s.db.WithContext(ctx).Where("conversation_id = ?", string(id)).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []messageRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]*domain.StoredMessage, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row.toMessage()
	}
	return out, nil
}

func (s *Store) SaveRating(ctx context.Context, rating *domain.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	row := ratingRow{
		ID:          rating.ID,
		UserID:      string(rating.UserID),
		Rating:      rating.Rating,
		DeviceType:  rating.DeviceType,
		ProblemType: rating.ProblemType,
		CreatedAt:   rating.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	return nil
}

func (s *Store) ListRatings(ctx context.Context, deviceType string) ([]*domain.Rating, error) {
	q := s.db.WithContext(ctx).Order("created_at ASC")
	if deviceType != "" {
		q = q.Where("device_type = ?", deviceType)
	}

	var rows []ratingRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	out := make([]*domain.Rating, len(rows))
	for i, row := range rows {
		out[i] = row.toRating()
	}
	return out, nil
}

func (s *Store) LoadBusinessInfo(ctx context.Context) (domain.BusinessInfo, error) {
	var rows []businessInfoRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load business info: %w", err)
	}
	out := make(domain.BusinessInfo, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// PutBusinessInfo upserts one business fact.
func (s *Store) PutBusinessInfo(ctx context.Context, key, value string) error {
	row := businessInfoRow{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("put business info: %w", err)
	}
	return nil
}

func (s *Store) GetAutomationConfig(ctx context.Context, userID domain.UserID) (*domain.AutomationConfig, error) {
	var row automationRow
	err := s.db.WithContext(ctx).Where("user_id = ?", string(userID)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get automation config: %w", err)
	}
	return row.toConfig(), nil
}

// PutAutomationConfig creates or replaces a user's automation config.
func (s *Store) PutAutomationConfig(ctx context.Context, cfg domain.AutomationConfig) error {
	row := automationRow{
		UserID:           string(cfg.UserID),
		WebhookURL:       cfg.WebhookURL,
		Token:            cfg.Token,
		AvailableMethods: strings.Join(cfg.AvailableMethods, ","),
		Verified:         cfg.Verified,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("put automation config: %w", err)
	}
	return nil
}

var _ domain.Store = (*Store)(nil)
