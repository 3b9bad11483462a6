package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	_, err := s.GetUserByPhone(ctx, "543471627777")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	u := &domain.User{FirstName: "Ana", LastName: "Pérez", Phone: "543471627777"}
	require.NoError(t, s.RegisterUser(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, domain.LevelGeneral, u.AccessLevel)
	assert.Error(t, s.RegisterUser(ctx, &domain.User{Phone: "543471627777"}))

	require.NoError(t, s.UpdateAccessLevel(ctx, "543471627777", domain.LevelVIP))
	got, err := s.GetUserByPhone(ctx, "543471627777")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelVIP, got.AccessLevel)
	assert.Equal(t, "Ana Pérez", got.DisplayName())

	assert.ErrorIs(t, s.UpdateAccessLevel(ctx, "000", domain.LevelVIP), domain.ErrNotFound)
}

func TestMessageStoreKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore()

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, s.AppendMessage(ctx, &domain.StoredMessage{ConversationID: "c1", Role: domain.RoleUser, Content: text}))
	}
	require.NoError(t, s.AppendMessage(ctx, &domain.StoredMessage{ConversationID: "c2", Role: domain.RoleUser, Content: "z"}))

	msgs, err := s.GetMessagesByConversation(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].Content)
	assert.Equal(t, "c", msgs[1].Content)
	assert.NotEmpty(t, msgs[0].ID)
}

func TestRatingStoreFiltersByDevice(t *testing.T) {
	ctx := context.Background()
	s := NewRatingStore()

	require.NoError(t, s.SaveRating(ctx, &domain.Rating{UserID: "u1", Rating: 5, DeviceType: "modelo_1555", ProblemType: "anular_zona"}))
	require.NoError(t, s.SaveRating(ctx, &domain.Rating{UserID: "u1", Rating: 2, DeviceType: "modelo_5500", ProblemType: "emite_sonido"}))

	all, err := s.ListRatings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := s.ListRatings(ctx, "modelo_5500")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, 2, only[0].Rating)
	assert.False(t, only[0].CreatedAt.IsZero())
}

func TestReferenceStore(t *testing.T) {
	ctx := context.Background()
	s := NewReferenceStore(domain.BusinessInfo{domain.BizHours: "8 a 17"})

	info, err := s.LoadBusinessInfo(ctx)
	require.NoError(t, err)
	info[domain.BizHours] = "mutated"

	info, err = s.LoadBusinessInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "8 a 17", info[domain.BizHours])

	_, err = s.GetAutomationConfig(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s.PutAutomationConfig(domain.AutomationConfig{UserID: "u1", WebhookURL: "https://ha.example/api/webhook/x", AvailableMethods: []string{domain.MethodAlarmStatus}})
	cfg, err := s.GetAutomationConfig(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, cfg.HasMethod(domain.MethodAlarmStatus))
	assert.False(t, cfg.HasMethod(domain.MethodScanCameras))
}
