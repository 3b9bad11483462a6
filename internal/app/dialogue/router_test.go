package dialogue_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/app/dialogue"
	"github.com/PabloGalante/taborra-agent/internal/app/troubleshooting"
	"github.com/PabloGalante/taborra-agent/internal/catalog"
	"github.com/PabloGalante/taborra-agent/internal/domain"
)

const clarification = "No he podido entender tu consulta. ¿Puedes especificar qué información necesitas sobre nuestros servicios?"

type fakeGenerator struct {
	reply string
	err   error
	calls []domain.GenerateRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	g.calls = append(g.calls, req)
	return g.reply, g.err
}

type fakeMonitor struct {
	partitions []domain.PartitionStatus
	cameras    []domain.CameraStatus
	err        error
}

func (m *fakeMonitor) AlarmStatus(context.Context, domain.User) ([]domain.PartitionStatus, error) {
	return m.partitions, m.err
}

func (m *fakeMonitor) Cameras(context.Context, domain.User) ([]domain.CameraStatus, error) {
	return m.cameras, m.err
}

type failingHandler struct{}

func (failingHandler) Name() string                               { return "failing" }
func (failingHandler) Handle(context.Context, *domain.Turn) error { return errors.New("boom") }

var business = domain.BusinessInfo{
	domain.BizHours:       "Lunes a viernes de 8 a 17",
	domain.BizAddress:     "San Martín 1234",
	domain.BizSales:       "+54 9 3471 111111",
	domain.BizTechSupport: "+54 9 3471 222222",
	domain.BizPhone1:      "3471-420000",
	domain.BizPhone2:      "3471-420001",
}

func newRouter(gen domain.Generator, mon domain.SecurityMonitor) *dialogue.Router {
	return dialogue.NewDefaultRouter(dialogue.Deps{
		Engine:    troubleshooting.NewEngine(catalog.Default(), nil),
		Generator: gen,
		Monitor:   mon,
	})
}

func newTurn(level domain.AccessLevel, utterance string, st domain.SessionState, intents ...string) *domain.Turn {
	msgs := []domain.Message{
		domain.UserMessage("hola"),
		domain.AssistantMessage("¡Hola! ¿En qué puedo ayudarte hoy?"),
		domain.UserMessage(utterance),
	}
	user := domain.User{ID: "u1", FirstName: "Ana", Phone: "543471627777", AccessLevel: level}
	return domain.NewTurn(msgs, user, domain.NewIntents(intents...), business, st)
}

func onlyReply(t *testing.T, res domain.TurnResult) string {
	t.Helper()
	require.Len(t, res.Replies, 1)
	assert.Equal(t, domain.RoleAssistant, res.Replies[0].Role)
	return res.Replies[0].Content
}

func TestActiveSessionTakesPrecedence(t *testing.T) {
	gen := &fakeGenerator{reply: "generated"}
	st := domain.ActiveSession(domain.TroubleshootingSession{Step: domain.StepSelectDevice})
	turn := newTurn(domain.LevelCustomer, "2", st, "horario", "saludo", "control_alarma")

	res := newRouter(gen, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteTroubleshooting, res.Route)
	sess, ok := res.Session.Session()
	require.True(t, ok)
	assert.Equal(t, domain.StepSelectProblem, sess.Step)
	assert.Equal(t, "modelo_5500", sess.DeviceType)
	assert.Empty(t, gen.calls)
	assert.Contains(t, onlyReply(t, res), "Perfecto. Para el Modelo 5500")
	assert.Equal(t, []domain.ImageRef{{Reference: "teclado_5500.jpg", Caption: "Modelo 5500"}}, res.Images)
}

func TestTroubleshootingStartForCustomer(t *testing.T) {
	for _, level := range []domain.AccessLevel{domain.LevelCustomer, domain.LevelVIP} {
		turn := newTurn(level, "mi alarma no anda", domain.InactiveSession(), "problema_alarma", "saludo")

		res := newRouter(nil, nil).Route(context.Background(), turn)

		assert.Equal(t, dialogue.RouteTroubleshootingStart, res.Route)
		assert.Equal(t, "Veo que tienes un problema con tu alarma. ¿Quieres que te ayude a resolverlo?", onlyReply(t, res))
		sess, ok := res.Session.Session()
		require.True(t, ok)
		assert.Equal(t, domain.StepAwaitConfirmation, sess.Step)
		assert.Equal(t, res.Messages, sess.Messages)
	}
}

func TestTroubleshootingDeniedBelowCustomer(t *testing.T) {
	turn := newTurn(domain.LevelGeneral, "mi alarma no anda", domain.InactiveSession(), "problema_alarma")

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteAccessDenied, res.Route)
	assert.False(t, res.Session.Active())
	reply := onlyReply(t, res)
	assert.Contains(t, reply, "el asistente de resolución de problemas de alarma")
	assert.Contains(t, reply, "+54 9 3471 111111")
}

func TestAlarmControlDeniedAtEveryLevel(t *testing.T) {
	for _, level := range []domain.AccessLevel{domain.LevelGeneral, domain.LevelCustomer, domain.LevelVIP} {
		turn := newTurn(level, "desactivá la alarma", domain.InactiveSession(), "control_alarma", "estado_alarma")

		res := newRouter(nil, &fakeMonitor{}).Route(context.Background(), turn)

		assert.Equal(t, dialogue.RouteAccessDenied, res.Route, level)
		assert.Nil(t, res.PendingSideEffect)
		assert.True(t, strings.HasPrefix(onlyReply(t, res), "⚠️ Lo siento, no puedo controlar la alarma por seguridad."))
	}
}

func TestRestrictedIntentsDeniedBelowVIP(t *testing.T) {
	for _, intent := range []string{"estado_alarma", "escaneo_camaras", "imagen_camara", "verificar_sensores"} {
		turn := newTurn(domain.LevelCustomer, "quiero ver", domain.InactiveSession(), intent)

		res := newRouter(nil, &fakeMonitor{}).Route(context.Background(), turn)

		assert.Equal(t, dialogue.RouteAccessDenied, res.Route, intent)
		assert.Contains(t, onlyReply(t, res), "ventas", intent)
	}
}

func TestDeniedWithoutSalesContact(t *testing.T) {
	turn := newTurn(domain.LevelGeneral, "estado", domain.InactiveSession(), "estado_alarma")
	turn.Business = domain.BusinessInfo{}

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.True(t, strings.HasSuffix(onlyReply(t, res), "puedes contactar a nuestro equipo de ventas."))
}

func TestAlarmStatusFromMonitor(t *testing.T) {
	mon := &fakeMonitor{partitions: []domain.PartitionStatus{
		{Name: "Partición 1", State: "activada"},
		{Name: "Partición 2", State: "desactivada"},
	}}
	turn := newTurn(domain.LevelVIP, "cómo está mi alarma", domain.InactiveSession(), "estado_alarma")

	res := newRouter(nil, mon).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteAlarmStatus, res.Route)
	assert.Equal(t, "📊 *Estado actual de la alarma:*\n\n• Partición 1: ACTIVADA\n• Partición 2: DESACTIVADA\n", onlyReply(t, res))
	assert.Nil(t, res.PendingSideEffect)
}

func TestAlarmStatusDefersToHomeAutomation(t *testing.T) {
	for name, mon := range map[string]domain.SecurityMonitor{
		"no monitor":     nil,
		"monitor failed": &fakeMonitor{err: errors.New("timeout")},
	} {
		turn := newTurn(domain.LevelVIP, "cómo está mi alarma", domain.InactiveSession(), "estado_alarma")

		res := newRouter(nil, mon).Route(context.Background(), turn)

		require.NotNil(t, res.PendingSideEffect, name)
		assert.Equal(t, domain.MethodAlarmStatus, res.PendingSideEffect.Method, name)
		assert.Equal(t, domain.UserID("u1"), res.PendingSideEffect.Target.ID, name)
		assert.Equal(t, domain.Intents{domain.IntentAlarmStatus}, res.PendingSideEffect.Intents, name)
		assert.True(t, strings.HasPrefix(onlyReply(t, res), "🔄"), name)
	}
}

func TestSensorsMapToCheckSensors(t *testing.T) {
	turn := newTurn(domain.LevelVIP, "revisá los sensores", domain.InactiveSession(), "verificar_sensores")

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteAlarmStatus, res.Route)
	require.NotNil(t, res.PendingSideEffect)
	assert.Equal(t, domain.MethodSensors, res.PendingSideEffect.Method)
}

func TestCameraScanWithImages(t *testing.T) {
	mon := &fakeMonitor{cameras: []domain.CameraStatus{
		{ID: "camera.entrada_principal", Name: "Entrada Principal", State: "Grabando"},
		{ID: "camera.cocina", State: "Inactiva"},
	}}
	turn := newTurn(domain.LevelVIP, "mostrame las cámaras", domain.InactiveSession(), "escaneo_camaras", "foto_camara")

	res := newRouter(nil, mon).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteCameraScan, res.Route)
	assert.Equal(t, "📷 *Estado de las cámaras:*\n\n• Entrada Principal: Grabando\n• camera.cocina: Inactiva\n\nEnviando imágenes de las cámaras activas...", onlyReply(t, res))
	require.NotNil(t, res.PendingSideEffect)
	assert.Equal(t, domain.MethodCameraImage, res.PendingSideEffect.Method)
}

func TestCameraScanWithoutMonitor(t *testing.T) {
	turn := newTurn(domain.LevelVIP, "escaneá las cámaras", domain.InactiveSession(), "escaneo_camaras")

	res := newRouter(nil, nil).Route(context.Background(), turn)

	require.NotNil(t, res.PendingSideEffect)
	assert.Equal(t, domain.MethodScanCameras, res.PendingSideEffect.Method)
}

func TestGeneralInquiryCanonicalOrder(t *testing.T) {
	gen := &fakeGenerator{reply: "generated"}
	turn := newTurn(domain.LevelGeneral, "hola, horario y dirección?", domain.InactiveSession(),
		"telefono2", "horario", "direccion", "saludo")

	res := newRouter(gen, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteGeneralInquiry, res.Route)
	assert.Equal(t, strings.Join([]string{
		"¡Hola! Soy el asistente virtual de Taborra Alarmas. ¿En qué puedo ayudarte hoy?",
		"📍 Nuestra dirección es: San Martín 1234.",
		"🕒 Nuestro horario de atención es: Lunes a viernes de 8 a 17.",
		"📞 Nuestro teléfono de contacto es: 3471-420000 / 3471-420001.",
	}, "\n\n"), onlyReply(t, res))
	assert.Empty(t, gen.calls)
}

func TestGeneralInquiryMissingFact(t *testing.T) {
	turn := newTurn(domain.LevelGeneral, "mail?", domain.InactiveSession(), "email")

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.Equal(t, "📧 Nuestro email de contacto es: No disponible.", onlyReply(t, res))
}

func TestFallbackUsesGenerator(t *testing.T) {
	gen := &fakeGenerator{reply: "  Claro, te cuento sobre nuestros planes.  "}
	turn := newTurn(domain.LevelCustomer, "qué planes tienen?", domain.InactiveSession())

	res := newRouter(gen, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteFallback, res.Route)
	assert.Equal(t, "Claro, te cuento sobre nuestros planes.", onlyReply(t, res))
	require.Len(t, gen.calls, 1)
	assert.Equal(t, domain.LevelCustomer, gen.calls[0].AccessLevel)
	assert.Equal(t, "qué planes tienen?", domain.LastUserUtterance(gen.calls[0].History))
	assert.Equal(t, business, gen.calls[0].Business)
}

func TestFallbackDegradesToClarification(t *testing.T) {
	tests := map[string]domain.Generator{
		"nil generator": nil,
		"error":         &fakeGenerator{err: errors.New("quota exceeded")},
		"empty":         &fakeGenerator{reply: "   "},
	}
	for name, gen := range tests {
		turn := newTurn(domain.LevelGeneral, "asdf", domain.InactiveSession(), "ninguna")

		res := newRouter(gen, nil).Route(context.Background(), turn)

		assert.Equal(t, dialogue.RouteFallback, res.Route, name)
		assert.Equal(t, clarification, onlyReply(t, res), name)
	}
}

func TestExitThroughRouterClearsSession(t *testing.T) {
	st := domain.ActiveSession(domain.TroubleshootingSession{Step: domain.StepSelectProblem, DeviceType: "modelo_1555"})
	turn := newTurn(domain.LevelCustomer, "salir", st, "despedida")

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteTroubleshooting, res.Route)
	assert.False(t, res.Session.Active())
	assert.Equal(t, "Has salido del asistente de resolución de problemas. ¿En qué más puedo ayudarte?", onlyReply(t, res))
}

func TestRatingOutcomeReachesResult(t *testing.T) {
	st := domain.ActiveSession(domain.TroubleshootingSession{
		Step:        domain.StepRate,
		DeviceType:  "modelo_5500",
		ProblemType: "emite_sonido",
	})
	turn := newTurn(domain.LevelCustomer, "4", st)

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.False(t, res.Session.Active())
	require.NotNil(t, res.RatingOutcome)
	assert.Equal(t, domain.RatingOutcome{Rating: 4, DeviceType: "modelo_5500", ProblemType: "emite_sonido"}, *res.RatingOutcome)
}

func TestRouteKeepsLogOwnership(t *testing.T) {
	msgs := []domain.Message{domain.UserMessage("hola")}
	turn := domain.NewTurn(msgs, domain.User{AccessLevel: domain.LevelCustomer}, domain.NewIntents("problema_alarma"), business, domain.InactiveSession())

	res := newRouter(nil, nil).Route(context.Background(), turn)

	assert.Len(t, msgs, 1)
	assert.Len(t, res.Messages, 2)
	assert.Equal(t, res.Messages[1], res.Replies[0])
}

func TestHandlerErrorDegradesToClarification(t *testing.T) {
	rules := []dialogue.Rule{{
		Route:   "broken",
		Match:   func(*domain.Turn) bool { return true },
		Handler: failingHandler{},
	}}
	turn := newTurn(domain.LevelGeneral, "hola", domain.InactiveSession(), "saludo")

	res := dialogue.NewRouter(rules, nil).Route(context.Background(), turn)

	assert.Equal(t, "broken", res.Route)
	assert.Equal(t, clarification, onlyReply(t, res))
}

func TestNoRuleMatched(t *testing.T) {
	turn := newTurn(domain.LevelGeneral, "hola", domain.InactiveSession())

	res := dialogue.NewRouter(nil, nil).Route(context.Background(), turn)

	assert.Equal(t, dialogue.RouteFallback, res.Route)
	assert.Equal(t, clarification, onlyReply(t, res))
}
