package troubleshooting

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/catalog"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

type stubCatalog struct {
	devices []domain.Device
}

func (c stubCatalog) ListDevices() []domain.Device { return c.devices }

func (c stubCatalog) Device(key string) (domain.Device, bool) {
	for _, d := range c.devices {
		if d.Key == key {
			return d, true
		}
	}
	return domain.Device{}, false
}

type panickyCatalog struct{ stubCatalog }

func (panickyCatalog) ListDevices() []domain.Device { panic("catalog unavailable") }

func twoDevices() stubCatalog {
	return stubCatalog{devices: []domain.Device{
		{Key: "a", Name: "Teclado A", Problems: []domain.Problem{{Key: "pa", Title: "Problema A"}}},
		{Key: "b", Name: "Teclado B", Image: "b.jpg", Problems: []domain.Problem{
			{Key: "pb1", Title: "Falla de bateria"},
			{Key: "pb2", Title: "Zona abierta"},
		}},
	}}
}

var business = domain.BusinessInfo{domain.BizTechSupport: "+54 9 3471 555555"}

func input(sess domain.TroubleshootingSession, utterance string) Input {
	sess.Messages = append(domain.CloneMessages(sess.Messages), domain.UserMessage(utterance))
	return Input{Session: sess, Business: business}
}

func lastReply(t *testing.T, out Outcome) string {
	t.Helper()
	require.NotEmpty(t, out.Session.Messages)
	last := out.Session.Messages[len(out.Session.Messages)-1]
	require.Equal(t, domain.RoleAssistant, last.Role)
	return last.Content
}

func TestStartEmitsConfirmation(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Start(context.Background(), input(domain.TroubleshootingSession{}, "se me rompió la alarma"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepAwaitConfirmation, out.Session.Step)
	assert.Equal(t, msgConfirm, lastReply(t, out))
	assert.Len(t, out.Session.Messages, 2)
}

func TestAffirmativeAtConfirmShowsDeviceMenu(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepConfirm}, "sí"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepSelectDevice, out.Session.Step)
	reply := lastReply(t, out)
	assert.True(t, strings.HasPrefix(reply, msgDeviceIntro))
	assert.Contains(t, reply, "1. Modelo 1555\n")
	assert.Contains(t, reply, "4. Ajax\n")
}

func TestStepZeroWithoutAffirmativeAsksConfirmation(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{}, "mi alarma suena"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepAwaitConfirmation, out.Session.Step)
	assert.Equal(t, msgConfirm, lastReply(t, out))
}

func TestSelectDeviceByIndex(t *testing.T) {
	e := NewEngine(twoDevices(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepSelectDevice}, "2"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepSelectProblem, out.Session.Step)
	assert.Equal(t, "b", out.Session.DeviceType)
	reply := lastReply(t, out)
	assert.True(t, strings.HasPrefix(reply, "Perfecto. Para el Teclado B, estos son los problemas más comunes:\n\n"))
	assert.Contains(t, reply, "1. Falla de bateria\n2. Zona abierta\n")
	assert.Equal(t, []domain.ImageRef{{Reference: "b.jpg", Caption: "Teclado B"}}, out.Images)
}

func TestSelectDeviceByNameOrAlias(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	for utterance, want := range map[string]string{
		"tengo el modelo 5500":   "modelo_5500",
		"es un NEO":              "modelo_neo_lcd",
		"Modelo 1555 creo":       "modelo_1555",
		"el teclado modelo_5500": "modelo_5500",
	} {
		out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepSelectDevice}, utterance))
		assert.Equal(t, want, out.Session.DeviceType, utterance)
		assert.Equal(t, domain.StepSelectProblem, out.Session.Step, utterance)
	}
}

func TestUnmatchedDeviceKeepsStep(t *testing.T) {
	e := NewEngine(twoDevices(), nil)

	for _, utterance := range []string{"3", "0", "el rojo"} {
		sess := domain.TroubleshootingSession{Step: domain.StepSelectDevice}
		out := e.Advance(context.Background(), input(sess, utterance))

		assert.True(t, out.Active, utterance)
		assert.Equal(t, domain.StepSelectDevice, out.Session.Step, utterance)
		assert.Empty(t, out.Session.DeviceType, utterance)
		assert.True(t, strings.HasPrefix(lastReply(t, out), msgDeviceNoMatch), utterance)
	}
}

func TestDirectSupportDeviceExits(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepSelectDevice}, "4"))

	assert.False(t, out.Active)
	assert.True(t, out.Exited)
	assert.Equal(t, domain.StepConfirm, out.Session.Step)
	assert.False(t, out.State().Active())
	reply := lastReply(t, out)
	assert.Contains(t, reply, "contactar directamente con soporte técnico")
	assert.True(t, strings.HasSuffix(reply, "\nPuedes comunicarte al +54 9 3471 555555."))
}

func TestDirectSupportWithoutContactUsesDefault(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	in := input(domain.TroubleshootingSession{Step: domain.StepSelectDevice}, "ajax")
	in.Business = nil
	out := e.Advance(context.Background(), in)

	assert.True(t, strings.HasSuffix(lastReply(t, out), "Puedes comunicarte al nuestro número de soporte."))
}

func TestSelectProblemShowsSolution(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)
	sess := domain.TroubleshootingSession{Step: domain.StepSelectProblem, DeviceType: "modelo_1555"}

	out := e.Advance(context.Background(), input(sess, "4"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepRate, out.Session.Step)
	assert.Equal(t, "anular_zona", out.Session.ProblemType)
	assert.Equal(t, []string{"anular_zona"}, out.Session.SolutionsShown)
	reply := lastReply(t, out)
	assert.True(t, strings.HasPrefix(reply, "*Necesito anular una zona*\n\n"))
	assert.Contains(t, reply, "📹 *Video tutorial*: https://www.youtube.com/embed/XXXX4")
	assert.True(t, strings.HasSuffix(reply, msgRatingAsk))
}

func TestSelectProblemByText(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)
	sess := domain.TroubleshootingSession{Step: domain.StepSelectProblem, DeviceType: "modelo_5500"}

	out := e.Advance(context.Background(), input(sess, "No puedo activar el sistema"))
	assert.Equal(t, "no_puede_activar", out.Session.ProblemType)

	out = e.Advance(context.Background(), input(sess, "otros problemas"))
	assert.Equal(t, "otros_problemas", out.Session.ProblemType)
}

func TestUnmatchedProblemRepeatsMenu(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)
	sess := domain.TroubleshootingSession{
		Step:           domain.StepSelectProblem,
		DeviceType:     "modelo_1555",
		SolutionsShown: []string{"muestra_falla"},
	}

	out := e.Advance(context.Background(), input(sess, "banana"))

	assert.True(t, out.Active)
	assert.Equal(t, domain.StepSelectProblem, out.Session.Step)
	assert.Empty(t, out.Session.ProblemType)
	reply := lastReply(t, out)
	assert.True(t, strings.HasPrefix(reply, msgProblemNoMatch))
	assert.Contains(t, reply, "2. Me muestra una falla (ya vista)\n")

	again := e.Advance(context.Background(), input(out.Session, "banana"))
	assert.Equal(t, reply, lastReply(t, again))
}

func TestRatingCompletesSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewEngine(catalog.Default(), observability.NewMetrics(reg))
	sess := domain.TroubleshootingSession{
		Step:           domain.StepRate,
		DeviceType:     "modelo_1555",
		ProblemType:    "anular_zona",
		SolutionsShown: []string{"anular_zona"},
	}

	out := e.Advance(context.Background(), input(sess, "3"))

	assert.False(t, out.Active)
	assert.False(t, out.Exited)
	assert.Equal(t, domain.StepConfirm, out.Session.Step)
	assert.Equal(t, 3, out.Session.Rating)
	assert.Equal(t, &domain.RatingOutcome{Rating: 3, DeviceType: "modelo_1555", ProblemType: "anular_zona"}, out.Rating)
	assert.False(t, out.State().Active())
	assert.True(t, strings.HasPrefix(lastReply(t, out), "¡Gracias por tu calificación de 3/5!"))

	count, err := testutil.GatherAndCount(reg, "taborra_ratings_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNonRatingLoopsToConfirmation(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	for _, utterance := range []string{"5 estrellas", "6", "0", "gracias", "10"} {
		sess := domain.TroubleshootingSession{Step: domain.StepRate, DeviceType: "modelo_1555", ProblemType: "anular_zona"}
		out := e.Advance(context.Background(), input(sess, utterance))

		assert.True(t, out.Active, utterance)
		assert.Nil(t, out.Rating, utterance)
		assert.Equal(t, domain.StepAwaitConfirmation, out.Session.Step, utterance)
		assert.True(t, strings.HasPrefix(lastReply(t, out), msgAnotherIssue), utterance)
	}
}

func TestExitFromAwaitConfirmation(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepAwaitConfirmation}, "no quiero"))

	assert.False(t, out.Active)
	assert.True(t, out.Exited)
	assert.Equal(t, domain.StepConfirm, out.Session.Step)
	assert.Equal(t, msgExit, lastReply(t, out))
}

func TestExitFromEveryStep(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	steps := []domain.Step{
		domain.StepConfirm,
		domain.StepAwaitConfirmation,
		domain.StepSelectDevice,
		domain.StepSelectProblem,
		domain.StepRate,
	}
	for _, step := range steps {
		for _, utterance := range []string{"salir", "Cancelar por favor", "quiero volver al menú", "no", "Atrás"} {
			sess := domain.TroubleshootingSession{Step: step, DeviceType: "modelo_1555"}
			out := e.Advance(context.Background(), input(sess, utterance))

			assert.False(t, out.Active, "%s/%s", step, utterance)
			assert.True(t, out.Exited, "%s/%s", step, utterance)
			assert.Equal(t, domain.StepConfirm, out.Session.Step)
			assert.Equal(t, msgExit, lastReply(t, out))
		}
	}
}

func TestDeclineAtAwaitConfirmationExits(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)

	out := e.Advance(context.Background(), input(domain.TroubleshootingSession{Step: domain.StepAwaitConfirmation}, "mmm capaz despues"))

	assert.False(t, out.Active)
	assert.Equal(t, msgExit, lastReply(t, out))
}

func TestFaultsEndSessionWithApology(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		sess    domain.TroubleshootingSession
		want    error
	}{
		{"missing device", twoDevices(), domain.TroubleshootingSession{Step: domain.StepSelectProblem}, ErrNoDevice},
		{"unknown device", twoDevices(), domain.TroubleshootingSession{Step: domain.StepSelectProblem, DeviceType: "zz"}, ErrNoDevice},
		{"unknown step", twoDevices(), domain.TroubleshootingSession{Step: domain.Step(7)}, ErrUnknownStep},
		{"panic", panickyCatalog{}, domain.TroubleshootingSession{Step: domain.StepSelectDevice}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.catalog, nil)
			in := input(tt.sess, "2")

			out := e.Advance(context.Background(), in)

			require.Error(t, out.Err)
			if tt.want != nil {
				assert.ErrorIs(t, out.Err, tt.want)
			}
			assert.False(t, out.Active)
			assert.Equal(t, domain.StepConfirm, out.Session.Step)
			assert.Len(t, out.Session.Messages, len(in.Session.Messages)+1)
			assert.Contains(t, lastReply(t, out), "+54 9 3471 555555")
		})
	}
}

func TestAdvanceDoesNotAliasInput(t *testing.T) {
	e := NewEngine(catalog.Default(), nil)
	in := input(domain.TroubleshootingSession{
		Step:           domain.StepSelectProblem,
		DeviceType:     "modelo_1555",
		SolutionsShown: make([]string, 0, 4),
	}, "1")
	before := domain.CloneMessages(in.Session.Messages)

	out := e.Advance(context.Background(), in)

	assert.Equal(t, before, in.Session.Messages)
	assert.Empty(t, in.Session.SolutionsShown)
	assert.Len(t, out.Session.Messages, len(before)+1)
	assert.Equal(t, domain.CloneMessages(out.Session.Messages[len(before):]), out.Replies(len(before)))
}

func TestFullWalkthrough(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(catalog.Default(), nil)

	out := e.Start(ctx, input(domain.TroubleshootingSession{}, "tengo un problema con la alarma"))
	for _, utterance := range []string{"si", "neo", "3"} {
		require.True(t, out.Active, utterance)
		out = e.Advance(ctx, input(out.Session, utterance))
	}
	require.Equal(t, domain.StepRate, out.Session.Step)
	assert.Equal(t, "emite_sonido", out.Session.ProblemType)

	out = e.Advance(ctx, input(out.Session, "5"))
	assert.False(t, out.Active)
	require.NotNil(t, out.Rating)
	assert.Equal(t, domain.RatingOutcome{Rating: 5, DeviceType: "modelo_neo_lcd", ProblemType: "emite_sonido"}, *out.Rating)
	assert.Len(t, out.Session.Messages, 10)
}
