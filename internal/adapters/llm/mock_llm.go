package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/textutil"
)

// MockLLM classifies by keywords and echoes a canned reply. Used in local mode and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// keywords are matched as words against the normalized utterance, in this order.
var keywords = []struct {
	phrase string
	intent domain.Intent
}{
	{"hola", domain.IntentGreeting},
	{"buenas", domain.IntentGreeting},
	{"buen dia", domain.IntentGreeting},
	{"chau", domain.IntentFarewell},
	{"adios", domain.IntentFarewell},
	{"gracias", domain.IntentThanks},
	{"direccion", domain.IntentAddress},
	{"donde estan", domain.IntentAddress},
	{"horario", domain.IntentHours},
	{"a que hora", domain.IntentHours},
	{"email", domain.IntentEmail},
	{"mail", domain.IntentEmail},
	{"correo", domain.IntentEmail},
	{"telefono", domain.IntentPhone},
	{"whatsapp", domain.IntentWhatsApp},
	{"servicio tecnico", domain.IntentTechSupport},
	{"ventas", domain.IntentSales},
	{"contratar", domain.IntentSales},
	{"administracion", domain.IntentAdministration},
	{"factura", domain.IntentBilling},
	{"pagar", domain.IntentBilling},
	{"cobranza", domain.IntentBilling},
	{"monitoreo", domain.IntentMonitoring},
	{"security", domain.IntentMonitoring},
	{"problema", domain.IntentAlarmProblem},
	{"falla", domain.IntentAlarmProblem},
	{"no funciona", domain.IntentAlarmProblem},
	{"teclado", domain.IntentAlarmProblem},
	{"estado de la alarma", domain.IntentAlarmStatus},
	{"esta activada", domain.IntentAlarmStatus},
	{"camaras", domain.IntentCameraScan},
	{"foto", domain.IntentCameraImage},
	{"imagen", domain.IntentCameraImage},
	{"sensores", domain.IntentSensors},
	{"desactivar la alarma", domain.IntentAlarmControl},
	{"desactiva la alarma", domain.IntentAlarmControl},
}

func (m *MockLLM) ClassifyIntents(_ context.Context, text string) (domain.Intents, error) {
	var tags []string
	for _, k := range keywords {
		if textutil.ContainsWord(text, k.phrase) {
			tags = append(tags, string(k.intent))
		}
	}
	return domain.NewIntents(tags...), nil
}

func (m *MockLLM) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	utterance := domain.LastUserUtterance(req.History)
	return fmt.Sprintf("Recibí tu consulta: %q. Un asesor de %s te responderá a la brevedad.",
		utterance, req.Business.Get(domain.BizCompanyName, "Taborra Alarmas")), nil
}
