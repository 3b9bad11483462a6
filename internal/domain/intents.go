package domain

import "strings"

// Intent is a normalized tag produced by the classifier for a user utterance.
type Intent string

const (
	IntentGreeting       Intent = "saludo"
	IntentFarewell       Intent = "despedida"
	IntentThanks         Intent = "agradecimiento"
	IntentAddress        Intent = "direccion"
	IntentHours          Intent = "horario"
	IntentEmail          Intent = "email"
	IntentPhone          Intent = "telefono"
	IntentWhatsApp       Intent = "whatsapp"
	IntentTechSupport    Intent = "whatsapp_servicio_tecnico"
	IntentSales          Intent = "whatsapp_ventas"
	IntentAdministration Intent = "whatsapp_administracion"
	IntentBilling        Intent = "whatsapp_cobranza"
	IntentMonitoring     Intent = "security"

	IntentAlarmProblem Intent = "problema_alarma"
	IntentAlarmStatus  Intent = "estado_alarma"
	IntentCameraScan   Intent = "escaneo_camaras"
	IntentCameraImage  Intent = "imagen_camara"
	IntentSensors      Intent = "verificar_sensores"
	IntentAlarmControl Intent = "control_alarma"
)

// GeneralIntents is the canonical ordering of general-information intents.
// Multi-part replies are always assembled in this order.
var GeneralIntents = []Intent{
	IntentGreeting,
	IntentAddress,
	IntentHours,
	IntentEmail,
	IntentPhone,
	IntentWhatsApp,
	IntentTechSupport,
	IntentSales,
	IntentAdministration,
	IntentBilling,
	IntentMonitoring,
	IntentThanks,
	IntentFarewell,
}

// intentAliases folds classifier variants onto canonical tags.
var intentAliases = map[string]Intent{
	"telefono1":        IntentPhone,
	"telefono2":        IntentPhone,
	"telefono3":        IntentPhone,
	"escaneo_camara":   IntentCameraScan,
	"video_camara":     IntentCameraScan,
	"foto_camara":      IntentCameraImage,
	"como_esta_alarma": IntentAlarmStatus,
	"revisar_alarma":   IntentAlarmStatus,
}

// Intents is an ordered, duplicate-free set of intent tags.
type Intents []Intent

// NewIntents normalizes raw tags: lowercases, folds aliases, drops blanks,
// "ninguna" and duplicates while keeping first-seen order.
func NewIntents(raw ...string) Intents {
	out := make(Intents, 0, len(raw))
	seen := make(map[Intent]bool, len(raw))
	for _, r := range raw {
		tag := strings.ToLower(strings.TrimSpace(r))
		if tag == "" || tag == "ninguna" {
			continue
		}
		intent := Intent(tag)
		if alias, ok := intentAliases[tag]; ok {
			intent = alias
		}
		if seen[intent] {
			continue
		}
		seen[intent] = true
		out = append(out, intent)
	}
	return out
}

func (is Intents) Has(intent Intent) bool {
	for _, i := range is {
		if i == intent {
			return true
		}
	}
	return false
}

func (is Intents) HasAny(intents ...Intent) bool {
	for _, i := range intents {
		if is.Has(i) {
			return true
		}
	}
	return false
}

func (is Intents) Strings() []string {
	out := make([]string, len(is))
	for i, intent := range is {
		out[i] = string(intent)
	}
	return out
}
