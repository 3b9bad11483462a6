package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

const classifierInstructions = `
Sos un clasificador de intenciones para el asistente de WhatsApp de una empresa de alarmas.
Leé el mensaje del usuario y devolvé TODAS las intenciones que correspondan, separadas por coma,
usando únicamente estas etiquetas:

- saludo: el usuario saluda
- despedida: el usuario se despide
- agradecimiento: el usuario agradece
- direccion: pregunta por la dirección de la empresa
- horario: pregunta por el horario de atención
- email: pide el correo electrónico
- telefono: pide un teléfono de contacto
- whatsapp: pide el WhatsApp general
- whatsapp_servicio_tecnico: quiere contactar al servicio técnico
- whatsapp_ventas: quiere contratar, comprar o hablar con ventas
- whatsapp_administracion: consultas administrativas
- whatsapp_cobranza: pagos, facturas o deudas
- security: central de monitoreo Security 24
- problema_alarma: tiene un problema con su alarma o su teclado
- estado_alarma: quiere saber si su alarma está activada
- escaneo_camaras: quiere ver el estado de sus cámaras
- imagen_camara: pide una foto o imagen de una cámara
- verificar_sensores: quiere revisar sus sensores
- control_alarma: pide activar o desactivar la alarma a distancia

Si ninguna aplica respondé exactamente "ninguna". No agregues explicaciones.
`

// ClassifierPrompt is the user content sent for intent classification.
func ClassifierPrompt(text string) string {
	return "Mensaje del usuario: " + text + "\n\nIntenciones:"
}

// ParseIntents reads the classifier answer: comma or newline separated tags,
// possibly bulleted or quoted.
func ParseIntents(raw string) domain.Intents {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := strings.Trim(strings.TrimSpace(f), "-*•\"'`. ")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return domain.NewIntents(tags...)
}

const responseInstructions = `
Sos el asistente virtual de %s, una empresa de seguridad y alarmas.
Respondé en el mismo idioma del usuario, de manera amigable y profesional, en pocas líneas.
Usá emojis con moderación. No inventes datos de la empresa: usá solo los que figuran abajo.
Nunca ofrezcas activar o desactivar alarmas.

Nivel de acceso del usuario: %d (1=general, 2=cliente, 3=cliente VIP)
Intenciones detectadas: %s

Datos de la empresa:
%s`

// BuildResponseSystemPrompt renders the system instructions for free-form replies.
func BuildResponseSystemPrompt(req domain.GenerateRequest) string {
	intents := "ninguna"
	if len(req.Intents) > 0 {
		intents = strings.Join(req.Intents.Strings(), ", ")
	}
	return fmt.Sprintf(responseInstructions,
		req.Business.Get(domain.BizCompanyName, "Taborra Alarmas"),
		int(req.AccessLevel),
		intents,
		businessFacts(req.Business),
	)
}

// businessFacts lists the business info sorted by key for a stable prompt.
func businessFacts(b domain.BusinessInfo) string {
	if len(b) == 0 {
		return "- (sin datos)"
	}
	keys := make([]string, 0, len(b))
	for k, v := range b {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, b[k])
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Transcript flattens a history for providers that take a single input string.
func Transcript(history []domain.Message) string {
	var sb strings.Builder
	for _, m := range history {
		role := "usuario"
		if m.Role == domain.RoleAssistant {
			role = "asistente"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, m.Content)
	}
	sb.WriteString("asistente:")
	return sb.String()
}
