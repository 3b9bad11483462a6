package troubleshooting

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

const (
	msgConfirm = "Veo que tienes un problema con tu alarma. ¿Quieres que te ayude a resolverlo?"
	msgExit    = "Has salido del asistente de resolución de problemas. ¿En qué más puedo ayudarte?"

	msgDeviceIntro   = "Para ayudarte mejor, necesito saber qué modelo de teclado de alarma tienes.\n\n"
	msgDeviceNoMatch = "No pude identificar el modelo de teclado que mencionas. Por favor, selecciona uno de estos modelos:\n\n"

	msgProblemIntro   = "Perfecto. Para el %s, estos son los problemas más comunes:\n\n"
	msgProblemNoMatch = "No pude identificar el problema que mencionas. Por favor, selecciona uno de estos problemas comunes:\n\n"

	msgExitHint      = "\n_Puedes escribir 'salir' o 'cancelar' en cualquier momento para salir del asistente._"
	msgExitHintShort = "\n\n_Puedes escribir 'salir' o 'cancelar' para terminar el asistente._"

	msgRatingThanks = "¡Gracias por tu calificación de %d/5! ¿Hay algo más en lo que pueda ayudarte con tu alarma?"
	msgAnotherIssue = "¿Quieres que te ayude con otro problema de tu alarma?"
	msgRatingAsk    = "¿Fue útil esta solución? Califica del 1 al 5 (donde 5 es muy útil)."

	msgFault = "Lo siento, ocurrió un error al procesar tu consulta. Por favor, comunícate con nuestro servicio técnico al %s."

	defaultSupportContact = "nuestro número de soporte"
)

func deviceOptions(devices []domain.Device) string {
	var b strings.Builder
	for i, d := range devices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Name)
	}
	return b.String()
}

// problemOptions marks the problems already shown in this session.
func problemOptions(problems []domain.Problem, sess domain.TroubleshootingSession) string {
	var b strings.Builder
	for i, p := range problems {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Title)
		if sess.HasShown(p.Key) {
			b.WriteString(" (ya vista)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func deviceMenu(devices []domain.Device) string {
	return msgDeviceIntro + deviceOptions(devices) + msgExitHint
}

func deviceRetryMenu(devices []domain.Device) string {
	return msgDeviceNoMatch + deviceOptions(devices) + msgExitHint
}

func problemMenu(device domain.Device, sess domain.TroubleshootingSession) string {
	return fmt.Sprintf(msgProblemIntro, device.Name) + problemOptions(device.Problems, sess) + msgExitHint
}

func problemRetryMenu(device domain.Device, sess domain.TroubleshootingSession) string {
	return msgProblemNoMatch + problemOptions(device.Problems, sess) + msgExitHint
}

func solutionMessage(p domain.Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", p.Title)
	if p.Solution != "" {
		b.WriteString(p.Solution)
	} else {
		b.WriteString("No hay solución disponible para este problema.")
	}
	b.WriteString("\n\n")
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	if len(p.Steps) > 0 {
		b.WriteString("\n")
	}
	if p.VideoURL != "" {
		fmt.Fprintf(&b, "📹 *Video tutorial*: %s\n\n", p.VideoURL)
	}
	b.WriteString(msgRatingAsk)
	return b.String()
}

func directSupportMessage(d domain.Device, business domain.BusinessInfo) string {
	contact := business.Get(domain.BizTechSupport, defaultSupportContact)
	return fmt.Sprintf("%s\nPuedes comunicarte al %s.", d.SupportMessage, contact)
}

func faultMessage(business domain.BusinessInfo) string {
	return fmt.Sprintf(msgFault, business.Get(domain.BizTechSupport, defaultSupportContact))
}
