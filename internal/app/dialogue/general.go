package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// GeneralInquiryHandler answers public business questions from the business
// facts, one paragraph per intent in canonical order.
type GeneralInquiryHandler struct {
	generator domain.Generator
	metrics   *observability.Metrics
}

func NewGeneralInquiryHandler(generator domain.Generator, metrics *observability.Metrics) *GeneralInquiryHandler {
	return &GeneralInquiryHandler{generator: generator, metrics: metrics}
}

func (h *GeneralInquiryHandler) Name() string {
	return "general_inquiry"
}

func (h *GeneralInquiryHandler) Handle(ctx context.Context, turn *domain.Turn) error {
	var parts []string
	for _, intent := range domain.GeneralIntents {
		if !turn.Intents.Has(intent) {
			continue
		}
		if text := generalAnswer(intent, turn.Business); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		turn.Say(generateOrFallback(ctx, h.generator, h.metrics, turn))
		return nil
	}
	turn.Say(strings.Join(parts, "\n\n"))
	return nil
}

func generalAnswer(intent domain.Intent, b domain.BusinessInfo) string {
	switch intent {
	case domain.IntentGreeting:
		return fmt.Sprintf("¡Hola! Soy el asistente virtual de %s. ¿En qué puedo ayudarte hoy?", b.Get(domain.BizCompanyName, "Taborra Alarmas"))
	case domain.IntentFarewell:
		return "¡Gracias por contactarnos! Que tengas un excelente día."
	case domain.IntentThanks:
		return "¡De nada! Estoy para ayudarte."
	case domain.IntentAddress:
		return fmt.Sprintf("📍 Nuestra dirección es: %s.", b.Get(domain.BizAddress, notAvailable))
	case domain.IntentHours:
		return fmt.Sprintf("🕒 Nuestro horario de atención es: %s.", b.Get(domain.BizHours, notAvailable))
	case domain.IntentEmail:
		return fmt.Sprintf("📧 Nuestro email de contacto es: %s.", b.Get(domain.BizEmail, notAvailable))
	case domain.IntentPhone:
		return fmt.Sprintf("📞 Nuestro teléfono de contacto es: %s.", phones(b))
	case domain.IntentWhatsApp:
		return fmt.Sprintf("📱 Nuestro WhatsApp es: %s.", b.Get(domain.BizWhatsApp, notAvailable))
	case domain.IntentTechSupport:
		return fmt.Sprintf("🔧 Nuestro WhatsApp para servicio técnico es: %s.", b.Get(domain.BizTechSupport, notAvailable))
	case domain.IntentSales:
		return fmt.Sprintf("💼 Nuestro WhatsApp para ventas es: %s.", b.Get(domain.BizSales, notAvailable))
	case domain.IntentAdministration:
		return fmt.Sprintf("📊 Nuestro WhatsApp para administración es: %s.", b.Get(domain.BizAdministration, notAvailable))
	case domain.IntentBilling:
		return fmt.Sprintf("💰 Nuestro WhatsApp para cobranza es: %s.", b.Get(domain.BizBilling, notAvailable))
	case domain.IntentMonitoring:
		return fmt.Sprintf("🔐 Nuestro número de Security 24 es: %s.", b.Get(domain.BizMonitoring, notAvailable))
	default:
		return ""
	}
}

func phones(b domain.BusinessInfo) string {
	var nums []string
	for _, key := range []string{domain.BizPhone1, domain.BizPhone2, domain.BizPhone3} {
		if v := b.Get(key, ""); v != "" {
			nums = append(nums, v)
		}
	}
	if len(nums) == 0 {
		return notAvailable
	}
	return strings.Join(nums, " / ")
}
