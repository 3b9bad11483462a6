package domain

// Business context keys.
const (
	BizAddress        = "direccion"
	BizHours          = "horario"
	BizEmail          = "email"
	BizPhone1         = "telefono1"
	BizPhone2         = "telefono2"
	BizPhone3         = "telefono3"
	BizWhatsApp       = "whatsapp"
	BizTechSupport    = "whatsapp_servicio_tecnico"
	BizSales          = "whatsapp_ventas"
	BizAdministration = "whatsapp_administracion"
	BizBilling        = "whatsapp_cobranza"
	BizMonitoring     = "telefono_security"
	BizCompanyName    = "nombre"
)

// BusinessInfo holds read-only facts used for substitutions in replies.
type BusinessInfo map[string]string

// Get returns the value for key, or def when missing or blank.
func (b BusinessInfo) Get(key, def string) string {
	if v, ok := b[key]; ok && v != "" {
		return v
	}
	return def
}
