package dialogue

const (
	msgFallback  = "No he podido entender tu consulta. ¿Puedes especificar qué información necesitas sobre nuestros servicios?"
	notAvailable = "No disponible"

	capabilityAlarmControl    = "controlar la alarma a distancia"
	capabilityTroubleshooting = "el asistente de resolución de problemas de alarma"
	capabilityAlarmStatus     = "la consulta del estado de la alarma"
	capabilityCameraScan      = "el escaneo de cámaras"

	msgAlarmControlDenied = "⚠️ Lo siento, no puedo controlar la alarma por seguridad. Si necesitas ayuda con tu alarma, por favor contacta a nuestro servicio técnico"
	msgCapabilityDenied   = "🔒 Lo siento, %s no está disponible con tu plan actual."
	msgUpsell             = "Si deseas acceder a este servicio, puedes contactar a nuestro equipo de ventas por WhatsApp al %s."
	msgUpsellNoContact    = "Si deseas acceder a este servicio, puedes contactar a nuestro equipo de ventas."

	msgAlarmStatusPending = "🔄 Estoy consultando el estado de tu alarma. Te enviaré el resultado en unos instantes."
	msgCameraScanPending  = "🔄 Estoy consultando tus cámaras. Te enviaré el resultado en unos instantes."
	msgCameraImages       = "Enviando imágenes de las cámaras activas..."
)
