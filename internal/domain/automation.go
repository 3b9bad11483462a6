package domain

// Home-automation methods understood by the customer's webhook.
const (
	MethodAlarmStatus = "get_alarm_status"
	MethodScanCameras = "scan_cameras"
	MethodCameraImage = "get_camera_image"
	MethodSensors     = "check_sensors"
)

// automationIntents lists intent→method pairs in lookup precedence.
var automationIntents = []struct {
	intent Intent
	method string
}{
	{IntentAlarmStatus, MethodAlarmStatus},
	{IntentCameraScan, MethodScanCameras},
	{IntentCameraImage, MethodCameraImage},
	{IntentSensors, MethodSensors},
}

// AutomationMethod returns the first home-automation method matching the intents.
func AutomationMethod(intents Intents) (string, bool) {
	for _, ai := range automationIntents {
		if intents.Has(ai.intent) {
			return ai.method, true
		}
	}
	return "", false
}

// IsAutomationMethod reports whether method is one the webhooks understand.
func IsAutomationMethod(method string) bool {
	for _, ai := range automationIntents {
		if ai.method == method {
			return true
		}
	}
	return false
}
