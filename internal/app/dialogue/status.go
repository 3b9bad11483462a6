package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

// FormatAlarmStatus renders partitions as the alarm status report.
func FormatAlarmStatus(partitions []domain.PartitionStatus) string {
	var b strings.Builder
	b.WriteString("📊 *Estado actual de la alarma:*\n\n")
	if len(partitions) == 0 {
		b.WriteString("No se encontraron particiones configuradas.\n")
		return b.String()
	}
	for _, p := range partitions {
		fmt.Fprintf(&b, "• %s: %s\n", p.Name, strings.ToUpper(p.State))
	}
	return b.String()
}

// FormatCameras renders the camera status report.
func FormatCameras(cameras []domain.CameraStatus) string {
	var b strings.Builder
	b.WriteString("📷 *Estado de las cámaras:*\n\n")
	if len(cameras) == 0 {
		b.WriteString("No se encontraron cámaras configuradas.\n")
		return b.String()
	}
	for _, c := range cameras {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		fmt.Fprintf(&b, "• %s: %s\n", name, c.State)
	}
	return b.String()
}

// pendingAction marks the home-automation method for the caller to execute.
func pendingAction(turn *domain.Turn, method string) {
	turn.PendingSideEffect = &domain.SideEffect{
		Method:  method,
		Target:  turn.User,
		Intents: turn.Intents,
		Params:  map[string]any{},
	}
}

// AlarmStatusHandler answers from the monitor when it can; otherwise, or when
// the monitor fails, it defers to the user's home-automation webhook.
type AlarmStatusHandler struct {
	monitor domain.SecurityMonitor
	metrics *observability.Metrics
}

func NewAlarmStatusHandler(monitor domain.SecurityMonitor, metrics *observability.Metrics) *AlarmStatusHandler {
	return &AlarmStatusHandler{monitor: monitor, metrics: metrics}
}

func (h *AlarmStatusHandler) Name() string {
	return "alarm_status"
}

func (h *AlarmStatusHandler) Handle(ctx context.Context, turn *domain.Turn) error {
	if h.monitor != nil {
		partitions, err := h.monitor.AlarmStatus(ctx, turn.User)
		if err == nil {
			turn.Say(FormatAlarmStatus(partitions))
			return nil
		}
		h.metrics.IncCollaboratorFailure("monitor")
		observability.LoggerFromContext(ctx).Warn("alarm status lookup failed, deferring to home automation",
			"user_id", turn.User.ID,
			"error", err,
		)
	}

	method := domain.MethodAlarmStatus
	if !turn.Intents.Has(domain.IntentAlarmStatus) && turn.Intents.Has(domain.IntentSensors) {
		method = domain.MethodSensors
	}
	turn.Say(msgAlarmStatusPending)
	pendingAction(turn, method)
	return nil
}

type CameraScanHandler struct {
	monitor domain.SecurityMonitor
	metrics *observability.Metrics
}

func NewCameraScanHandler(monitor domain.SecurityMonitor, metrics *observability.Metrics) *CameraScanHandler {
	return &CameraScanHandler{monitor: monitor, metrics: metrics}
}

func (h *CameraScanHandler) Name() string {
	return "camera_scan"
}

func (h *CameraScanHandler) Handle(ctx context.Context, turn *domain.Turn) error {
	if h.monitor != nil {
		cameras, err := h.monitor.Cameras(ctx, turn.User)
		if err == nil {
			report := FormatCameras(cameras)
			if turn.Intents.Has(domain.IntentCameraImage) && len(cameras) > 0 {
				report += "\n" + msgCameraImages
				pendingAction(turn, domain.MethodCameraImage)
			}
			turn.Say(report)
			return nil
		}
		h.metrics.IncCollaboratorFailure("monitor")
		observability.LoggerFromContext(ctx).Warn("camera lookup failed, deferring to home automation",
			"user_id", turn.User.ID,
			"error", err,
		)
	}

	method, _ := domain.AutomationMethod(turn.Intents)
	if method != domain.MethodCameraImage {
		method = domain.MethodScanCameras
	}
	turn.Say(msgCameraScanPending)
	pendingAction(turn, method)
	return nil
}
