package homeassistant

import (
	"context"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// SimulatedMonitor answers status queries with fixed data. It backs local
// runs where no customer installation is reachable.
type SimulatedMonitor struct {
	Partitions []domain.PartitionStatus
	CameraList []domain.CameraStatus
}

func NewSimulatedMonitor() *SimulatedMonitor {
	return &SimulatedMonitor{
		Partitions: []domain.PartitionStatus{
			{Name: "Partición 1", State: "activada"},
			{Name: "Partición 2", State: "desactivada"},
		},
		CameraList: []domain.CameraStatus{
			{ID: "camera.entrada_principal", Name: "Entrada Principal", State: "Grabando"},
			{ID: "camera.patio_trasero", Name: "Patio Trasero", State: "Grabando"},
			{ID: "camera.cocina", Name: "Cocina", State: "Inactiva"},
		},
	}
}

func (m *SimulatedMonitor) AlarmStatus(_ context.Context, _ domain.User) ([]domain.PartitionStatus, error) {
	return append([]domain.PartitionStatus(nil), m.Partitions...), nil
}

func (m *SimulatedMonitor) Cameras(_ context.Context, _ domain.User) ([]domain.CameraStatus, error) {
	return append([]domain.CameraStatus(nil), m.CameraList...), nil
}

var _ domain.SecurityMonitor = (*SimulatedMonitor)(nil)
