package troubleshooting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/taborra-agent/internal/catalog"
)

func TestSelectDeviceNumericAlias(t *testing.T) {
	devices := catalog.Default().ListDevices()

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"2", "modelo_5500", true},
		{"1555", "", false},
		{"el 1555", "modelo_1555", true},
		{"tengo el 5500", "modelo_5500", true},
		{"es un ajax", "alax", true},
	}
	for _, tt := range tests {
		d, ok := selectDevice(tt.utterance, devices)
		assert.Equal(t, tt.ok, ok, tt.utterance)
		assert.Equal(t, tt.want, d.Key, tt.utterance)
	}
}
