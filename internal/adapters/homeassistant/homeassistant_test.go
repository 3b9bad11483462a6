package homeassistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

func TestClientCall(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"queued":true}`))
	}))
	defer srv.Close()

	resp, err := NewClient(nil).Call(context.Background(), srv.URL, "tok", Request{
		Method:         domain.MethodAlarmStatus,
		Phone:          "543471627777",
		ConversationID: "conv-1",
		CallbackURL:    "https://bot/webhook/home_assistant_response",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, domain.MethodAlarmStatus, got.Method)
	assert.Equal(t, "conv-1", got.ConversationID)
	assert.JSONEq(t, `{"queued":true}`, string(resp.Data))
}

func TestClientCallNonJSONAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok, running"))
	}))
	defer srv.Close()

	resp, err := NewClient(nil).Call(context.Background(), srv.URL, "", Request{Method: domain.MethodScanCameras})
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
}

func TestClientCallErrors(t *testing.T) {
	_, err := NewClient(nil).Call(context.Background(), "", "tok", Request{})
	assert.ErrorIs(t, err, ErrNoWebhook)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err = NewClient(nil).Call(context.Background(), srv.URL, "bad", Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback([]byte(`{"phone":"543471627777","conversation_id":"c1","method":"get_alarm_status","results":{"partitions":{"Zona B":"desactivada","Zona A":"activada"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "get_alarm_status", cb.Method)

	partitions, ok := DecodePartitions(cb.Results)
	require.True(t, ok)
	assert.Equal(t, []domain.PartitionStatus{
		{Name: "Zona A", State: "activada"},
		{Name: "Zona B", State: "desactivada"},
	}, partitions)

	_, err = ParseCallback([]byte(`{"phone":"1"}`))
	assert.ErrorIs(t, err, ErrIncompleteCallback)
}

func TestDecodeCameras(t *testing.T) {
	cams, ok := DecodeCameras(json.RawMessage(`{"cameras":[{"id":"camera.cocina","name":"Cocina"}]}`))
	require.True(t, ok)
	assert.Equal(t, []domain.CameraStatus{{ID: "camera.cocina", Name: "Cocina", State: "Desconocido"}}, cams)

	_, ok = DecodeCameras(json.RawMessage(`{"other":1}`))
	assert.False(t, ok)
}

func TestRawResults(t *testing.T) {
	assert.Equal(t, "listo", RawResults("m", json.RawMessage(`"listo"`)))
	assert.Equal(t, "Resultados de 'check_sensors':\n\n{\n  \"ok\": true\n}", RawResults("check_sensors", json.RawMessage(`{"ok":true}`)))
}

func TestSimulatedMonitor(t *testing.T) {
	m := NewSimulatedMonitor()
	parts, err := m.AlarmStatus(context.Background(), domain.User{})
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	cams, err := m.Cameras(context.Background(), domain.User{})
	require.NoError(t, err)
	assert.Len(t, cams, 3)
}
