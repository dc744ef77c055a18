package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/memory"
	"github.com/zatekoja/notification-orchestrator/internal/api/handlers"
	"github.com/zatekoja/notification-orchestrator/internal/api/middleware"
	"github.com/zatekoja/notification-orchestrator/internal/api/routes"
	"github.com/zatekoja/notification-orchestrator/internal/api/validation"
	"github.com/zatekoja/notification-orchestrator/internal/application/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewPreferenceStore()
	validator := validation.New([]string{"email", "sms", "push"})
	preferenceService := services.NewPreferenceService(store, nil)
	decisionService := services.NewDecisionService(store, nil)

	router := routes.NewRouter(
		handlers.NewEventHandler(decisionService, validator),
		handlers.NewPreferenceHandler(preferenceService, validator),
		handlers.NewHealthHandler(preferenceService),
		nil,
		nil,
	)

	server := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func event(eventType, timestamp string) string {
	return `{"eventId":"evt_1","userId":"usr_1","eventType":"` + eventType + `","timestamp":"` + timestamp + `","payload":{}}`
}

func TestRouter_DecisionLifecycle(t *testing.T) {
	server := newTestServer(t)

	// nothing stored yet
	resp, body := do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-28T12:00:00Z"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NO_PREFERENCES_FOUND", body["reason"])

	resp, _ = do(t, server, http.MethodPost, "/preferences/usr_1", `{
		"preferences": {
			"item_shipped": {"enabled": true, "channels": ["email"]},
			"newsletter": {"enabled": false, "channels": ["email"]},
			"survey": {"enabled": true, "channels": []}
		},
		"dndWindows": [{"dayOfWeek": "Monday", "startTime": "22:00", "endTime": "07:00"}]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Monday 23:30 UTC is inside the overnight window
	resp, body = do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-28T23:30:00Z"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DND_ACTIVE", body["reason"])

	// the wrapped part of the window applies to Monday morning, not Tuesday
	resp, body = do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-28T06:00:00Z"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DND_ACTIVE", body["reason"])

	resp, _ = do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-29T06:00:00Z"))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body = do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-29T12:00:00Z"))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "PROCESS_NOTIFICATION", body["decision"])
	assert.Equal(t, []interface{}{"email"}, body["channels"])

	_, body = do(t, server, http.MethodPost, "/events", event("newsletter", "2025-07-29T12:00:00Z"))
	assert.Equal(t, "PREFERENCES_DISABLED", body["reason"])

	_, body = do(t, server, http.MethodPost, "/events", event("unknown_type", "2025-07-29T12:00:00Z"))
	assert.Equal(t, "PREFERENCES_DISABLED", body["reason"])

	_, body = do(t, server, http.MethodPost, "/events", event("survey", "2025-07-29T12:00:00Z"))
	assert.Equal(t, "NO_CHANNELS_CONFIGURED", body["reason"])

	// clearing DND through a partial update keeps the event preferences
	resp, body = do(t, server, http.MethodPut, "/preferences/usr_1", `{"dndWindows": []}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["preferences"], "item_shipped")

	resp, _ = do(t, server, http.MethodPost, "/events", event("item_shipped", "2025-07-28T23:30:00Z"))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, _ = do(t, server, http.MethodDelete, "/preferences/usr_1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, server, http.MethodGet, "/preferences/usr_1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_UpdateUnknownUser(t *testing.T) {
	server := newTestServer(t)

	resp, _ := do(t, server, http.MethodPut, "/preferences/ghost", `{"dndWindows": []}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Probes(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.Client().Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, body := do(t, server, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	resp, _ := do(t, server, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
