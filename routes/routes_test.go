package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"lifeline/config"
	"lifeline/models"
	"lifeline/repositories"
	"lifeline/services"
	"lifeline/utils"
	"lifeline/websocket"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "route-test-secret"

type testApp struct {
	router *gin.Engine
	cases  *services.CaseService
	token  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:      "test",
		AdminJWTSecret:   testSecret,
		AllowedOrigins:   []string{"http://localhost:3000"},
		RateLimitRequest: 100,
		RateLimitWindow:  1,
	}

	hospitals := repositories.NewMemoryHospitalStore()
	require.NoError(t, hospitals.UpsertByName(context.Background(), models.Hospital{
		Name: "Ruby Hall Clinic",
		Beds: models.HospitalBeds{Emergency: 4, ICU: 2, General: 10},
	}))

	profiles := repositories.NewMemoryProfileStore()
	bus := services.NewCaseEventBus(nil, nil)
	sender := services.DisabledSMSSender{}
	dispatcher := services.NewNotificationDispatcher(sender, bus, "91", 1, time.Millisecond)
	caseService := services.NewCaseService(repositories.NewMemoryCaseStore(), profiles, nil, nil, dispatcher, bus, time.Second)
	hospitalService := services.NewHospitalService(hospitals)

	svcs := &Services{
		Cases:     caseService,
		Places:    services.NewPlacesService("http://127.0.0.1:0", "", time.Second, hospitalService),
		Hospitals: hospitalService,
		Profiles:  services.NewProfileService(profiles, "91"),
		SMS:       services.NewSMSService(sender, "", "91"),
		Symptoms:  services.NewSymptomService("", "", ""),
	}

	hub := websocket.NewHub(caseService.ListCases)
	t.Cleanup(func() {
		caseService.Wait()
		hub.Shutdown()
	})

	token, err := utils.NewJWTService(testSecret).GenerateToken("op-1", "op@example.com", utils.RoleOperator)
	require.NoError(t, err)

	return &testApp{
		router: SetupRoutes(cfg, svcs, hub, nil, nil),
		cases:  caseService,
		token:  token,
	}
}

func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestCreateThenListAndFetch(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/create-sos", map[string]interface{}{
		"userId":   "user-1",
		"lat":      18.52,
		"long":     73.85,
		"location": "FC Road, Pune",
		"cause":    "chest pain",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created models.EmergencyCase
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.EmergencyID)
	assert.Equal(t, models.CaseStatusPending, created.Status)
	assert.Equal(t, "FC Road, Pune", created.Location)

	w = app.do(http.MethodGet, "/all-emergency", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.EmergencyCase
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, created.EmergencyID, all[0].EmergencyID)

	w = app.do(http.MethodGet, "/get-emergency-data/"+created.EmergencyID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, created.EmergencyID, detail["emergencyId"])
	assert.NotContains(t, detail, "user")
}

func TestListEmptyIsArray(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/all-emergency", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateRejectsBadCoordinates(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/create-sos", map[string]interface{}{"userId": "u", "lat": 18.5}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/create-sos", map[string]interface{}{"userId": "u", "lat": 95.0, "long": 10.0}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/all-emergency", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUnknownCaseIsNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/get-emergency-data/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPatch, "/emergency/does-not-exist/status", map[string]string{"status": "acknowledged"}, app.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusTransitionsOverHTTP(t *testing.T) {
	app := newTestApp(t)

	created, err := app.cases.CreateCase(context.Background(), models.CreateSOSRequest{
		UserID: "user-2",
		Lat:    utils.Float64Ptr(19.07),
		Long:   utils.Float64Ptr(72.87),
	})
	require.NoError(t, err)
	path := "/emergency/" + created.EmergencyID

	w := app.do(http.MethodPatch, path+"/status", map[string]string{"status": "acknowledged"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPatch, path+"/status", map[string]string{"status": "acknowledged"}, app.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.EmergencyCase
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.CaseStatusAcknowledged, updated.Status)

	w = app.do(http.MethodPatch, path+"/status", map[string]string{"status": "pending"}, app.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(http.MethodPatch, path+"/status", map[string]string{"status": "archived"}, app.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPatch, path+"/priority", map[string]string{"priority": "Critical"}, app.token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.PriorityCritical, updated.Priority)
}

func TestHospitalRoutes(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/hospital", "/api/hospitals"} {
		w := app.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var list []models.Hospital
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	}

	w := app.do(http.MethodGet, "/api/hospitals/ruby%20hall%20clinic", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/hospital/Sassoon%20General", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnconfiguredIntegrations(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/places/nearby?lat=18.5&lng=73.8", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = app.do(http.MethodPost, "/api/symptoms/check", map[string]string{"prompt": "fever and cough"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = app.do(http.MethodPost, "/send-message", map[string]string{"to": "9876543210"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndNoRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriageStreamRequiresOperator(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/ws/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/ws/stats", nil, app.token)
	assert.Equal(t, http.StatusOK, w.Code)
}
