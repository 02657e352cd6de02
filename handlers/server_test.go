package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/wedding-api/handlers"
	"github.com/LovationAdmin/wedding-api/middleware"
	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/routes"
	"github.com/LovationAdmin/wedding-api/services"
	"github.com/LovationAdmin/wedding-api/store"
)

type testSettings struct {
	deadline time.Time
}

func (s *testSettings) Deadline() time.Time      { return s.deadline }
func (s *testSettings) SongRequestEnabled() bool { return true }

type captureNotifier struct {
	receipts chan *services.ChangeRequestReceipt
}

func (n *captureNotifier) NotifyChangeRequest(_ context.Context, r *services.ChangeRequestReceipt) error {
	n.receipts <- r
	return nil
}

type testServer struct {
	router     *gin.Engine
	store      *store.Bolt
	settings   *testSettings
	notifier   *captureNotifier
	households *services.HouseholdService
	auth       *services.AuthService
}

func pass(c *gin.Context) { c.Next() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	models.RegisterValidators()

	st, err := store.NewBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	settings := &testSettings{deadline: time.Now().Add(24 * time.Hour)}
	notifier := &captureNotifier{receipts: make(chan *services.ChangeRequestReceipt, 4)}

	ws := handlers.NewWSHandler()
	t.Cleanup(func() { ws.Close() })

	audit := services.NewAuditService(st)
	audit.SetListener(ws)
	rsvp := services.NewRSVPService(st, settings, audit, nil)
	households := services.NewHouseholdService(st, audit, nil)
	auth := services.NewAuthService(st, audit, "handler-test-secret", time.Hour)

	_, err = auth.EnsureAdmin(context.Background(), "admin@example.com", "s3cret-pass", "Admin")
	require.NoError(t, err)

	router := gin.New()
	authMiddleware := middleware.AuthMiddleware(auth)
	routes.SetupPublicRoutes(&router.RouterGroup, handlers.NewRSVPHandler(rsvp, notifier), routes.PublicLimits{
		Household:     pass,
		Submit:        pass,
		ChangeRequest: pass,
	})
	routes.SetupAuthRoutes(&router.RouterGroup, handlers.NewAuthHandler(auth), authMiddleware, pass)
	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	routes.SetupAdminRoutes(admin,
		handlers.NewHouseholdHandler(households),
		handlers.NewReportHandler(services.NewReportService(st, audit)),
		handlers.NewAuditHandler(audit),
		ws,
	)

	return &testServer{
		router:     router,
		store:      st,
		settings:   settings,
		notifier:   notifier,
		households: households,
		auth:       auth,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.AccessToken
}

func (s *testServer) seed(t *testing.T) *models.CreationReceipt {
	t.Helper()
	dep := 0
	receipt, err := s.households.Create(context.Background(), "", models.CreateHouseholdRequest{
		DisplayName: "The Garcias",
		Guests: []models.CreateGuestRequest{
			{FirstName: "Maria", LastName: "Garcia", IsPrimary: true},
			{FirstName: "Luis", LastName: "Garcia", AttendanceRequiresGuestIndex: &dep},
		},
	})
	require.NoError(t, err)
	return receipt
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
