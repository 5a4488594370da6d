package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohits-web03/otadash/internal/api/handlers"
	"github.com/rohits-web03/otadash/internal/api/middleware"
	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/config"
	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/repositories"
	"github.com/rohits-web03/otadash/internal/storage"
	"github.com/rohits-web03/otadash/internal/summary"
	"github.com/rohits-web03/otadash/internal/views"
)

// refusingStore fails uploads whose key contains "broken".
type refusingStore struct {
	*storage.MemoryStore
}

func (s refusingStore) Put(ctx context.Context, key string, body io.Reader, size int64, ct string) error {
	if strings.Contains(key, "broken") {
		return errors.New("bucket refused the object")
	}
	return s.MemoryStore.Put(ctx, key, body, size, ct)
}

type stubSummarizer struct{ calls int }

func (s *stubSummarizer) Summarize(_ context.Context, req summary.Request) (summary.Result, error) {
	s.calls++
	return summary.Result{Collection: req.Collection, Summary: "All good."}, nil
}

type testEnv struct {
	t        *testing.T
	handler  http.Handler
	repos    *repositories.Repos
	sessions *auth.Manager
	store    *storage.MemoryStore
	summary  *stubSummarizer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logs.Logger.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	cfg := &config.Config{
		Environment:     "test",
		JWTSecret:       "test-secret",
		OwnerEmail:      "owner@example.com",
		FrontendURL:     "http://localhost:5173",
		CorsOrigins:     []string{"http://localhost:5173"},
		DisplayTimezone: "UTC",
		R2:              config.R2Config{RootPrefix: "OTA/"},
	}
	repos := repositories.NewRepos(db)
	cache := repositories.NewMemoryCache()
	sessions := auth.NewManager(auth.NewTokens(cfg.JWTSecret, time.Hour), repos.Users, cache)
	boards := views.NewRegistry(explorer.BoardFactory(explorer.Sources{
		Users: repos.Users, Products: repos.Products, Devices: repos.Devices, Sessions: repos.Sessions,
	}))
	sessions.OnDispose(boards.Drop)

	store := storage.NewMemoryStore()
	sum := &stubSummarizer{}
	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Repos:    repos,
		Accounts: auth.NewAccounts(repos.Users, cfg.OwnerEmail),
		Sessions: sessions,
		Explorer: explorer.New(repos.Users, repos.Products, repos.Devices),
		Summary:  sum,
		Storage:  storage.NewBrowser(refusingStore{store}, cfg.R2.RootPrefix),
		Boards:   boards,
		Cache:    cache,
	})
	return &testEnv{
		t:        t,
		handler:  NewRouter(h, middleware.NewAuthenticator(sessions), cfg.CorsConfig()),
		repos:    repos,
		sessions: sessions,
		store:    store,
		summary:  sum,
	}
}

// signIn creates a user with role and returns a session token for them.
func (e *testEnv) signIn(email string, role models.Role) (models.User, string) {
	e.t.Helper()
	u := models.User{Name: strings.Split(email, "@")[0], Email: email, Role: role}
	require.NoError(e.t, e.repos.Users.Create(context.Background(), &u))
	token, _, _, err := e.sessions.Start(context.Background(), &u)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	return e.do(method, path, token, r, "application/json")
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *apperr.APIError `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestGateAnonymousRedirectsToLogin(t *testing.T) {
	e := newTestEnv(t)
	var d auth.Decision
	decode(t, e.do(http.MethodGet, "/api/v1/gate?route=/dashboard/devices", "", nil, ""), &d)
	assert.Equal(t, auth.OutcomeRedirect, d.Outcome)
	assert.Equal(t, "/login", d.Redirect)
}

func TestSignUpAwaitsApproval(t *testing.T) {
	e := newTestEnv(t)
	rec := e.json(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookie := tokenCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var me struct {
		Gate         auth.GateState `json:"gate"`
		Capabilities []auth.Action  `json:"capabilities"`
	}
	decode(t, rec, &me)
	assert.Equal(t, auth.StatusUnauthorized, me.Gate.Status)
	assert.Empty(t, me.Capabilities)

	var d auth.Decision
	decode(t, e.do(http.MethodGet, "/api/v1/gate?route=/dashboard", cookie.Value, nil, ""), &d)
	assert.Equal(t, auth.OutcomeAwaitingApproval, d.Outcome)
	assert.Empty(t, d.Redirect)
	assert.Equal(t, []string{"sign-out"}, d.Actions)

	rec = e.do(http.MethodGet, "/api/v1/devices", cookie.Value, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, apperr.ErrorTypeAwaitingApproval, env.Error.Type)

	rec = e.do(http.MethodGet, "/api/v1/me", cookie.Value, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginAndOwnerPromotion(t *testing.T) {
	e := newTestEnv(t)
	rec := e.json(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"name": "Owner", "email": "owner@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User *models.User   `json:"user"`
		Gate auth.GateState `json:"gate"`
	}
	decode(t, rec, &me)
	assert.Equal(t, models.RoleAdmin, me.Gate.Role)
	assert.NotNil(t, me.User.LastLogin)
}

func TestLogoutRevokesSession(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)

	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/me", token, nil, "").Code)
	rec := e.do(http.MethodPost, "/api/v1/auth/logout", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, tokenCookie(rec).MaxAge)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/v1/me", token, nil, "").Code)
	assert.Zero(t, e.sessions.Active())
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)

	rec := e.json(http.MethodPatch, "/api/v1/me", token, map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.json(http.MethodPatch, "/api/v1/me", token, map[string]any{"name": "Mia K", "organization": "Acme"})
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User models.User `json:"user"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "Mia K", me.User.Name)
	assert.Equal(t, "Acme", me.User.Organization)
}

func TestRoleChanges(t *testing.T) {
	e := newTestEnv(t)
	admin, adminToken := e.signIn("admin@example.com", models.RoleAdmin)
	pending, pendingToken := e.signIn("new@example.com", models.RoleUnauthorized)

	rec := e.json(http.MethodPatch, "/api/v1/users/"+admin.UID+"/role", adminToken, map[string]string{"role": "manager"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.json(http.MethodPatch, "/api/v1/users/"+pending.UID+"/role", adminToken, map[string]string{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.json(http.MethodPatch, "/api/v1/users/"+pending.UID+"/role", adminToken, map[string]string{"role": "manager"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/devices", pendingToken, nil, "").Code)
	rec = e.json(http.MethodPatch, "/api/v1/users/"+admin.UID+"/role", pendingToken, map[string]string{"role": "manager"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var page struct {
		Items []explorer.UserRow `json:"items"`
	}
	decode(t, e.do(http.MethodGet, "/api/v1/users", adminToken, nil, ""), &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "admin@example.com", page.Items[0].Email)
	assert.False(t, page.Items[0].RoleEditable)
	assert.True(t, page.Items[1].RoleEditable)
}

func ip(v int) *int { return &v }

func seedSession(t *testing.T, e *testEnv) models.OtaSession {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.repos.Devices.Upsert(ctx, &models.Device{Name: "dev-1"}))
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := models.OtaSession{
		DeviceID: "dev-1", DeviceName: "dev-1", StartedAt: t0, Status: models.StatusInProgress,
		PreSlot: models.SlotA, SlotSelected: models.SlotB, CurrentSlotAfter: models.SlotA,
		SourcePath: "OTA/ver1.0.0/", Files: []string{"app.bin"}, AppVersion: "1.0.0",
		Events: []models.OtaEvent{
			{Type: models.EventSessionStart, At: t0},
			{Type: models.EventDownload, At: t0.Add(2 * time.Second), Percent: ip(40)},
			{Type: models.EventDownload, At: t0.Add(time.Second), Percent: ip(10)},
		},
	}
	require.NoError(t, e.repos.Sessions.Create(ctx, &s, nil))
	return s
}

func TestSessionEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)
	s := seedSession(t, e)

	rec := e.do(http.MethodGet, "/api/v1/sessions/"+s.ID, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view struct {
		Indicator struct {
			Icon  string `json:"icon"`
			Color string `json:"color"`
		} `json:"indicator"`
		Progress *struct {
			Percent int `json:"percent"`
		} `json:"progress"`
		Timeline []json.RawMessage `json:"timeline"`
	}
	decode(t, rec, &view)
	assert.Equal(t, "AlertTriangle", view.Indicator.Icon)
	assert.Equal(t, "yellow", view.Indicator.Color)
	require.NotNil(t, view.Progress)
	assert.Equal(t, 40, view.Progress.Percent)
	assert.Len(t, view.Timeline, 3)

	var page struct {
		Items []explorer.SessionRow `json:"items"`
		Label string                `json:"label"`
	}
	decode(t, e.do(http.MethodGet, "/api/v1/sessions?filter=ver1.0", token, nil, ""), &page)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Progress)
	assert.Equal(t, 40, page.Items[0].Progress.Percent)
	assert.Empty(t, page.Items[0].Events)

	decode(t, e.do(http.MethodGet, "/api/v1/sessions?filter=nothing-matches", token, nil, ""), &page)
	assert.Empty(t, page.Items)
	assert.Equal(t, "Showing page 1 of 0", page.Label)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/sessions?page=zero", token, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/sessions/missing", token, nil, "").Code)

	done := models.OtaSession{
		DeviceID: "dev-1", DeviceName: "dev-1", StartedAt: s.StartedAt.Add(-time.Hour), Status: models.StatusCompleted,
		PreSlot: models.SlotB, SlotSelected: models.SlotA, CurrentSlotAfter: models.SlotA, SourcePath: "OTA/ver0.9.0/",
	}
	require.NoError(t, e.repos.Sessions.Create(context.Background(), &done, []models.SlotHistory{
		{DeviceID: "dev-1", FromSlot: models.SlotB, ToSlot: models.SlotA, Reason: "update", At: done.StartedAt},
	}))

	rec = e.do(http.MethodGet, "/api/v1/devices/dev-1", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var device map[string]json.RawMessage
	decode(t, rec, &device)
	assert.Contains(t, device, "sessions")
	assert.NotContains(t, device, "slotHistory")
}

func multipartBody(t *testing.T, path string, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("path", path))
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadReportsPartialFailure(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("admin@example.com", models.RoleAdmin)

	body, ct := multipartBody(t, "OTA/ver1.0.0/", map[string]string{
		"a.bin": "aaa", "broken.bin": "bbb", "c.bin": "ccc",
	}, []string{"a.bin", "broken.bin", "c.bin"})
	rec := e.do(http.MethodPost, "/api/v1/storage/files", token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report storage.UploadReport
	env := decode(t, rec, &report)
	assert.False(t, env.Success)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Notifications, 2)
	assert.Equal(t, "2 of 3 file(s) uploaded successfully to OTA/ver1.0.0/.", report.Notifications[0].Description)
	assert.Equal(t, "1 file(s) could not be uploaded.", report.Notifications[1].Description)
	require.NotNil(t, report.Directory)
	assert.Len(t, report.Directory.Items, 2)

	_, ok := e.store.Get("OTA/ver1.0.0/c.bin")
	assert.True(t, ok)
}

func TestManagerCannotModifyStorage(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)

	body, ct := multipartBody(t, "OTA/", map[string]string{"a.bin": "a"}, []string{"a.bin"})
	rec := e.do(http.MethodPost, "/api/v1/storage/files", token, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperr.ErrorTypeAuthorize, decode(t, rec, nil).Error.Type)

	rec = e.json(http.MethodPost, "/api/v1/storage/folders", token, map[string]string{"parent": "OTA/", "name": "ver1.0.0"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/storage?path=OTA/", token, nil, "").Code)
}

func TestFolderLifecycle(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("admin@example.com", models.RoleAdmin)

	rec := e.json(http.MethodPost, "/api/v1/storage/folders", token, map[string]string{"parent": "OTA/", "name": "ver1.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.json(http.MethodPost, "/api/v1/storage/folders", token, map[string]string{"parent": "OTA/", "name": "ver1.0.0"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dir storage.Directory
	decode(t, e.do(http.MethodGet, "/api/v1/storage?path=OTA/", token, nil, ""), &dir)
	require.Len(t, dir.Items, 1)
	assert.Equal(t, models.StorageTypeFolder, dir.Items[0].Type)

	rec = e.json(http.MethodDelete, "/api/v1/storage/folders", token, map[string]string{"path": "OTA/ver1.0.0/", "confirm": "ver1.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.json(http.MethodDelete, "/api/v1/storage/folders", token, map[string]string{"path": "OTA/ver1.0.0/", "confirm": "ver1.0.0"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decode(t, e.do(http.MethodGet, "/api/v1/storage?path=OTA/", token, nil, ""), &dir)
	assert.Empty(t, dir.Items)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/storage?path=../etc/", token, nil, "").Code)
}

func TestLiveViews(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)
	ctx := context.Background()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, e.repos.Devices.Upsert(ctx, &models.Device{Name: name}))
	}

	var snap struct {
		Loaded bool   `json:"loaded"`
		Total  int    `json:"total"`
		Filter string `json:"filter"`
	}
	decode(t, e.do(http.MethodGet, "/api/v1/views/devices", token, nil, ""), &snap)
	assert.True(t, snap.Loaded)
	assert.Equal(t, 3, snap.Total)

	rec := e.json(http.MethodPost, "/api/v1/views/devices/actions", token, views.Action{Type: views.ActionFilter, Value: "ta"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &snap)
	assert.Equal(t, 1, snap.Total)

	decode(t, e.do(http.MethodGet, "/api/v1/views/devices", token, nil, ""), &snap)
	assert.Equal(t, "ta", snap.Filter)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/v1/views/users", token, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/views/orders", token, nil, "").Code)

	rec = e.json(http.MethodPost, "/api/v1/views/explorer/actions", token, views.Action{Type: views.ActionCollection, Value: "devices"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var coll struct {
		Collection explorer.Kind `json:"collection"`
	}
	decode(t, rec, &coll)
	assert.Equal(t, explorer.KindDevices, coll.Collection)
}

func TestExplorerEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signIn("mia@example.com", models.RoleManager)
	require.NoError(t, e.repos.Products.Create(context.Background(), &models.Product{Name: "Sensor", Category: "sensor", Price: 9.5, Stock: 3}))

	var page struct {
		Items    []models.Product `json:"items"`
		PageSize int              `json:"pageSize"`
	}
	decode(t, e.do(http.MethodGet, "/api/v1/explorer/products", token, nil, ""), &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, explorer.PageSize, page.PageSize)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/explorer/orders", token, nil, "").Code)

	var res summary.Result
	rec := e.do(http.MethodPost, "/api/v1/explorer/products/summary", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)
	assert.Equal(t, "products", res.Collection)
	assert.Equal(t, 1, e.summary.calls)
}
