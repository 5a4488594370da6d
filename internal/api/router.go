package api

import (
	"fmt"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rohits-web03/otadash/docs"
	"github.com/rohits-web03/otadash/internal/api/handlers"
	"github.com/rohits-web03/otadash/internal/api/middleware"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/logs"
)

// NewRouter wires every route. corsOpts comes from config.Config.CorsConfig.
func NewRouter(h *handlers.Handler, authn *middleware.Authenticator, corsOpts cors.Options) http.Handler {
	r := mux.NewRouter()

	// ---------- PUBLIC ROUTES ----------
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)

	r.PathPrefix("/docs/").Handler(httpSwagger.WrapHandler)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	authRoutes := v1.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/sign-up", h.SignUp).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/google/login", h.GoogleLogin).Methods(http.MethodGet)
	authRoutes.HandleFunc("/google/callback", h.GoogleCallback).Methods(http.MethodGet)
	authRoutes.Handle("/logout", authn.Authenticate(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)

	v1.Handle("/gate", authn.Optional(http.HandlerFunc(h.Gate))).Methods(http.MethodGet)

	// ---------- SIGNED-IN ROUTES ----------
	// Reachable while awaiting approval.
	me := v1.PathPrefix("/me").Subrouter()
	me.Use(authn.Authenticate)
	me.HandleFunc("", h.Me).Methods(http.MethodGet)
	me.Handle("", middleware.RequireCapability(auth.EditOwnProfile, h.UpdateMe)).Methods(http.MethodPatch)

	// ---------- APPROVED ROUTES ----------
	protected := v1.NewRoute().Subrouter()
	protected.Use(authn.Authenticate)

	protected.Handle("/devices", middleware.RequireCapability(auth.ViewDevices, h.ListDevices)).Methods(http.MethodGet)
	protected.Handle("/devices/{name}", middleware.RequireCapability(auth.ViewDevices, h.GetDevice)).Methods(http.MethodGet)
	protected.Handle("/sessions", middleware.RequireCapability(auth.ViewSessions, h.ListSessions)).Methods(http.MethodGet)
	protected.Handle("/sessions/{id}", middleware.RequireCapability(auth.ViewSessions, h.GetSession)).Methods(http.MethodGet)

	protected.Handle("/users", middleware.RequireCapability(auth.ManageUsers, h.ListUsers)).Methods(http.MethodGet)
	protected.Handle("/users/{uid}/role", middleware.RequireCapability(auth.ManageUsers, h.UpdateUserRole)).Methods(http.MethodPatch)

	protected.Handle("/explorer/{kind}", middleware.RequireCapability(auth.ExploreData, h.ExplorerPage)).Methods(http.MethodGet)
	protected.Handle("/explorer/{kind}/summary", middleware.RequireCapability(auth.SummarizeData, h.ExplorerSummary)).Methods(http.MethodPost)

	protected.Handle("/views/{view}", middleware.RequireAuthorized(http.HandlerFunc(h.GetView))).Methods(http.MethodGet)
	protected.Handle("/views/{view}/actions", middleware.RequireAuthorized(http.HandlerFunc(h.ViewAction))).Methods(http.MethodPost)

	protected.Handle("/storage", middleware.RequireCapability(auth.BrowseStorage, h.ListStorage)).Methods(http.MethodGet)
	protected.Handle("/storage/download", middleware.RequireCapability(auth.DownloadFirmware, h.DownloadFile)).Methods(http.MethodGet)
	protected.Handle("/storage/files", middleware.RequireCapability(auth.UploadFirmware, h.UploadFiles)).Methods(http.MethodPost)
	protected.Handle("/storage/files", middleware.RequireCapability(auth.DeleteFirmware, h.DeleteFile)).Methods(http.MethodDelete)
	protected.Handle("/storage/folders", middleware.RequireCapability(auth.CreateFolder, h.CreateFolder)).Methods(http.MethodPost)
	protected.Handle("/storage/folders", middleware.RequireCapability(auth.DeleteFirmware, h.DeleteFolder)).Methods(http.MethodDelete)

	logs.Logger.Info("Router initialized")

	var handler http.Handler = r
	handler = cors.New(corsOpts).Handler(handler)
	handler = middleware.Logger(handler)
	handler = middleware.RequestID(handler)
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logs.Logger),
		gorillahandlers.PrintRecoveryStack(true),
	)(handler)
	return handler
}
