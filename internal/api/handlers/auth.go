package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/api/middleware"
	"github.com/rohits-web03/otadash/internal/api/services"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/utils"
)

type signUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp godoc
// @Summary Register with email and password
// @Description New accounts await administrator approval. The session cookie is set on success.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body signUpInput true "Account"
// @Success 201 {object} utils.Payload{data=meResponse}
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/auth/sign-up [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input signUpInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u, err := h.Accounts.SignUp(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	s, err := h.startSession(w, r, u)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    newMeResponse(s),
	})
}

// Login godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginInput true "Credentials"
// @Success 200 {object} utils.Payload{data=meResponse}
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u, err := h.Accounts.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	s, err := h.startSession(w, r, u)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Login successful", newMeResponse(s))
}

// Logout godoc
// @Summary Sign out and revoke the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	err = h.Sessions.SignOut(r.Context(), s)
	h.clearTokenCookie(w)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Logged out successfully", nil)
}

// GoogleLogin godoc
// @Summary Start Google sign-in
// @Tags Auth
// @Param return query string false "Dashboard path to open after sign-in"
// @Success 307
// @Failure 503 {object} utils.Payload
// @Router /api/v1/auth/google/login [get]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		utils.WriteError(w, r, apperr.NewUnavailableError("Google sign-in is not configured", nil))
		return
	}
	ret := r.URL.Query().Get("return")
	if !strings.HasPrefix(ret, auth.DashboardPath) {
		ret = auth.DashboardPath
	}
	state, err := h.issueState(r.Context(), map[string]string{"return": ret})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback godoc
// @Summary Complete Google sign-in
// @Description Creates the account as unauthorized on first sign-in and redirects to the dashboard.
// @Tags Auth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 307
// @Router /api/v1/auth/google/callback [get]
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		utils.WriteError(w, r, apperr.NewUnavailableError("Google sign-in is not configured", nil))
		return
	}
	data, err := h.consumeState(r.Context(), r.FormValue("state"))
	if err != nil {
		h.redirectLoginError(w, r, "invalid_state", err)
		return
	}

	profile, err := services.FetchGoogleProfile(r.Context(), h.OAuth, r.FormValue("code"))
	if err != nil {
		h.redirectLoginError(w, r, "google_failed", err)
		return
	}
	u, err := h.Accounts.SignInExternal(r.Context(), profile)
	if err != nil {
		h.redirectLoginError(w, r, "sign_in_failed", err)
		return
	}
	if _, err := h.startSession(w, r, u); err != nil {
		h.redirectLoginError(w, r, "sign_in_failed", err)
		return
	}
	http.Redirect(w, r, h.frontend(data["return"]), http.StatusTemporaryRedirect)
}

func (h *Handler) redirectLoginError(w http.ResponseWriter, r *http.Request, code string, err error) {
	h.log.WithError(err).WithField("reason", code).Warn("google sign-in failed")
	http.Redirect(w, r, h.frontend(auth.LoginPath+"?error="+url.QueryEscape(code)), http.StatusTemporaryRedirect)
}

func (h *Handler) frontend(path string) string {
	if path == "" {
		path = auth.DashboardPath
	}
	return strings.TrimRight(h.Config.FrontendURL, "/") + path
}

// startSession opens a session for u and sets the token cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u *models.User) (*auth.Session, error) {
	token, exp, s, err := h.Sessions.Start(r.Context(), u)
	if err != nil {
		return nil, err
	}
	h.setTokenCookie(w, token, exp)
	h.log.WithFields(logrus.Fields{"user": u.UID, "sid": s.ID}).Info("signed in")
	return s, nil
}

func (h *Handler) sameSite() http.SameSite {
	if h.Config.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(exp).Seconds()),
		Secure:   h.Config.IsProduction(),
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.Config.IsProduction(),
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}
