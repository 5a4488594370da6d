package handlers

import (
	"net/http"

	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/utils"
)

// meResponse describes the signed-in user and what they may do.
type meResponse struct {
	User         *models.User   `json:"user"`
	Phase        auth.Phase     `json:"phase"`
	Gate         auth.GateState `json:"gate"`
	Capabilities []auth.Action  `json:"capabilities"`
	Navigation   []auth.Route   `json:"navigation"`
}

func newMeResponse(s *auth.Session) meResponse {
	st := s.State()
	resp := meResponse{User: s.User(), Phase: s.Phase(), Gate: st, Capabilities: []auth.Action{}, Navigation: []auth.Route{}}
	if st.Status == auth.StatusAuthorized {
		resp.Capabilities = auth.Capabilities(st.Role)
		resp.Navigation = auth.Navigation(st.Role)
	}
	return resp
}

type profileInput struct {
	Name         string  `json:"name"`
	Organization *string `json:"organization"`
}

// Me godoc
// @Summary Current user, gate state and capabilities
// @Tags Session
// @Produce json
// @Success 200 {object} utils.Payload{data=meResponse}
// @Failure 401 {object} utils.Payload
// @Router /api/v1/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Current user", newMeResponse(s))
}

// UpdateMe godoc
// @Summary Update my profile
// @Description Name is required, organization is optional.
// @Tags Session
// @Accept json
// @Produce json
// @Param body body profileInput true "Profile"
// @Success 200 {object} utils.Payload{data=meResponse}
// @Failure 400 {object} utils.Payload
// @Router /api/v1/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var input profileInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u, err := h.Accounts.UpdateProfile(r.Context(), s.UserID, input.Name, input.Organization)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	s.Set(u)
	utils.Success(w, "Profile updated successfully", newMeResponse(s))
}

// Gate godoc
// @Summary Decide what to show for a dashboard route
// @Description Works signed in or not: anonymous visitors are redirected to /login, unapproved users see Awaiting Approval.
// @Tags Session
// @Produce json
// @Param route query string true "Dashboard path"
// @Success 200 {object} utils.Payload{data=auth.Decision}
// @Router /api/v1/gate [get]
func (h *Handler) Gate(w http.ResponseWriter, r *http.Request) {
	state := auth.StateOf(false, nil)
	if s, ok := auth.FromContext(r.Context()); ok {
		state = s.State()
	}
	route := r.URL.Query().Get("route")
	if route == "" {
		route = auth.DashboardPath
	}
	utils.Success(w, "Route decision", auth.Decide(state, route))
}
