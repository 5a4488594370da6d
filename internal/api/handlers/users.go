package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/utils"
	"github.com/rohits-web03/otadash/internal/views"
)

type roleInput struct {
	Role models.Role `json:"role"`
}

// ListUsers godoc
// @Summary List users
// @Description Admin only. The caller's own row is not role-editable.
// @Tags Users
// @Produce json
// @Param filter query string false "Filter text"
// @Param sort query string false "Sort column" default(email)
// @Param order query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	users, err := h.Repos.Users.List(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := views.Apply(explorer.UserListSpec, explorer.UserRows(users, s.UserID), q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Users fetched", page)
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Description Admin only. Administrators cannot change their own role.
// @Tags Users
// @Accept json
// @Produce json
// @Param uid path string true "User id"
// @Param body body roleInput true "New role"
// @Success 200 {object} utils.Payload{data=models.User}
// @Failure 400 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /api/v1/users/{uid}/role [patch]
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var input roleInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	uid := mux.Vars(r)["uid"]
	u, err := h.Accounts.ChangeRole(r.Context(), s.User(), uid, input.Role)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	for _, live := range h.Sessions.SessionsOf(uid) {
		live.Set(u)
	}
	utils.Success(w, "Role updated successfully", u)
}
