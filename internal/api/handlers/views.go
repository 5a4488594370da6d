package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/utils"
	"github.com/rohits-web03/otadash/internal/views"
)

// board returns the caller's board after checking they may see view.
func (h *Handler) board(r *http.Request, view string) (*views.Board, error) {
	s, err := session(r)
	if err != nil {
		return nil, err
	}
	action, ok := explorer.ViewAction(view)
	if !ok {
		return nil, apperr.NewNotFoundError("View not found", nil)
	}
	if !s.Can(action) {
		return nil, apperr.NewAuthorizationError("You do not have permission to open this view", nil).
			WithDetails(map[string]auth.Action{"action": action})
	}
	return h.Boards.Get(s.ID), nil
}

// GetView godoc
// @Summary Render a live table of the current session
// @Description The first render fetches the collection. Views: devices, sessions, users, explorer.
// @Tags Views
// @Produce json
// @Param view path string true "View name"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /api/v1/views/{view} [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["view"]
	b, err := h.board(r, name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	out, err := b.Render(r.Context(), name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "View rendered", out)
}

// ViewAction godoc
// @Summary Apply an action to a live table
// @Description Actions: filter, sort, next, prev, refresh, collection.
// @Tags Views
// @Accept json
// @Produce json
// @Param view path string true "View name"
// @Param body body views.Action true "Action"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/views/{view}/actions [post]
func (h *Handler) ViewAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["view"]
	b, err := h.board(r, name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var a views.Action
	if err := decodeJSON(r, &a); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	out, err := b.Dispatch(r.Context(), name, a)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "View updated", out)
}
