package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/ota"
	"github.com/rohits-web03/otadash/internal/utils"
	"github.com/rohits-web03/otadash/internal/views"
)

type deviceResponse struct {
	Device   *models.Device        `json:"device"`
	Sessions []explorer.SessionRow `json:"sessions"`
}

// ListDevices godoc
// @Summary List devices
// @Description Filter matches the device id only. Page size 10.
// @Tags Devices
// @Produce json
// @Param filter query string false "Filter text"
// @Param sort query string false "Sort column" default(id)
// @Param order query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} utils.Payload
// @Router /api/v1/devices [get]
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	devices, err := h.Repos.Devices.List(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := views.Apply(explorer.DeviceListSpec, devices, q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Devices fetched", page)
}

// GetDevice godoc
// @Summary Device with its sessions, newest first
// @Tags Devices
// @Produce json
// @Param name path string true "Device name"
// @Success 200 {object} utils.Payload{data=deviceResponse}
// @Failure 404 {object} utils.Payload
// @Router /api/v1/devices/{name} [get]
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	device, err := h.Repos.Devices.Get(r.Context(), name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	sessions, err := h.Repos.Sessions.ListByDevice(r.Context(), name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Device fetched", deviceResponse{
		Device:   device,
		Sessions: explorer.SessionRows(sessions),
	})
}

// ListSessions godoc
// @Summary List OTA sessions across devices
// @Description Filter matches any field. Default sort startedAt desc. Page size 10.
// @Tags Sessions
// @Produce json
// @Param device query string false "Restrict to one device"
// @Param filter query string false "Filter text"
// @Param sort query string false "Sort column" default(startedAt)
// @Param order query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} utils.Payload
// @Router /api/v1/sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var sessions []models.OtaSession
	if device := r.URL.Query().Get("device"); device != "" {
		sessions, err = h.Repos.Sessions.ListByDevice(r.Context(), device)
	} else {
		sessions, err = h.Repos.Sessions.ListAll(r.Context(), true)
	}
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	page, err := views.Apply(explorer.SessionListSpec, explorer.SessionRows(sessions), q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Sessions fetched", page)
}

// GetSession godoc
// @Summary Session details with progress and timeline
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} utils.Payload{data=ota.SessionView}
// @Failure 404 {object} utils.Payload
// @Router /api/v1/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repos.Sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Session fetched", ota.BuildSessionView(*s, h.Config.Location()))
}
