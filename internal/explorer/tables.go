package explorer

import (
	"context"

	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/ota"
	"github.com/rohits-web03/otadash/internal/views"
)

// Board view names of the dashboard tables.
const (
	ViewDevices  = "devices"
	ViewSessions = "sessions"
	ViewUsers    = "users"
)

// viewActions is the capability needed to see each board view.
var viewActions = map[string]auth.Action{
	ViewDevices:  auth.ViewDevices,
	ViewSessions: auth.ViewSessions,
	ViewUsers:    auth.ManageUsers,
	ViewName:     auth.ExploreData,
}

// ViewAction returns the capability required by the named board view.
func ViewAction(name string) (auth.Action, bool) {
	a, ok := viewActions[name]
	return a, ok
}

type SessionLister interface {
	ListAll(ctx context.Context, withEvents bool) ([]models.OtaSession, error)
}

var DeviceListSpec = views.Spec[models.Device]{
	Name:     ViewDevices,
	PageSize: 10,
	Columns: []views.Column[models.Device]{
		{Key: "id", Label: "Device ID", Value: func(d models.Device) any { return d.Name }},
		{Key: "lastSeen", Label: "Last Seen", Value: func(d models.Device) any { return d.LastSeen }},
	},
	FilterKeys:   []string{"id"},
	DefaultSort:  "id",
	DefaultOrder: views.Asc,
}

// SessionRow is a session list entry with its status indicator. Progress is
// set for sessions whose status shows progress and that have a download event.
type SessionRow struct {
	models.OtaSession
	Indicator ota.Indicator `json:"indicator"`
	Progress  *ota.Progress `json:"progress,omitempty"`
}

// SessionRows shapes sessions for the list and drops their events.
func SessionRows(sessions []models.OtaSession) []SessionRow {
	out := make([]SessionRow, 0, len(sessions))
	for _, s := range sessions {
		row := SessionRow{Indicator: ota.Indicate(s.Status)}
		if row.Indicator.ShowsProgress {
			if p := ota.CurrentProgress(s.Events); p.Event != nil {
				row.Progress = &p
			}
		}
		s.Events = nil
		row.OtaSession = s
		out = append(out, row)
	}
	return out
}

var SessionListSpec = views.Spec[SessionRow]{
	Name:     ViewSessions,
	PageSize: 10,
	Columns: []views.Column[SessionRow]{
		{Key: "deviceName", Label: "Device Name", Value: func(r SessionRow) any { return r.DeviceName }},
		{Key: "status", Label: "Status", Value: func(r SessionRow) any { return string(r.Status) }},
		{Key: "appVersion", Label: "App Version", Value: func(r SessionRow) any { return r.AppVersion }},
		{Key: "startedAt", Label: "Started At", Value: func(r SessionRow) any { return r.StartedAt }},
		{Key: "endedAt", Label: "Ended At", Value: func(r SessionRow) any { return r.EndedAt }},
		{Key: "errorCode", Label: "Error Code", Value: func(r SessionRow) any { return r.ErrorCode }},
		{Key: "id", Value: func(r SessionRow) any { return r.ID }, Hidden: true},
		{Key: "deviceId", Value: func(r SessionRow) any { return r.DeviceID }, Hidden: true},
		{Key: "userId", Value: func(r SessionRow) any { return r.UserID }, Hidden: true},
		{Key: "sourcePath", Value: func(r SessionRow) any { return r.SourcePath }, Hidden: true},
		{Key: "files", Value: func(r SessionRow) any { return r.Files }, Hidden: true},
	},
	DefaultSort:  "startedAt",
	DefaultOrder: views.Desc,
}

// UserRow is a user list entry. RoleEditable is false on the viewer's own row.
type UserRow struct {
	models.User
	RoleEditable bool `json:"roleEditable"`
}

func UserRows(users []models.User, viewerID string) []UserRow {
	out := make([]UserRow, 0, len(users))
	for _, u := range users {
		out = append(out, UserRow{User: u, RoleEditable: u.UID != viewerID})
	}
	return out
}

var UserListSpec = views.Spec[UserRow]{
	Name:     ViewUsers,
	PageSize: 10,
	Columns: []views.Column[UserRow]{
		{Key: "name", Label: "Name", Value: func(r UserRow) any { return r.Name }},
		{Key: "email", Label: "Email", Value: func(r UserRow) any { return r.Email }},
		{Key: "organization", Label: "Organization", Value: func(r UserRow) any { return r.Organization }},
		{Key: "role", Label: "Role", Value: func(r UserRow) any { return string(r.Role) }},
	},
	DefaultSort:  "email",
	DefaultOrder: views.Asc,
}

// Sources are the repositories behind the dashboard tables.
type Sources struct {
	Users    UserLister
	Products ProductLister
	Devices  DeviceLister
	Sessions SessionLister
}

func (src Sources) deviceRows(ctx context.Context) ([]models.Device, error) {
	return src.Devices.List(ctx)
}

func (src Sources) sessionRows(ctx context.Context) ([]SessionRow, error) {
	sessions, err := src.Sessions.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}
	return SessionRows(sessions), nil
}

// userRows marks the row of the signed-in viewer found in ctx.
func (src Sources) userRows(ctx context.Context) ([]UserRow, error) {
	users, err := src.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	var viewer string
	if s, ok := auth.FromContext(ctx); ok {
		viewer = s.UserID
	}
	return UserRows(users, viewer), nil
}

// BoardFactory builds a fresh board of every dashboard view for a new session.
func BoardFactory(src Sources) func() *views.Board {
	e := New(src.Users, src.Products, src.Devices)
	return func() *views.Board {
		return views.NewBoard(
			views.NewLive(DeviceListSpec, src.deviceRows),
			views.NewLive(SessionListSpec, src.sessionRows),
			views.NewLive(UserListSpec, src.userRows),
			NewCollections(e),
		)
	}
}
