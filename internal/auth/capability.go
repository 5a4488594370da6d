package auth

import (
	"sort"
	"strings"

	"github.com/rohits-web03/otadash/internal/models"
)

// Action is something a role may be allowed to do.
type Action string

const (
	ViewDashboard    Action = "view-dashboard"
	ViewDevices      Action = "view-devices"
	ViewSessions     Action = "view-sessions"
	BrowseStorage    Action = "browse-storage"
	DownloadFirmware Action = "download-firmware"
	ExploreData      Action = "explore-data"
	SummarizeData    Action = "summarize-data"
	EditOwnProfile   Action = "edit-profile"
	ManageUsers      Action = "manage-users"
	UploadFirmware   Action = "upload-firmware"
	DeleteFirmware   Action = "delete-firmware"
	CreateFolder     Action = "create-folder"
)

var managerActions = []Action{
	ViewDashboard, ViewDevices, ViewSessions, BrowseStorage, DownloadFirmware,
	ExploreData, SummarizeData, EditOwnProfile,
}

// capabilities is keyed by (role, action). A missing entry means denied.
var capabilities = func() map[models.Role]map[Action]bool {
	table := map[models.Role]map[Action]bool{
		models.RoleUnauthorized: {},
		models.RoleManager:      {},
		models.RoleAdmin:        {},
	}
	for _, a := range managerActions {
		table[models.RoleManager][a] = true
		table[models.RoleAdmin][a] = true
	}
	for _, a := range []Action{ManageUsers, UploadFirmware, DeleteFirmware, CreateFolder} {
		table[models.RoleAdmin][a] = true
	}
	return table
}()

// Can reports whether role may perform a.
func Can(role models.Role, a Action) bool {
	return capabilities[role][a]
}

// Capabilities lists the actions granted to role, sorted.
func Capabilities(role models.Role) []Action {
	out := make([]Action, 0, len(capabilities[role]))
	for a, ok := range capabilities[role] {
		if ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Route is a dashboard page and the action needed to view it.
type Route struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Action Action `json:"action"`
}

var Routes = []Route{
	{Path: "/dashboard", Label: "Dashboard", Action: ViewDashboard},
	{Path: "/dashboard/devices", Label: "Devices", Action: ViewDevices},
	{Path: "/dashboard/sessions", Label: "Sessions", Action: ViewSessions},
	{Path: "/dashboard/storage", Label: "Storage", Action: BrowseStorage},
	{Path: "/dashboard/firestore", Label: "Firestore", Action: ExploreData},
	{Path: "/dashboard/users", Label: "Users", Action: ManageUsers},
	{Path: "/dashboard/mypage", Label: "My Page", Action: EditOwnProfile},
}

// RouteFor returns the most specific route that contains path.
func RouteFor(path string) (Route, bool) {
	path = "/" + strings.Trim(path, "/")
	var best Route
	found := false
	for _, r := range Routes {
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			if !found || len(r.Path) > len(best.Path) {
				best, found = r, true
			}
		}
	}
	return best, found
}

// Navigation returns the routes role may open, for building the sidebar.
func Navigation(role models.Role) []Route {
	var out []Route
	for _, r := range Routes {
		if Can(role, r.Action) {
			out = append(out, r)
		}
	}
	return out
}
