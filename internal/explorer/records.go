package explorer

import (
	"time"

	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/views"
)

const (
	activeWindow = 30 * 24 * time.Hour
	onlineWindow = 5 * time.Minute
	awayWindow   = 15 * time.Minute
)

// UserRecord is the explorer shape of a user.
type UserRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Status    string      `json:"status"`
	LastLogin *time.Time  `json:"lastLogin"`
}

// UserRecords shapes users. A user is active when they signed in within the last 30 days.
func UserRecords(users []models.User, now time.Time) []UserRecord {
	out := make([]UserRecord, 0, len(users))
	for _, u := range users {
		status := "inactive"
		if u.LastLogin != nil && now.Sub(*u.LastLogin) < activeWindow {
			status = "active"
		}
		out = append(out, UserRecord{
			ID:        u.UID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Status:    status,
			LastLogin: u.LastLogin,
		})
	}
	return out
}

type DeviceRecord struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	LastSeen  *time.Time `json:"lastSeen"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DeviceRecords shapes devices, deriving online/away/offline from LastSeen.
func DeviceRecords(devices []models.Device, now time.Time) []DeviceRecord {
	out := make([]DeviceRecord, 0, len(devices))
	for _, d := range devices {
		out = append(out, DeviceRecord{
			ID:        d.Name,
			Status:    deviceStatus(d.LastSeen, now),
			LastSeen:  d.LastSeen,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

func deviceStatus(lastSeen *time.Time, now time.Time) string {
	if lastSeen == nil {
		return "offline"
	}
	switch since := now.Sub(*lastSeen); {
	case since < onlineWindow:
		return "online"
	case since < awayWindow:
		return "away"
	}
	return "offline"
}

var UserRecordSpec = views.Spec[UserRecord]{
	Name:     "explorer-users",
	PageSize: PageSize,
	Columns: []views.Column[UserRecord]{
		{Key: "id", Label: "ID", Value: func(r UserRecord) any { return r.ID }},
		{Key: "name", Label: "Name", Value: func(r UserRecord) any { return r.Name }},
		{Key: "email", Label: "Email", Value: func(r UserRecord) any { return r.Email }},
		{Key: "role", Label: "Role", Value: func(r UserRecord) any { return string(r.Role) }},
		{Key: "status", Label: "Status", Value: func(r UserRecord) any { return r.Status }},
		{Key: "lastLogin", Label: "Last Login", Value: func(r UserRecord) any { return r.LastLogin }},
	},
	DefaultSort:  "lastLogin",
	DefaultOrder: views.Desc,
}

var ProductSpec = views.Spec[models.Product]{
	Name:     "explorer-products",
	PageSize: PageSize,
	Columns: []views.Column[models.Product]{
		{Key: "id", Label: "ID", Value: func(p models.Product) any { return p.ID }},
		{Key: "name", Label: "Name", Value: func(p models.Product) any { return p.Name }},
		{Key: "category", Label: "Category", Value: func(p models.Product) any { return p.Category }},
		{Key: "price", Label: "Price", Value: func(p models.Product) any { return p.Price }},
		{Key: "stock", Label: "Stock", Value: func(p models.Product) any { return p.Stock }},
		{Key: "createdAt", Label: "Created At", Value: func(p models.Product) any { return p.CreatedAt }},
	},
	DefaultSort:  "createdAt",
	DefaultOrder: views.Desc,
}

var DeviceRecordSpec = views.Spec[DeviceRecord]{
	Name:     "explorer-devices",
	PageSize: PageSize,
	Columns: []views.Column[DeviceRecord]{
		{Key: "id", Label: "ID", Value: func(r DeviceRecord) any { return r.ID }},
		{Key: "status", Label: "Status", Value: func(r DeviceRecord) any { return r.Status }},
		{Key: "lastSeen", Label: "Last Seen", Value: func(r DeviceRecord) any { return r.LastSeen }},
		{Key: "createdAt", Label: "Created At", Value: func(r DeviceRecord) any { return r.CreatedAt }},
	},
	DefaultSort:  "lastSeen",
	DefaultOrder: views.Desc,
}
