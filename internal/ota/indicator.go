package ota

import "github.com/rohits-web03/otadash/internal/models"

type Category string

const (
	CategorySuccess Category = "success"
	CategoryFailure Category = "failure"
	CategoryWarning Category = "warning"
	CategoryNeutral Category = "neutral"
)

// Indicator is the visual treatment of a session status.
type Indicator struct {
	Category      Category `json:"category"`
	Icon          string   `json:"icon,omitempty"`
	Color         string   `json:"color,omitempty"`
	Badge         string   `json:"badge"`
	ShowsProgress bool     `json:"showsProgress"`
}

// Indicate maps a status to its indicator. in-progress and running share a
// treatment here only; everywhere else they stay distinct values.
func Indicate(status models.SessionStatus) Indicator {
	switch status {
	case models.StatusCompleted:
		return Indicator{Category: CategorySuccess, Icon: "CheckCircle", Color: "green", Badge: "default"}
	case models.StatusFailed:
		return Indicator{Category: CategoryFailure, Icon: "XCircle", Color: "red", Badge: "destructive"}
	case models.StatusInProgress, models.StatusRunning:
		return Indicator{Category: CategoryWarning, Icon: "AlertTriangle", Color: "yellow", Badge: "secondary", ShowsProgress: true}
	default:
		return Indicator{Category: CategoryNeutral, Badge: "outline"}
	}
}
