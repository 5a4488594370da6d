package ota

import (
	"strings"
	"time"

	"github.com/rohits-web03/otadash/internal/models"
)

const displayLayout = "2006-01-02 15:04:05 MST"

// Detail is a labelled value on the session details card.
type Detail struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Value string `json:"value"`
}

// SessionView is everything the session details page renders.
type SessionView struct {
	Session   models.OtaSession `json:"session"`
	Indicator Indicator         `json:"indicator"`
	Details   []Detail          `json:"details"`
	Progress  *Progress         `json:"progress"`
	Timeline  []TimelineEntry   `json:"timeline"`
	Anomalies []string          `json:"anomalies,omitempty"`
}

// BuildSessionView derives the details page for s. Times are formatted in loc.
// The progress card is present only for an active session with at least one
// download event.
func BuildSessionView(s models.OtaSession, loc *time.Location) SessionView {
	if loc == nil {
		loc = time.UTC
	}
	ind := Indicate(s.Status)
	view := SessionView{
		Session:   s,
		Indicator: ind,
		Details:   details(s, loc),
		Timeline:  Timeline(s.Events),
	}
	view.Session.Events = nil

	if ind.ShowsProgress {
		if p := CurrentProgress(s.Events); p.Event != nil {
			view.Progress = &p
		}
	}

	for _, err := range CheckSession(s) {
		view.Anomalies = append(view.Anomalies, err.Error())
	}
	for _, err := range CheckDownloads(s.Events) {
		view.Anomalies = append(view.Anomalies, err.Error())
	}
	return view
}

func details(s models.OtaSession, loc *time.Location) []Detail {
	ended := "N/A"
	if s.EndedAt != nil {
		ended = s.EndedAt.In(loc).Format(displayLayout)
	}
	errorCode := "None"
	if s.ErrorCode != nil {
		errorCode = *s.ErrorCode
	}
	return []Detail{
		{Label: "Device Name", Icon: "Server", Value: s.DeviceName},
		{Label: "App Version", Icon: "GitBranch", Value: s.AppVersion},
		{Label: "Source Path", Icon: "FileText", Value: s.SourcePath},
		{Label: "Started At", Icon: "Calendar", Value: s.StartedAt.In(loc).Format(displayLayout)},
		{Label: "Ended At", Icon: "Clock", Value: ended},
		{Label: "Error Code", Icon: "Hash", Value: errorCode},
		{Label: "Pre-Update Slot", Icon: "Layers", Value: string(s.PreSlot)},
		{Label: "Post-Update Slot", Icon: "Layers", Value: string(s.CurrentSlotAfter)},
		{Label: "Files", Icon: "FileStack", Value: strings.Join(s.Files, ", ")},
	}
}
