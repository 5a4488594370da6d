package ota

import (
	"sort"

	"github.com/rohits-web03/otadash/internal/models"
)

// Progress is the download progress reconstructed from the newest download event.
type Progress struct {
	Percent         int              `json:"percent"`
	ProcessedChunks *int             `json:"processedChunks,omitempty"`
	TotalChunks     *int             `json:"totalChunks,omitempty"`
	Event           *models.OtaEvent `json:"-"`
}

// CurrentProgress returns the percent of the download event with the latest
// timestamp. Events may be out of order. Equal timestamps keep the first
// one encountered. Percent is 0 when there is no download event or it has none.
func CurrentProgress(events []models.OtaEvent) Progress {
	var latest *models.OtaEvent
	for i := range events {
		e := &events[i]
		if e.Type != models.EventDownload {
			continue
		}
		if latest == nil || e.At.After(latest.At) {
			latest = e
		}
	}
	if latest == nil {
		return Progress{}
	}
	p := Progress{Event: latest, ProcessedChunks: latest.ProcessedChunks, TotalChunks: latest.TotalChunks}
	if latest.Percent != nil {
		p.Percent = *latest.Percent
	}
	return p
}

// TimelineEntry is one row of the event timeline.
type TimelineEntry struct {
	Event       models.OtaEvent `json:"event"`
	Icon        string          `json:"icon"`
	Danger      bool            `json:"danger"`
	ShowPercent bool            `json:"showPercent"`
}

var eventIcons = map[models.EventType]string{
	models.EventDownload:     "Download",
	models.EventUpdate:       "Sliders",
	models.EventReboot:       "Power",
	models.EventError:        "XCircle",
	models.EventSessionStart: "Play",
}

// Timeline orders events newest first. Equal timestamps keep their input order.
// The input slice is not modified.
func Timeline(events []models.OtaEvent) []TimelineEntry {
	sorted := make([]models.OtaEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.After(sorted[j].At)
	})

	out := make([]TimelineEntry, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, TimelineEntry{
			Event:       e,
			Icon:        eventIcons[e.Type],
			Danger:      e.Type == models.EventError,
			ShowPercent: e.Type == models.EventDownload && e.Percent != nil,
		})
	}
	return out
}
