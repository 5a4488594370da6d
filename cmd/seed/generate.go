package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rohits-web03/otadash/internal/models"
)

type options struct {
	Devices           int
	SessionsPerDevice int
	Products          int
}

type seedSession struct {
	session models.OtaSession
	history []models.SlotHistory
}

type dataset struct {
	devices  []models.Device
	sessions []seedSession
	products []models.Product
}

var statusCycle = []models.SessionStatus{
	models.StatusCompleted,
	models.StatusFailed,
	models.StatusInProgress,
	models.StatusRunning,
}

var errorCodes = []string{"E_VERIFY_FAILED", "E_DOWNLOAD_TIMEOUT", "E_FLASH_WRITE", "E_LOW_BATTERY"}

var productCategories = []string{"sensor", "gateway", "controller", "accessory"}

const chunkSize = 4096

// generate builds a demo dataset. Only the newest session of a device may be
// active; older ones are completed or failed.
func generate(rng *rand.Rand, now time.Time, opts options) dataset {
	var ds dataset
	for i := range opts.Devices {
		name := fmt.Sprintf("esp32-node-%02d", i+1)
		seen := now.Add(-time.Duration(rng.IntN(180)) * time.Minute)
		ds.devices = append(ds.devices, models.Device{Name: name, LastSeen: &seen})

		slot := models.SlotA
		for j := opts.SessionsPerDevice - 1; j >= 0; j-- {
			status := statusCycle[(i+j)%len(statusCycle)]
			if j > 0 && status.Active() {
				status = models.StatusCompleted
			}
			started := now.Add(-time.Duration(j)*24*time.Hour - time.Duration(rng.IntN(600))*time.Minute)
			ss := buildSession(rng, name, status, slot, started, i, j)
			slot = ss.session.CurrentSlotAfter
			ds.sessions = append(ds.sessions, ss)
		}
	}

	for i := range opts.Products {
		ds.products = append(ds.products, models.Product{
			Name:      fmt.Sprintf("Demo product %d", i+1),
			Category:  productCategories[i%len(productCategories)],
			Price:     float64(rng.IntN(20000)) / 100,
			Stock:     rng.IntN(120),
			CreatedAt: now.Add(-time.Duration(rng.IntN(90*24)) * time.Hour),
		})
	}
	return ds
}

func buildSession(rng *rand.Rand, device string, status models.SessionStatus, pre models.Slot, started time.Time, i, j int) seedSession {
	version := fmt.Sprintf("1.%d.%d", i%3, j)
	files := []string{"app.bin", "bootloader.bin"}
	fileSize := int64(256+rng.IntN(768)) * 1024

	s := models.OtaSession{
		DeviceID:     device,
		DeviceName:   device,
		UserID:       "seed",
		StartedAt:    started,
		Status:       status,
		PreSlot:      pre,
		SlotSelected: pre.Other(),
		SourcePath:   fmt.Sprintf("OTA/ver%s/", version),
		Files:        files,
		FileSize:     fileSize,
		ChunkSize:    chunkSize,
		AppVersion:   version,
	}

	target := 100
	switch status {
	case models.StatusFailed:
		target = 30 + rng.IntN(60)
	case models.StatusInProgress, models.StatusRunning:
		target = 10 + rng.IntN(80)
	}

	at := started
	step := func() time.Time {
		at = at.Add(time.Duration(5+rng.IntN(40)) * time.Second)
		return at
	}
	s.Events = append(s.Events, models.OtaEvent{Type: models.EventSessionStart, At: at, Slot: pre, Message: "OTA session started"})
	s.Events = append(s.Events, downloads(rng, files[0], fileSize, target, pre.Other(), step)...)

	var history []models.SlotHistory
	switch status {
	case models.StatusCompleted:
		s.Events = append(s.Events,
			models.OtaEvent{Type: models.EventUpdate, At: step(), Slot: s.SlotSelected, Message: "Image written to slot " + string(s.SlotSelected)},
			models.OtaEvent{Type: models.EventReboot, At: step(), Slot: s.SlotSelected, Message: "Rebooting into new firmware"},
		)
		ended := step()
		s.EndedAt = &ended
		s.CurrentSlotAfter = s.SlotSelected
		history = append(history, models.SlotHistory{
			DeviceID: device,
			FromSlot: pre,
			ToSlot:   s.SlotSelected,
			Reason:   "ota-success",
			At:       ended,
		})
	case models.StatusFailed:
		code := errorCodes[rng.IntN(len(errorCodes))]
		s.Events = append(s.Events, models.OtaEvent{Type: models.EventError, At: step(), Slot: pre, Message: "Update aborted: " + code})
		ended := step()
		s.EndedAt = &ended
		s.ErrorCode = &code
		s.CurrentSlotAfter = pre
	default:
		s.CurrentSlotAfter = pre
	}
	return seedSession{session: s, history: history}
}

// downloads emits monotonically increasing progress up to target percent.
func downloads(rng *rand.Rand, fileID string, fileSize int64, target int, slot models.Slot, next func() time.Time) []models.OtaEvent {
	total := int((fileSize + chunkSize - 1) / chunkSize)
	var out []models.OtaEvent
	for pct := 0; ; {
		pct = min(pct+5+rng.IntN(20), target)
		percent, processed, chunks := pct, total*pct/100, total
		out = append(out, models.OtaEvent{
			Type:            models.EventDownload,
			At:              next(),
			Slot:            slot,
			FileID:          &fileID,
			Percent:         &percent,
			ProcessedChunks: &processed,
			TotalChunks:     &chunks,
			Message:         fmt.Sprintf("Downloading %s", fileID),
		})
		if pct >= target {
			return out
		}
	}
}
