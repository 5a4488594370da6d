package ota

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rohits-web03/otadash/internal/models"
)

var (
	ErrUnknownStatus      = errors.New("unknown session status")
	ErrCompletedNotEnded  = errors.New("completed session has no end time")
	ErrSlotMismatch       = errors.New("completed session did not switch to the selected slot")
	ErrFailedNoErrorCode  = errors.New("failed session has no error code")
	ErrActiveEnded        = errors.New("active session has an end time")
	ErrProgressRegression = errors.New("download progress went backwards")
	ErrPercentRange       = errors.New("download percent out of range")
)

// CheckSession returns every status invariant the session violates.
func CheckSession(s models.OtaSession) []error {
	var errs []error
	switch s.Status {
	case models.StatusCompleted:
		if s.EndedAt == nil {
			errs = append(errs, ErrCompletedNotEnded)
		}
		if s.CurrentSlotAfter != s.SlotSelected {
			errs = append(errs, fmt.Errorf("%w: selected %s, now on %s", ErrSlotMismatch, s.SlotSelected, s.CurrentSlotAfter))
		}
	case models.StatusFailed:
		if s.ErrorCode == nil {
			errs = append(errs, ErrFailedNoErrorCode)
		}
	case models.StatusInProgress, models.StatusRunning:
		if s.EndedAt != nil {
			errs = append(errs, ErrActiveEnded)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStatus, s.Status))
	}
	return errs
}

// CheckDownloads verifies that download percent never decreases per file when
// events are ordered by time. Chunk counts are telemetry and are not checked.
func CheckDownloads(events []models.OtaEvent) []error {
	downloads := make([]models.OtaEvent, 0, len(events))
	for _, e := range events {
		if e.Type == models.EventDownload && e.Percent != nil {
			downloads = append(downloads, e)
		}
	}
	sort.SliceStable(downloads, func(i, j int) bool {
		return downloads[i].At.Before(downloads[j].At)
	})

	var errs []error
	last := map[string]int{}
	for _, e := range downloads {
		pct := *e.Percent
		if pct < 0 || pct > 100 {
			errs = append(errs, fmt.Errorf("%w: event %s has %d", ErrPercentRange, e.ID, pct))
		}
		key := ""
		if e.FileID != nil {
			key = *e.FileID
		}
		if prev, ok := last[key]; ok && pct < prev {
			errs = append(errs, fmt.Errorf("%w: file %q from %d to %d at event %s", ErrProgressRegression, key, prev, pct, e.ID))
		}
		last[key] = pct
	}
	return errs
}
