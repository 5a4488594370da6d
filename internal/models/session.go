package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
	StatusInProgress SessionStatus = "in-progress"
	StatusRunning    SessionStatus = "running"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusInProgress, StatusRunning:
		return true
	}
	return false
}

// Active reports whether the session has not ended yet.
func (s SessionStatus) Active() bool {
	return s == StatusInProgress || s == StatusRunning
}

type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

func (s Slot) Valid() bool { return s == SlotA || s == SlotB }

// Other returns the inactive slot.
func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

type EventType string

const (
	EventDownload     EventType = "download"
	EventUpdate       EventType = "update"
	EventReboot       EventType = "reboot"
	EventError        EventType = "error"
	EventSessionStart EventType = "sessionStart"
)

func (t EventType) Valid() bool {
	switch t {
	case EventDownload, EventUpdate, EventReboot, EventError, EventSessionStart:
		return true
	}
	return false
}

// OtaSession is one attempted firmware update run on a device.
type OtaSession struct {
	ID               string        `json:"id" gorm:"primaryKey;size:64"`
	DeviceID         string        `json:"deviceId" gorm:"index;size:128;not null"`
	UserID           string        `json:"userId" gorm:"size:64"`
	StartedAt        time.Time     `json:"startedAt" gorm:"index;not null"`
	EndedAt          *time.Time    `json:"endedAt"`
	Status           SessionStatus `json:"status" gorm:"size:32;index;not null"`
	SlotSelected     Slot          `json:"slotSelected" gorm:"size:1"`
	PreSlot          Slot          `json:"preSlot" gorm:"size:1"`
	CurrentSlotAfter Slot          `json:"currentSlotAfter" gorm:"size:1"`
	SourcePath       string        `json:"sourcePath"`
	Files            []string      `json:"files" gorm:"serializer:json"`
	FileSize         int64         `json:"fileSize"`
	ChunkSize        int64         `json:"chunkSize"`
	ErrorCode        *string       `json:"errorCode"`
	AppVersion       string        `json:"appVersion" gorm:"size:64"`
	DeviceName       string        `json:"deviceName" gorm:"size:128"`
	Events           []OtaEvent    `json:"events,omitempty" gorm:"foreignKey:SessionID"`
}

func (s *OtaSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// OtaEvent is a timestamped occurrence within a session. Ordering is by At only.
type OtaEvent struct {
	ID              string    `json:"id" gorm:"primaryKey;size:64"`
	SessionID       string    `json:"sessionId" gorm:"index;size:64;not null"`
	Type            EventType `json:"type" gorm:"size:32;not null"`
	At              time.Time `json:"at" gorm:"index;not null"`
	Slot            Slot      `json:"slot" gorm:"size:1"`
	FileID          *string   `json:"fileId,omitempty"`
	Percent         *int      `json:"percent,omitempty"`
	ProcessedChunks *int      `json:"processedChunks,omitempty"`
	TotalChunks     *int      `json:"totalChunks,omitempty"`
	Message         string    `json:"message"`
}

func (e *OtaEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// SlotHistory records a slot flip. It is stored but not surfaced in any view.
type SlotHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DeviceID  string    `json:"deviceId" gorm:"index;size:128"`
	FromSlot  Slot      `json:"fromSlot" gorm:"size:1"`
	ToSlot    Slot      `json:"toSlot" gorm:"size:1"`
	Reason    string    `json:"reason"`
	SessionID string    `json:"sessionId" gorm:"index;size:64"`
	At        time.Time `json:"at"`
}

func (SlotHistory) TableName() string { return "slot_history" }
