package models

import "time"

// Device is identified by its unique name.
type Device struct {
	Name      string       `json:"name" gorm:"primaryKey;size:128"`
	LastSeen  *time.Time   `json:"lastSeen"`
	CreatedAt time.Time    `json:"createdAt" gorm:"autoCreateTime"`
	Sessions  []OtaSession `json:"sessions,omitempty" gorm:"foreignKey:DeviceID;references:Name"`
}
