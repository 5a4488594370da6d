package models

import "time"

type StorageFileType string

const (
	StorageTypeFile   StorageFileType = "file"
	StorageTypeFolder StorageFileType = "folder"
)

// StorageFile is a node of the blob store hierarchy. Folders are synthesized
// from prefixes and carry fetch-time timestamps.
type StorageFile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Path      string          `json:"path"`
	Size      int64           `json:"size"`
	Type      StorageFileType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
