package models

import "time"

// FolderMimeType is the sentinel stored in mime_type for folder rows.
const FolderMimeType = "folder"

type Node struct {
	ID           string    `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	ParentID     *string   `json:"parent_id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	FileURL      *string   `json:"file_url,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	IsFolder     bool      `json:"is_folder"`
	IsStarred    bool      `json:"is_starred"`
	IsTrashed    bool      `json:"is_trashed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
