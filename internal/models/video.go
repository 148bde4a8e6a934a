package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID                uuid.UUID     `json:"id"`
	VideoFile         string        `json:"videoFile"`
	VideoPublicID     string        `json:"videoPublicId"`
	Thumbnail         string        `json:"thumbnail"`
	ThumbnailPublicID string        `json:"thumbnailPublicId"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Duration          float64       `json:"duration"`
	Views             int64         `json:"views"`
	IsPublished       bool          `json:"isPublished"`
	Owner             uuid.NullUUID `json:"owner"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}
