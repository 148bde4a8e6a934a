package models

import "time"

// ViewEvent is one counted view, as stored in the analytics database.
// ViewerID is empty for anonymous views.
type ViewEvent struct {
	VideoID  string    `ch:"video_id"`
	ViewerID string    `ch:"viewer_id"`
	ViewedAt time.Time `ch:"viewed_at"`
}
