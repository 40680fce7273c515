package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppRelease is a published mobile/desktop app build with its download link.
// Releases live in the document store rather than Postgres.
type AppRelease struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Platform    string             `json:"platform" bson:"platform"`
	Version     string             `json:"version" bson:"version"`
	DownloadURL string             `json:"download_url" bson:"download_url"`
	Notes       string             `json:"notes" bson:"notes"`
	Active      bool               `json:"active" bson:"active"`
	ReleasedAt  time.Time          `json:"released_at" bson:"released_at"`
}
