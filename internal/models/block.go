package models

import "time"

// Block records that blocker no longer wants contact with blocked. A single
// row in either direction is enough to stop message exchange; the record
// itself is never mirrored.
type Block struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	BlockerID string    `bson:"blocker_id" json:"blocker_id"`
	BlockedID string    `bson:"blocked_id" json:"blocked_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
