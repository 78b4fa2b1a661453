package models

import "time"

type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageFile  MessageKind = "file"
)

func (k MessageKind) Valid() bool {
	switch k {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

type ReactionKind string

const (
	ReactLike  ReactionKind = "like"
	ReactLove  ReactionKind = "love"
	ReactLaugh ReactionKind = "laugh"
	ReactAngry ReactionKind = "angry"
	ReactSad   ReactionKind = "sad"
	ReactWow   ReactionKind = "wow"
)

func (k ReactionKind) Valid() bool {
	switch k {
	case ReactLike, ReactLove, ReactLaugh, ReactAngry, ReactSad, ReactWow:
		return true
	}
	return false
}

type Reaction struct {
	UserID    string       `bson:"user_id" json:"user_id"`
	Kind      ReactionKind `bson:"kind" json:"kind"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
}

type ReadReceipt struct {
	UserID string    `bson:"user_id" json:"user_id"`
	ReadAt time.Time `bson:"read_at" json:"read_at"`
}

type Message struct {
	ID             string        `bson:"_id,omitempty" json:"id"`
	ConversationID string        `bson:"conversation_id" json:"conversation_id"`
	SenderID       string        `bson:"sender_id" json:"sender_id"`
	Kind           MessageKind   `bson:"kind" json:"kind"`
	Content        string        `bson:"content" json:"content"`
	ReplyTo        string        `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	Edited         bool          `bson:"is_edited" json:"is_edited"`
	EditedAt       *time.Time    `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	Reactions      []Reaction    `bson:"reactions" json:"reactions"`
	ReadBy         []ReadReceipt `bson:"read_by" json:"read_by"`
	// Version guards reaction replacement: replace is read-modify-write, so
	// writers compare-and-swap on it.
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
