package models

import "time"

type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGroup  ConversationKind = "group"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Participant is one membership row embedded in a conversation. A user who
// leaves keeps the row (left_at set); rejoining appends a fresh row.
type Participant struct {
	UserID   string     `bson:"user_id" json:"user_id"`
	Role     Role       `bson:"role" json:"role"`
	Muted    bool       `bson:"is_muted" json:"is_muted"`
	JoinedAt time.Time  `bson:"joined_at" json:"joined_at"`
	LeftAt   *time.Time `bson:"left_at" json:"left_at"`
}

type Conversation struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	Kind      ConversationKind `bson:"kind" json:"kind"`
	Name      string           `bson:"name,omitempty" json:"name,omitempty"`
	CreatedBy string           `bson:"created_by" json:"created_by"`
	// DirectKey is "smallID:largeID" for direct conversations and carries a
	// unique index, so two racing creates for the same pair collapse.
	DirectKey    string        `bson:"direct_key,omitempty" json:"-"`
	Participants []Participant `bson:"participants" json:"participants"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// LatestParticipation returns the most recent membership row for userID.
// Rows are appended in join order, so the last match wins.
func (c *Conversation) LatestParticipation(userID string) (*Participant, bool) {
	for i := len(c.Participants) - 1; i >= 0; i-- {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i], true
		}
	}
	return nil, false
}

// ActiveParticipant returns the user's membership row only if they have not
// left. The latest row is authoritative for a user who left and rejoined.
func (c *Conversation) ActiveParticipant(userID string) (*Participant, bool) {
	p, ok := c.LatestParticipation(userID)
	if !ok || p.LeftAt != nil {
		return nil, false
	}
	return p, true
}

// ActiveUserIDs lists users whose latest membership row is still open.
func (c *Conversation) ActiveUserIDs() []string {
	seen := make(map[string]bool, len(c.Participants))
	var ids []string
	for i := len(c.Participants) - 1; i >= 0; i-- {
		p := c.Participants[i]
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		if p.LeftAt == nil {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// DirectKeyFor builds the canonical pair key for a direct conversation.
func DirectKeyFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
