// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package notification implements the user-facing notification feed.

Notifications are emitted as best-effort side effects of social
activity. Emission never fails the action that triggered it, and an
equivalent notification (same type, actor, recipient, target) inside a
rolling 24-hour window is stored only once.
*/
package notification

import "time"

// # Domain Enums

// Type tags a notification with the event that produced it.
type Type string

const (
	TypeReaction   Type = "reaction"
	TypeNewChapter Type = "new_chapter"
	TypeSystem     Type = "system"
)

// # Core Entity

// Notification is one feed entry addressed to a single user.
type Notification struct {
	ID      string `json:"id"`
	UserID  string `json:"-"`       // recipient
	ActorID string `json:"actor_id"` // the user whose action triggered it; "" for system
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// Target reference, e.g. ("title", <uuid>). Drives dedup and cascade
	// cleanup when the target is deleted.
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`

	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
