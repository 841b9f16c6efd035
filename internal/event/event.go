package event

import "time"

type Type string

const (
	TypeUserRegistered  Type = "user.registered"
	TypeLoginSucceeded  Type = "login.succeeded"
	TypeLoginFailed     Type = "login.failed"
	TypeTokenRefreshed  Type = "token.refreshed"
	TypeRefreshRejected Type = "token.refresh_rejected"
	TypeAccessDenied    Type = "access.denied"
)

type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	ActorID   string    `json:"actor_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
