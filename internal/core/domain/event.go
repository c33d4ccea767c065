package domain

import "time"

// AuthEventType names an outcome of an authentication workflow.
type AuthEventType string

const (
	EventRegistered       AuthEventType = "registered"
	EventRegisterRejected AuthEventType = "register_rejected"
	EventLoginSucceeded   AuthEventType = "login_succeeded"
	EventLoginFailed      AuthEventType = "login_failed"
	EventLogout           AuthEventType = "logout"
)

// AuthEvent is a single entry of the authentication audit trail.
// Subject is the identifier the client presented, so failed logins for
// unknown accounts are still attributable.
type AuthEvent struct {
	ID         string
	Type       AuthEventType
	Subject    string
	UserID     string
	Mode       LoginMode
	OccurredAt time.Time
}
