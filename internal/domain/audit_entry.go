package domain

import "time"

const (
	AuditActionUserRegistered = "user_registered"
	AuditActionLoginSucceeded = "login_succeeded"
)

type AuditEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
