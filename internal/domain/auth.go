package domain

import "time"

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Admin is an operator allowed to view and annotate tickets in every department.
type Admin struct {
	Email        string
	PasswordHash string
}

// Token represents issued access token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
