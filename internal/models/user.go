package models

import "github.com/google/uuid"

const (
	AuthorRole  = "author"
	LearnerRole = "learner"
)

// User is the identity carried by a verified access token. Accounts live in
// the external identity service.
type User struct {
	ID    uuid.UUID
	Roles []string
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
