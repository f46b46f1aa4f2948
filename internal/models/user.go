package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	HashedPassword string

	// Current session epoch. Regenerated on every login, rotation and logout
	// Refresh tokens issued for other epoch must be rejected
	SessionID uuid.UUID

	// Who provisioned the account; nil for self-created or bootstrap accounts
	CreatedBy *uuid.UUID
}

// Transport slot holding one token on the client side (cookie name and scope)
type Carrier struct {
	Name   string
	Path   string
	Domain string
}
