package auth

import (
	"fmt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Hasher used when user does not provide it's own
var DefaultHasher PasswordHasher = BcryptHasher{}

// Interface to create or verify user password hashes
type PasswordHasher interface {
	// Generate salted hash from password
	// Fails with apperrors.ErrHashing
	Hash(password string) (string, error)

	// Verify user provided password against known hashedPassword
	// Mismatch is (false, nil); only primitive malfunction (e.g. corrupted hash) is apperrors.ErrVerification
	// Must be protected against timing attacks
	Verify(hashedPassword string, password string) (bool, error)
}

// Hasher by its name from config. Empty name is the default bcrypt hasher
func NewHasher(name string) (PasswordHasher, error) {
	switch name {
	case HasherBcrypt, "":
		return DefaultHasher, nil
	case HasherArgon2id:
		return NewArgon2Hasher(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
