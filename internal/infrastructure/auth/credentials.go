package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/vesti/backend/internal/infrastructure/config"
)

// ErrInvalidCredentials indicates a failed login attempt
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks admin login credentials against the configured
// account. The password is stored as a bcrypt hash, never in clear text.
type CredentialVerifier struct {
	username     string
	passwordHash []byte
}

// NewCredentialVerifier creates a verifier for the configured admin account
func NewCredentialVerifier(cfg config.AdminConfig) *CredentialVerifier {
	return &CredentialVerifier{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
	}
}

// Verify checks a username and password pair. Both checks always run so a
// failed username does not return faster than a failed password.
func (v *CredentialVerifier) Verify(username, password string) error {
	if v.username == "" || len(v.passwordHash) == 0 {
		return ErrInvalidCredentials
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(v.username), []byte(username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password))

	if !usernameMatch || passwordErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword generates a bcrypt hash for an admin password.
// Used by the setup tooling, not at request time.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
