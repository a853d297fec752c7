package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session represents a browser session with generic data storage.
// The Data type parameter carries page-specific state such as a pending
// verification email.
type Session[Data any] struct {
	// ID is the stable session identifier; it never changes during the session lifecycle.
	ID uuid.UUID `json:"id"`

	// Token is the cryptographically secure session token (32 bytes base64url).
	// Used as the cookie value.
	Token string `json:"token"`

	// AuthToken is the bearer token issued by the backend on login.
	// Empty for anonymous sessions.
	AuthToken string `json:"auth_token,omitempty"`

	// Email of the signed-in account.
	Email string `json:"email,omitempty"`

	IP        string `json:"ip"`
	UserAgent string `json:"user_agent,omitempty"`

	Data Data `json:"data"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt time.Time `json:"deleted_at,omitzero"`

	isModified bool
}

// NewSessionParams contains parameters for creating a new session.
type NewSessionParams struct {
	IP        string
	UserAgent string
}

// New creates a new anonymous session with generated token and ID.
// The session is marked as modified and ready to be saved.
func New[Data any](params NewSessionParams, ttl time.Duration) (Session[Data], error) {
	if params.IP == "" {
		return Session[Data]{}, ErrMissingIP
	}

	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session[Data]{
		ID:         uuid.New(),
		Token:      token,
		IP:         params.IP,
		UserAgent:  params.UserAgent,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
		isModified: true,
	}, nil
}

// Authenticate stores the backend token on the session and rotates the
// session token. The session ID is preserved.
// A non-zero expiresAt shortens the session lifetime to the token's own expiry.
func (s *Session[Data]) Authenticate(authToken, email string, expiresAt time.Time) error {
	if authToken == "" {
		return ErrNotAuthenticated
	}
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.AuthToken = authToken
	s.Email = email
	if !expiresAt.IsZero() && expiresAt.Before(s.ExpiresAt) {
		s.ExpiresAt = expiresAt
	}
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Refresh rotates the session token without changing authentication state or session ID.
func (s *Session[Data]) Refresh() error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Logout drops the backend token and marks the session for deletion.
func (s *Session[Data]) Logout() {
	s.AuthToken = ""
	s.Email = ""
	s.DeletedAt = time.Now()
	s.isModified = true
}

// SetData updates the session's custom data.
func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.UpdatedAt = time.Now()
	s.isModified = true
}

// Touch extends the session expiration if the touch interval has elapsed.
// Authenticated sessions never outlive their backend token.
func (s *Session[Data]) Touch(ttl, touchInterval time.Duration) {
	if time.Since(s.UpdatedAt) < touchInterval {
		return
	}
	expiresAt := time.Now().Add(ttl)
	if exp, ok := TokenExpiry(s.AuthToken); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	s.ExpiresAt = expiresAt
	s.UpdatedAt = time.Now()
	s.isModified = true
}

// IsAuthenticated reports whether the session holds a backend token.
func (s Session[Data]) IsAuthenticated() bool {
	return s.AuthToken != "" && s.Token != ""
}

// IsDeleted returns true if the session is marked for deletion.
func (s Session[Data]) IsDeleted() bool {
	return !s.DeletedAt.IsZero()
}

// IsModified returns true if the session has been modified and needs saving.
func (s Session[Data]) IsModified() bool {
	return s.isModified
}

// IsExpired returns true if the session has expired.
func (s Session[Data]) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session[Data]) rotateToken() error {
	newToken, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	s.Token = newToken
	s.isModified = true
	return nil
}

// generateToken creates a random token from 32 bytes encoded as unpadded base64url.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
