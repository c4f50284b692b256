// Package auth gates the dashboard behind a single email/password login.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials is returned when the email/password pair is rejected.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Session is an authenticated login.
type Session struct {
	Email string
	// AccessToken is the upstream token, empty for local logins.
	AccessToken string
	ExpiresAt   time.Time
}

// Authenticator signs users in and out.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, s Session) error
}

// Local checks logins against one configured admin account.
type Local struct {
	email    string
	password string
	ttl      time.Duration
	log      logrus.FieldLogger
}

// NewLocal returns an authenticator for the given admin credentials.
func NewLocal(email, password string, ttl time.Duration, logger logrus.FieldLogger) *Local {
	return &Local{
		email:    strings.TrimSpace(email),
		password: password,
		ttl:      ttl,
		log:      logger.WithField("component", "auth"),
	}
}

// SignInWithPassword compares in constant time. An unconfigured account rejects every login.
func (l *Local) SignInWithPassword(_ context.Context, email, password string) (Session, error) {
	if l.email == "" || l.password == "" {
		l.log.Warn("Login attempted but no admin account is configured")
		return Session{}, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(strings.ToLower(l.email))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(l.password)) == 1
	if !emailOK || !passOK {
		l.log.WithField("email", email).Warn("Rejected login")
		return Session{}, ErrInvalidCredentials
	}
	l.log.WithField("email", l.email).Info("User signed in")
	return Session{Email: l.email, ExpiresAt: time.Now().Add(l.ttl)}, nil
}

// SignOut has nothing to revoke locally.
func (l *Local) SignOut(_ context.Context, s Session) error {
	l.log.WithField("email", s.Email).Info("User signed out")
	return nil
}
