package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/storage"
)

// Remote signs in against the hosted backend's auth endpoints.
type Remote struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewRemote returns an authenticator for the project at baseURL.
func NewRemote(baseURL, apiKey string, client *http.Client, logger logrus.FieldLogger) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		log:     logger.WithField("component", "auth"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		Email string `json:"email"`
	} `json:"user"`
}

// SignInWithPassword posts to /auth/v1/token?grant_type=password.
func (r *Remote) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithError(err).Error("Auth backend unreachable")
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := storage.DecodeRESTError(resp)
		var restErr *storage.RESTError
		if errors.As(err, &restErr) && (restErr.Status == http.StatusBadRequest || restErr.Status == http.StatusUnauthorized) {
			r.log.WithField("email", email).Warn("Rejected login")
			return Session{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, restErr.Message)
		}
		r.log.WithError(err).Error("Sign in failed")
		return Session{}, fmt.Errorf("sign in: %w", err)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return Session{}, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return Session{}, errors.New("sign in: empty access token")
	}
	if tok.User.Email == "" {
		tok.User.Email = email
	}

	r.log.WithField("email", tok.User.Email).Info("User signed in")
	return Session{
		Email:       tok.User.Email,
		AccessToken: tok.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

// SignOut revokes the upstream token. Sessions without one are a no-op.
func (r *Remote) SignOut(ctx context.Context, s Session) error {
	if s.AccessToken == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/v1/logout", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := storage.DecodeRESTError(resp)
		r.log.WithError(err).Warn("Sign out failed")
		return fmt.Errorf("sign out: %w", err)
	}
	r.log.WithField("email", s.Email).Info("User signed out")
	return nil
}
