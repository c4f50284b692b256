package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkdesk/internal/auth"
	"linkdesk/internal/validation"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *handlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := validation.Login(req.Email, req.Password).Err(); err != nil {
		h.writeError(c, err)
		return
	}

	session, err := h.Auth.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.Sessions.GenerateToken(session)
	if err != nil {
		h.log.WithError(err).Error("Failed to generate session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	ttl := h.Sessions.Expiration()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ttl.Seconds()), "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, Email: session.Email, ExpiresAt: time.Now().Add(ttl)})
}

func (h *handlers) logout(c *gin.Context) {
	if claims, ok := auth.GetClaims(c); ok {
		if err := h.Auth.SignOut(c.Request.Context(), claims.Session()); err != nil {
			h.log.WithError(err).Warn("Upstream sign out failed")
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.SecureCookies, true)
	c.Status(http.StatusNoContent)
}
