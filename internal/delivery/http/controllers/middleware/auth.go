package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDCtx    = "client_id"
	ClientRolesCtx = "client_roles"

	// Browsers cannot set headers on a WebSocket handshake.
	accessTokenQuery = "access_token"
)

type AuthService interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query(accessTokenQuery)
	}
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to parse token", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}

	c.Set(ClientIDCtx, user.ID)
	c.Set(ClientRolesCtx, user.Roles)
	c.Next()
}

func bearerToken(header string) string {
	if parts := strings.Split(header, "Bearer "); len(parts) == 2 {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ClientID returns the authenticated user id set by AuthMiddleware.
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ClientIDCtx)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
