package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesti/backend/internal/infrastructure/auth"
	"github.com/vesti/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles admin authentication. There is a single admin
// account configured at deploy time; no user storage is involved.
type AuthHandler struct {
	BaseHandler
	credentials *auth.CredentialVerifier
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler. The blacklist is optional;
// without it logout is a no-op beyond token expiry.
func NewAuthHandler(credentials *auth.CredentialVerifier, jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		credentials: credentials,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}

// RegisterProtectedRoutes registers the auth routes that require a token
func (h *AuthHandler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.Me)
}

// LoginRequest carries admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login authenticates the admin account and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.credentials.Verify(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn("admin login rejected",
				zap.String("username", req.Username),
				zap.String("ip", c.ClientIP()))
			h.Unauthorized(c, "Invalid username or password")
			return
		}
		h.HandleError(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		h.InternalError(c, "Failed to issue token")
		return
	}

	h.logger.Info("admin login", zap.String("username", req.Username))
	h.Success(c, LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	})
}

// Logout revokes the current token for the remainder of its validity
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.blacklist != nil && claims.ID != "" {
		ttl := claims.RemainingValidity()
		if ttl > 0 {
			if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
				h.logger.Error("failed to revoke token",
					zap.String("jti", claims.ID),
					zap.Error(err))
				h.InternalError(c, "Failed to revoke token")
				return
			}
		}
	}

	h.Success(c, gin.H{"message": "Logged out"})
}

// MeResponse describes the authenticated admin
type MeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Me returns the authenticated admin identity
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	h.Success(c, MeResponse{
		Username: claims.Username,
		Role:     claims.Role,
	})
}
