package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const devUserHeader = "X-User-ID"

// IdentityResolver maps an incoming request to a local user
type IdentityResolver interface {
	Resolve(c *gin.Context) (*models.User, error)
}

// CasdoorIdentityResolver validates casdoor JWTs and provisions the matching local user
type CasdoorIdentityResolver struct {
	client      *casdoorsdk.Client
	userService services.UserService
}

func NewCasdoorIdentityResolver(cfg config.CasdoorConfig, userService services.UserService) *CasdoorIdentityResolver {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorIdentityResolver{
		client:      client,
		userService: userService,
	}
}

func (r *CasdoorIdentityResolver) Resolve(c *gin.Context) (*models.User, error) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := r.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", services.ErrUnauthorized, err)
	}

	return r.userService.ProvisionFromIdentity(c.Request.Context(), identityFromClaims(claims))
}

func identityFromClaims(claims *casdoorsdk.Claims) services.Identity {
	return services.Identity{
		Username: claims.User.Name,
		Email:    claims.User.Email,
		FullName: claims.User.DisplayName,
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: authorization header missing", services.ErrUnauthorized)
	}

	tokenParts := strings.Split(header, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", services.ErrUnauthorized)
	}
	return tokenParts[1], nil
}

// HeaderIdentityResolver trusts an X-User-ID header. Development only.
type HeaderIdentityResolver struct {
	userService services.UserService
}

func NewHeaderIdentityResolver(userService services.UserService) *HeaderIdentityResolver {
	return &HeaderIdentityResolver{userService: userService}
}

func (r *HeaderIdentityResolver) Resolve(c *gin.Context) (*models.User, error) {
	raw := c.GetHeader(devUserHeader)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s header missing", services.ErrUnauthorized, devUserHeader)
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: invalid %s header", services.ErrUnauthorized, devUserHeader)
	}

	user, err := r.userService.GetByID(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: unknown user", services.ErrUnauthorized)
	}
	return user, err
}

// NewIdentityResolver picks casdoor when configured. Outside development an
// unconfigured casdoor is a startup error.
func NewIdentityResolver(cfg *config.Config, userService services.UserService) (IdentityResolver, error) {
	if cfg.Casdoor.Enabled() {
		return NewCasdoorIdentityResolver(cfg.Casdoor, userService), nil
	}
	if cfg.IsDevelopment() {
		return NewHeaderIdentityResolver(userService), nil
	}
	return nil, errors.New("casdoor is not configured; set CASDOOR_ENDPOINT and CASDOOR_CERTIFICATE")
}

// AuthMiddleware provides authentication through an IdentityResolver
type AuthMiddleware struct {
	resolver IdentityResolver
	logger   utils.Logger
}

func NewAuthMiddleware(resolver IdentityResolver, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate sets user_id, user and is_admin on the context or aborts with 401
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := am.resolver.Resolve(c)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) && !errors.Is(err, services.ErrValidationFailed) {
				// Storage or provisioning failure, not the caller's fault
				utils.GetLogger(c, am.logger).Error("Failed to resolve identity", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "failed to resolve identity",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "unauthorized",
				Details: err.Error(),
			})
			return
		}

		c.Set(contextUserID, user.ID)
		c.Set(contextUser, user)
		c.Set(contextIsAdmin, user.IsAdmin)

		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user is an admin
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(contextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "forbidden",
				Details: "admin access required",
			})
			return
		}
		c.Next()
	}
}
