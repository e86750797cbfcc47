package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"pharmacy-inventory-service/internal/models"
)

// Roles understood by the route gates. Tokens are issued by an external
// identity provider; this service only verifies and authorizes.
const (
	RoleViewer     = "viewer"
	RolePharmacist = "pharmacist"
	RoleManager    = "manager"
)

// Claims represents the JWT claims carried by a bearer token
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Authorization bearer token and stores the
// caller identity on the context
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "UNAUTHORIZED",
					Message: "Authorization header is required",
				},
				RequestID: GetRequestID(c),
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "UNAUTHORIZED",
					Message: "Authorization header must be a Bearer token",
				},
				RequestID: GetRequestID(c),
			})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "UNAUTHORIZED",
					Message: "Invalid or expired token",
				},
				RequestID: GetRequestID(c),
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Next()
	}
}

// RequireAnyRole allows the request through when the caller holds at least
// one of the given roles
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, exists := c.Get("user_roles")
		if !exists {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INSUFFICIENT_PERMISSIONS",
					Message: "No roles found in token",
				},
				RequestID: GetRequestID(c),
			})
			c.Abort()
			return
		}

		held, _ := userRoles.([]string)
		for _, required := range roles {
			for _, role := range held {
				if strings.EqualFold(role, required) {
					c.Next()
					return
				}
			}
		}

		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INSUFFICIENT_PERMISSIONS",
				Message: "Insufficient permissions for this operation",
			},
			RequestID: GetRequestID(c),
		})
		c.Abort()
	}
}
