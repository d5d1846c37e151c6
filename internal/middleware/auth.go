package middleware

import (
	"net/http"
	"strings"

	"tutor-service/internal/model"
	"tutor-service/pkg/jwtutil"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the JWT token and extracts claims
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Track authentication attempts
		prometheus.AuthAttemptsCounter.Inc()

		// Extract the token from the Authorization header
		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}

		// Increment successful auth counter
		prometheus.AuthSuccessCounter.Inc()

		// Store the principal in the context
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		// Update logger with user information
		log = log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("email", claims.Email),
			zap.String("role", claims.Role),
		)
		c.Set("logger", log)

		// Call the next handler
		return next(c)
	}
}

// RequireProfessor ensures the authenticated principal has the PROFESSOR role
func RequireProfessor(next echo.HandlerFunc) echo.HandlerFunc {
	return requireRole(model.RoleProfessor, next)
}

// RequireClient ensures the authenticated principal has the CLIENT role
func RequireClient(next echo.HandlerFunc) echo.HandlerFunc {
	return requireRole(model.RoleClient, next)
}

func requireRole(role model.Role, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		current, ok := c.Get("role").(string)
		if !ok || current != string(role) {
			log.Warn("Wrong role for this resource",
				zap.String("have", current),
				zap.String("want", string(role)))
			prometheus.RecordAuthError("wrong_role")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}

		return next(c)
	}
}
