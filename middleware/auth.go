package middleware

import (
	"errors"
	"log/slog"

	"restaurant-api/auth"
	"restaurant-api/models"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// Authenticate resolves the bearer token into the current user when one is
// presented. It never rejects a request: handlers that need an identity
// answer 401 themselves.
func Authenticate(gw *store.Gateway, tokens *auth.Tokens, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}
		if _, err := tokens.Parse(raw); err != nil {
			logger.Debug("bearer token rejected", slog.Any("error", err))
			c.Next()
			return
		}

		// a token is valid only while it is the one stored on the account
		var user models.User
		err := gw.Begin(c.Request.Context()).FindBy(&user, map[string]any{"api_token": raw})
		switch {
		case err == nil:
			c.Set(currentUserKey, &user)
		case errors.Is(err, store.ErrNotFound):
			logger.Debug("bearer token revoked")
		default:
			logger.Error("resolve current user", slog.Any("error", err))
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Authenticate, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}
