package middleware

import (
	"errors"
	"strings"
	"time"

	"registration-backend/config"
	"registration-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	userLocalKey    = "user"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized",
		"error":   message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Something went wrong",
		"error":   "An internal server error occurred.",
	})
}

// bearerToken returns the token from an "Authorization: Bearer" header.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// CurrentUser returns the token payload set by ProtectedRoute, or nil.
func CurrentUser(c *fiber.Ctx) *token.Payload {
	payload, _ := c.Locals(userLocalKey).(*token.Payload)
	return payload
}

// ProtectedRoute accepts an access token from the access_token cookie or a
// Bearer header. When it is missing or invalid, a refresh token cookie known
// to Redis is exchanged for a fresh pair and the old one is revoked.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			accessToken = bearerToken(c)
		}

		if accessToken != "" {
			payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
			if err == nil {
				c.Locals(userLocalKey, payload)
				return c.Next()
			}
			if errors.Is(err, token.ErrExpired) {
				config.Logger.Debug("Access token expired, trying refresh token")
			} else {
				config.Logger.Debug("Invalid access token encountered", zap.Error(err))
			}
		}

		refreshToken := c.Cookies("refresh_token")
		if refreshToken == "" || ctx.RedisClient == nil {
			return unauthorized(c, "Authentication required")
		}

		refreshPayload, err := ctx.PasetoMaker.VerifyToken(refreshToken)
		if err != nil {
			config.Logger.Debug("Refresh token verification failed", zap.Error(err))
			return unauthorized(c, "Session expired or invalid. Please log in again.")
		}

		redisKey := "refresh_token:" + refreshToken
		userID, err := ctx.RedisClient.Get(c.UserContext(), redisKey).Result()
		if errors.Is(err, redis.Nil) {
			config.Logger.Warn("Refresh token not found in Redis",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.String("email", refreshPayload.Email),
			)
			return unauthorized(c, "Session invalid. Please log in again.")
		} else if err != nil {
			config.Logger.Error("Error accessing Redis for refresh token validation", zap.Error(err))
			return internalError(c)
		}

		// Single use: the old refresh token is revoked before a new pair is issued.
		if err := ctx.RedisClient.Del(c.UserContext(), redisKey).Err(); err != nil {
			config.Logger.Warn("Error deleting old refresh token from Redis", zap.String("user_id", userID), zap.Error(err))
		}

		newAccessToken, err := ctx.PasetoMaker.CreateToken(refreshPayload.Email, accessTokenTTL)
		if err != nil {
			config.Logger.Error("Could not generate new access token", zap.String("user_id", userID), zap.Error(err))
			return internalError(c)
		}
		newRefreshToken, err := ctx.PasetoMaker.CreateToken(refreshPayload.Email, refreshTokenTTL)
		if err != nil {
			config.Logger.Error("Could not generate new refresh token", zap.String("user_id", userID), zap.Error(err))
			return internalError(c)
		}
		if err := ctx.RedisClient.Set(c.UserContext(), "refresh_token:"+newRefreshToken, userID, refreshTokenTTL).Err(); err != nil {
			config.Logger.Error("Error storing new refresh token in Redis", zap.String("user_id", userID), zap.Error(err))
			return internalError(c)
		}

		c.Cookie(ctx.cookie("access_token", newAccessToken, accessTokenTTL))
		c.Cookie(ctx.cookie("refresh_token", newRefreshToken, refreshTokenTTL))

		c.Locals(userLocalKey, refreshPayload)
		return c.Next()
	}
}

func (ctx *AppContext) cookie(name, value string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   ctx.SecureCookie,
		SameSite: "Lax",
		Path:     "/",
		Domain:   ctx.CookieDomain,
	}
}
