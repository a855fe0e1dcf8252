package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"kemahasiswaan_backend/internals/configs"
	helper "kemahasiswaan_backend/internals/helpers"
)

const expirySkew = 30 * time.Second

// now bisa diganti di test.
var now = time.Now

// AuthJWT memverifikasi token HMAC lalu mengisi locals user_id & userRole.
// Token diterbitkan layanan auth terpisah; di sini hanya verifikasi.
func AuthJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}
		if secret == "" {
			configs.Log.Error("❌ JWT_SECRET kosong, semua request ditolak")
			return helper.JsonError(c, fiber.StatusInternalServerError, "JWT_SECRET belum dikonfigurasi")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		_, err = parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			configs.Log.Debug("token ditolak", zap.Error(err))
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}

		if err := validateTokenExpiry(claims, now(), expirySkew); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid user ID in token")
		}

		c.Locals("user_id", userID.String())
		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}
