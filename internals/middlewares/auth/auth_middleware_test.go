package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "rahasia-test"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthJWT(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "role": c.Locals("userRole")})
	})
	app.Get("/admin", AuthJWT(testSecret), OnlyRoles("khusus staf", "admin", "kemahasiswaan"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func do(t *testing.T, app *fiber.App, path, bearer string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthJWT_ValidToken(t *testing.T) {
	uid := uuid.New()
	tok := signToken(t, testSecret, jwt.MapClaims{
		"id":   uid.String(),
		"role": "Mahasiswa",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	status, body := do(t, newApp(), "/me", tok)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, uid.String())
	assert.Contains(t, body, `"role":"mahasiswa"`)
}

func TestAuthJWT_CookieFallback(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Cookie", "access_token="+tok)
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthJWT_Rejects(t *testing.T) {
	cases := map[string]string{
		"no token":     "",
		"wrong secret": signToken(t, "lain", jwt.MapClaims{"id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()}),
		"expired":      signToken(t, testSecret, jwt.MapClaims{"id": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix()}),
		"no exp":       signToken(t, testSecret, jwt.MapClaims{"id": uuid.NewString()}),
		"bad user id":  signToken(t, testSecret, jwt.MapClaims{"id": "bukan-uuid", "exp": time.Now().Add(time.Hour).Unix()}),
		"garbage":      "abc.def.ghi",
	}
	app := newApp()
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			status, _ := do(t, app, "/me", tok)
			assert.Equal(t, fiber.StatusUnauthorized, status)
		})
	}
}

func TestAuthJWT_ExpirySkew(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	})
	status, _ := do(t, newApp(), "/me", tok)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestOnlyRoles(t *testing.T) {
	app := newApp()
	exp := time.Now().Add(time.Hour).Unix()

	staff := signToken(t, testSecret, jwt.MapClaims{"id": uuid.NewString(), "role": "kemahasiswaan", "exp": exp})
	status, _ := do(t, app, "/admin", staff)
	assert.Equal(t, fiber.StatusOK, status)

	student := signToken(t, testSecret, jwt.MapClaims{"id": uuid.NewString(), "role": "mahasiswa", "exp": exp})
	status, body := do(t, app, "/admin", student)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "khusus staf")

	noRole := signToken(t, testSecret, jwt.MapClaims{"id": uuid.NewString(), "exp": exp})
	status, _ = do(t, app, "/admin", noRole)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
