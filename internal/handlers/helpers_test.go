package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/colisync/internal/config"
	"github.com/example/colisync/internal/database"
	"github.com/example/colisync/internal/middleware"
	"github.com/example/colisync/internal/models"
	"github.com/example/colisync/internal/routes"
	"github.com/example/colisync/internal/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppPort:      "0",
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		SiteURL:      "http://localhost:3000",
		OTPExpires:   10 * time.Minute,
		UploadDir:    t.TempDir(),
	}

	app := fiber.New(fiber.Config{ErrorHandler: routes.ErrorHandler(cfg)})
	routes.Register(app, db, cfg)
	return app, db, cfg
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", middleware.AccessTokenCookie+"="+cookie)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body), "body was: %s", data)
	return body
}

// sessionCookie extracts the access_token value from Set-Cookie headers.
func sessionCookie(resp *http.Response) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			return c.Value, true
		}
	}
	return "", false
}

// createActiveUser seeds a verified account and returns it with a valid
// session token.
func createActiveUser(t *testing.T, db *gorm.DB, cfg *config.Config, email string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: hash,
		Role:         models.RoleMember,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.Email, cfg.TokenExpires)
	require.NoError(t, err)
	return user, token
}
