package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"techpals/config"
	"techpals/models"
	"techpals/routes"
	"techpals/utils"
)

// setupApp wires a fresh in-memory database and a fiber app with the
// full route table, mirroring main.go without the network listener.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))

	config.DB = db
	config.Redis = nil
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.UploadDir = t.TempDir()

	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, models.CreateUserWithProfile(db, user))
	return user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(user)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func doForm(t *testing.T, app *fiber.App, method, path, token string, form map[string]string) *http.Response {
	t.Helper()

	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+v)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(strings.Join(values, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	return body
}
