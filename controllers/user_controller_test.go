package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techpals/models"
)

func TestUserManagementAdminOnly(t *testing.T) {
	app, db := setupApp(t)
	staff := createUser(t, db, "worker", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)

	for _, user := range []*models.User{staff, alice} {
		resp := doJSON(t, app, "GET", "/users", tokenFor(t, user), nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "user %s", user.Username)
	}
}

func TestAdminCreatesUserWithRole(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)

	resp := doJSON(t, app, "POST", "/users", tokenFor(t, admin), map[string]string{
		"username": "newstaff",
		"email":    "newstaff@example.com",
		"password": "password123",
		"role":     "staff",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("username = ?", "newstaff").First(&user).Error)
	assert.Equal(t, models.RoleStaff, user.Role)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdminCreateUserRejectsUnknownRole(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)

	resp := doJSON(t, app, "POST", "/users", tokenFor(t, admin), map[string]string{
		"username": "weird",
		"email":    "weird@example.com",
		"password": "password123",
		"role":     "superuser",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "weird").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminUpdatesUserRole(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	alice := createUser(t, db, "alice", models.RoleRegular)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/users/%d", alice.ID), tokenFor(t, admin), map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"role":     "staff",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, db.First(&updated, alice.ID).Error)
	assert.Equal(t, models.RoleStaff, updated.Role)
}

func TestAdminUpdateUserDuplicateUsername(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	createUser(t, db, "alice", models.RoleRegular)
	bob := createUser(t, db, "bob", models.RoleRegular)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/users/%d", bob.ID), tokenFor(t, admin), map[string]string{
		"username": "alice",
		"email":    "bob@example.com",
		"role":     "regular",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var unchanged models.User
	require.NoError(t, db.First(&unchanged, bob.ID).Error)
	assert.Equal(t, "bob", unchanged.Username)
}

func TestAdminDeletesUserFreesIdentity(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	alice := createUser(t, db, "alice", models.RoleRegular)
	svc := createService(t, db, "Tutoring")
	booking := createBooking(t, db, alice, svc)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/users/%d", alice.ID), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Owned bookings go with the account.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The username and email are free for a new registration right away.
	resp = doJSON(t, app, "POST", "/auth/register", "", map[string]string{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestListUsersIncludesProfiles(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	createUser(t, db, "alice", models.RoleRegular)

	resp := doJSON(t, app, "GET", "/users", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.NotNil(t, first["profile"])
}
