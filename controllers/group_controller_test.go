package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"techpals/models"
)

func createGroup(t *testing.T, db *gorm.DB, name string, leader *models.User, members ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	if leader != nil {
		group.LeaderID = &leader.ID
	}
	require.NoError(t, db.Create(group).Error)
	for _, member := range members {
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: member.ID}).Error)
	}
	return group
}

func TestCreateGroupAdminOnly(t *testing.T) {
	app, db := setupApp(t)
	staff := createUser(t, db, "worker", models.RoleStaff)
	admin := createUser(t, db, "root", models.RoleAdmin)

	payload := map[string]interface{}{"name": "Team A", "leader_id": staff.ID}

	resp := doJSON(t, app, "POST", "/groups", tokenFor(t, staff), payload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/groups", tokenFor(t, admin), payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateGroupLeaderMustBeStaff(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	regular := createUser(t, db, "alice", models.RoleRegular)

	resp := doJSON(t, app, "POST", "/groups", tokenFor(t, admin), map[string]interface{}{
		"name":      "Team A",
		"leader_id": regular.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Group leader must hold staff privilege", body["error"])

	var count int64
	require.NoError(t, db.Model(&models.Group{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateGroupWithRoster(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	leader := createUser(t, db, "leader", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)
	bob := createUser(t, db, "bob", models.RoleRegular)

	resp := doJSON(t, app, "POST", "/groups", tokenFor(t, admin), map[string]interface{}{
		"name":       "Team A",
		"leader_id":  leader.ID,
		"member_ids": []uint{alice.ID, bob.ID},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.GroupMember{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpdateGroupLeaderOrAdmin(t *testing.T) {
	app, db := setupApp(t)
	leader := createUser(t, db, "leader", models.RoleStaff)
	otherStaff := createUser(t, db, "worker", models.RoleStaff)
	admin := createUser(t, db, "root", models.RoleAdmin)
	alice := createUser(t, db, "alice", models.RoleRegular)
	group := createGroup(t, db, "Team A", leader, alice)

	path := fmt.Sprintf("/groups/%d", group.ID)
	payload := map[string]interface{}{"name": "Team A renamed", "leader_id": leader.ID}

	resp := doJSON(t, app, "PUT", path, tokenFor(t, otherStaff), payload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "PUT", path, tokenFor(t, alice), payload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "members do not manage the group")

	resp = doJSON(t, app, "PUT", path, tokenFor(t, leader), payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "PUT", path, tokenFor(t, admin), payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Group
	require.NoError(t, db.First(&updated, group.ID).Error)
	assert.Equal(t, "Team A renamed", updated.Name)
}

func TestUpdateGroupReplacesRoster(t *testing.T) {
	app, db := setupApp(t)
	leader := createUser(t, db, "leader", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)
	bob := createUser(t, db, "bob", models.RoleRegular)
	group := createGroup(t, db, "Team A", leader, alice)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/groups/%d", group.ID), tokenFor(t, leader), map[string]interface{}{
		"name":       "Team A",
		"leader_id":  leader.ID,
		"member_ids": []uint{bob.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var members []models.GroupMember
	require.NoError(t, db.Where("group_id = ?", group.ID).Find(&members).Error)
	require.Len(t, members, 1)
	assert.Equal(t, bob.ID, members[0].UserID)
}

func TestUpdateGroupRejectsUnknownMember(t *testing.T) {
	app, db := setupApp(t)
	leader := createUser(t, db, "leader", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)
	group := createGroup(t, db, "Team A", leader, alice)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/groups/%d", group.ID), tokenFor(t, leader), map[string]interface{}{
		"name":       "Team A",
		"leader_id":  leader.ID,
		"member_ids": []uint{99999},
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The roster swap runs in a transaction, so the old roster survives.
	var members []models.GroupMember
	require.NoError(t, db.Where("group_id = ?", group.ID).Find(&members).Error)
	require.Len(t, members, 1)
	assert.Equal(t, alice.ID, members[0].UserID)
}

func TestListGroupsScoped(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	leader := createUser(t, db, "leader", models.RoleStaff)
	otherStaff := createUser(t, db, "worker", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)

	createGroup(t, db, "Led", leader)
	createGroup(t, db, "Joined", otherStaff, leader)
	createGroup(t, db, "Unrelated", otherStaff, alice)

	resp := doJSON(t, app, "GET", "/groups", tokenFor(t, leader), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["data"], 2, "staff sees led and joined groups only")

	resp = doJSON(t, app, "GET", "/groups", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Len(t, body["data"], 3)
}

func TestDeleteGroupCascades(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	leader := createUser(t, db, "leader", models.RoleStaff)
	alice := createUser(t, db, "alice", models.RoleRegular)
	svc := createService(t, db, "Tutoring")
	booking := createBooking(t, db, alice, svc)
	require.NoError(t, db.Model(booking).Update("status", models.BookingAssigned).Error)

	group := createGroup(t, db, "Team A", leader, alice)
	gb := &models.GroupBooking{GroupID: group.ID, BookingID: booking.ID, DueDate: booking.DueDate}
	require.NoError(t, db.Create(gb).Error)
	require.NoError(t, db.Create(&models.Task{Title: "Prepare", BookingID: booking.ID, DueDate: booking.DueDate}).Error)
	require.NoError(t, db.Create(&models.GroupMessage{GroupID: group.ID, SenderID: alice.ID, Content: "hello"}).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/groups/%d", group.ID), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, model := range []interface{}{&models.Group{}, &models.GroupBooking{}, &models.GroupMember{}, &models.GroupMessage{}, &models.Task{}} {
		var count int64
		require.NoError(t, db.Unscoped().Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	// The booking survives the group and is open for reassignment.
	var survivor models.Booking
	require.NoError(t, db.First(&survivor, booking.ID).Error)
	assert.Equal(t, models.BookingRequested, survivor.Status)
}
