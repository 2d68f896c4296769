package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type GroupController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewGroupController(db *gorm.DB, logger *log.Logger) *GroupController {
	return &GroupController{DB: db, Logger: logger}
}

type groupInput struct {
	Name      string `json:"name" form:"name" validate:"required,max=100"`
	LeaderID  *uint  `json:"leader_id" form:"leader_id"`
	MemberIDs []uint `json:"member_ids" form:"member_ids"`
}

// resolveLeader enforces that a leader, if set, holds staff privilege.
func (gc *GroupController) resolveLeader(leaderID *uint) (*models.User, error) {
	if leaderID == nil {
		return nil, nil
	}
	var leader models.User
	if err := gc.DB.First(&leader, *leaderID).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

// ListGroups: admin sees all groups, staff see the ones they lead or
// belong to.
func (gc *GroupController) ListGroups(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := gc.DB.Preload("Leader").Preload("Members").Preload("Members.User")
	if !user.Role.IsAdmin() {
		query = query.
			Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
			Where("groups.leader_id = ? OR group_members.user_id = ?", user.ID, user.ID).
			Distinct("groups.*")
	}

	var groups []models.Group
	if err := query.Find(&groups).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list groups", err)
	}
	return c.JSON(utils.SuccessResponse(groups))
}

func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var input groupInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	leader, err := gc.resolveLeader(input.LeaderID)
	if err != nil {
		return utils.NotFoundResponse(c, "Leader")
	}
	if leader != nil && !leader.Role.HasStaff() {
		return utils.ValidationErrorResponse(c, "Group leader must hold staff privilege", input)
	}

	group := models.Group{Name: input.Name, LeaderID: input.LeaderID}
	err = gc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return replaceMembers(tx, &group, input.MemberIDs)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create group", err)
	}

	gc.Logger.Printf("admin created group %d (%s)", group.ID, group.Name)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(group))
}

// UpdateGroup lets the group's leader or an admin edit name, leader, and
// roster. Other staff and members are denied.
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var group models.Group
	if err := gc.DB.First(&group, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Group")
	}

	isLeader := group.LeaderID != nil && *group.LeaderID == user.ID
	if !isLeader && !user.Role.IsAdmin() {
		return utils.ForbiddenResponse(c)
	}

	var input groupInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	leader, err := gc.resolveLeader(input.LeaderID)
	if err != nil {
		return utils.NotFoundResponse(c, "Leader")
	}
	if leader != nil && !leader.Role.HasStaff() {
		return utils.ValidationErrorResponse(c, "Group leader must hold staff privilege", input)
	}

	group.Name = input.Name
	group.LeaderID = input.LeaderID

	err = gc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&group).Error; err != nil {
			return err
		}
		return replaceMembers(tx, &group, input.MemberIDs)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update group", err)
	}

	return c.JSON(utils.SuccessResponse(group))
}

// DeleteGroup cascades to assignment records and transitively to their
// tasks and reports.
func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	var group models.Group
	if err := gc.DB.First(&group, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Group")
	}

	err := gc.DB.Transaction(func(tx *gorm.DB) error {
		var groupBookings []models.GroupBooking
		if err := tx.Where("group_id = ?", group.ID).Find(&groupBookings).Error; err != nil {
			return err
		}
		for _, gb := range groupBookings {
			if err := tx.Unscoped().Where("group_booking_id = ?", gb.ID).Delete(&models.GroupReport{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("booking_id = ?", gb.BookingID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
			// The booking itself survives and drops back to requested.
			if err := tx.Model(&models.Booking{}).Where("id = ?", gb.BookingID).
				Update("status", models.BookingRequested).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&gb).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("group_id = ?", group.ID).Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&group).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete group", err)
	}

	gc.Logger.Printf("admin deleted group %d (%s)", group.ID, group.Name)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Group deleted successfully",
	}))
}

// replaceMembers swaps the roster for the given user ids. Unknown ids
// are rejected rather than silently skipped.
func replaceMembers(tx *gorm.DB, group *models.Group, memberIDs []uint) error {
	if memberIDs == nil {
		return nil
	}
	if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}
	for _, userID := range memberIDs {
		var member models.User
		if err := tx.First(&member, userID).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.GroupMember{GroupID: group.ID, UserID: userID}).Error; err != nil {
			return err
		}
	}
	return nil
}
