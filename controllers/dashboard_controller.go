package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{DB: db, Logger: logger}
}

// GetDashboard picks the landing payload purely by role, evaluated
// top-down: admin first, then staff, else regular.
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	switch {
	case user.Role.IsAdmin():
		return dc.adminDashboard(c)
	case user.Role.HasStaff():
		return dc.staffDashboard(c, user)
	default:
		return dc.userDashboard(c, user)
	}
}

func (dc *DashboardController) adminDashboard(c *fiber.Ctx) error {
	counts := fiber.Map{}
	for name, model := range map[string]interface{}{
		"users":    &models.User{},
		"services": &models.Service{},
		"bookings": &models.Booking{},
		"groups":   &models.Group{},
		"tasks":    &models.Task{},
		"posts":    &models.Post{},
	} {
		var count int64
		if err := dc.DB.Model(model).Count(&count).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard", err)
		}
		counts[name] = count
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"dashboard": "admin",
		"counts":    counts,
	}))
}

func (dc *DashboardController) staffDashboard(c *fiber.Ctx, user *models.User) error {
	var groups []models.Group
	err := dc.DB.
		Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
		Where("groups.leader_id = ? OR group_members.user_id = ?", user.ID, user.ID).
		Distinct("groups.*").
		Find(&groups).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard", err)
	}

	var tasks []models.Task
	err = dc.DB.
		Joins("JOIN group_bookings ON group_bookings.booking_id = tasks.booking_id AND group_bookings.deleted_at IS NULL").
		Joins("JOIN groups ON groups.id = group_bookings.group_id").
		Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? OR groups.leader_id = ?", user.ID, user.ID).
		Where("tasks.due_date >= ?", utils.Today()).
		Order("tasks.due_date asc").
		Distinct("tasks.*").
		Find(&tasks).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"dashboard": "staff",
		"groups":    groups,
		"tasks":     tasks,
	}))
}

func (dc *DashboardController) userDashboard(c *fiber.Ctx, user *models.User) error {
	var bookings []models.Booking
	err := dc.DB.Preload("Service").
		Where("owner_id = ?", user.ID).
		Order("due_date asc").
		Find(&bookings).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"dashboard": "user",
		"bookings":  bookings,
	}))
}
