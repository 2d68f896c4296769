package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Mailer *utils.Mailer
}

func NewTaskController(db *gorm.DB, logger *log.Logger, mailer *utils.Mailer) *TaskController {
	return &TaskController{DB: db, Logger: logger, Mailer: mailer}
}

// CreateTask assigns work against a booking to a group. The booking's
// GroupBooking is an upsert keyed by the booking: the first assignment
// creates it, later ones update it in place. At most one exists per
// booking; the unique index backs that under races.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	var input struct {
		Title       string `json:"title" form:"title" validate:"required,max=200"`
		Description string `json:"description" form:"description"`
		DueDate     string `json:"due_date" form:"due_date" validate:"required"`
		BookingID   uint   `json:"booking_id" form:"booking_id" validate:"required"`
		GroupID     uint   `json:"group_id" form:"group_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	dueDate, err := utils.ParseTodayOrLaterDate(input.DueDate)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	var booking models.Booking
	if err := tc.DB.Preload("Owner").Preload("Service").First(&booking, input.BookingID).Error; err != nil {
		return utils.NotFoundResponse(c, "Booking")
	}
	var group models.Group
	if err := tc.DB.First(&group, input.GroupID).Error; err != nil {
		return utils.NotFoundResponse(c, "Group")
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     dueDate,
		BookingID:   booking.ID,
	}

	firstAssignment := false
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		var groupBooking models.GroupBooking
		err := tx.Where("booking_id = ?", booking.ID).First(&groupBooking).Error
		switch {
		case err == nil:
			groupBooking.GroupID = group.ID
			groupBooking.DueDate = dueDate
			if err := tx.Save(&groupBooking).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			firstAssignment = true
			groupBooking = models.GroupBooking{
				GroupID:   group.ID,
				BookingID: booking.ID,
				DueDate:   dueDate,
			}
			if err := tx.Create(&groupBooking).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if booking.Status == models.BookingRequested {
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", models.BookingAssigned).Error; err != nil {
				return err
			}
		}

		return tx.Create(&task).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	if firstAssignment {
		go func() {
			if err := tc.Mailer.Send(booking.Owner.Email, "booking_assigned", utils.MailData{
				Subject:     "Your booking has been assigned",
				Name:        booking.Owner.Username,
				ServiceName: booking.Service.Name,
				GroupName:   group.Name,
				DueDate:     dueDate.Format(utils.DateLayout),
			}); err != nil {
				tc.Logger.Printf("assignment notification failed: %v", err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// ListTasks is role-scoped: admin sees every task due today or later,
// staff only those routed to a group they lead or belong to, both in
// ascending due-date order. Regular users are denied.
func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if !user.Role.HasStaff() {
		return utils.ForbiddenResponse(c)
	}

	query := tc.DB.Preload("Booking").Preload("Booking.Service").
		Where("tasks.due_date >= ?", utils.Today()).
		Order("tasks.due_date asc")

	if !user.Role.IsAdmin() {
		query = query.
			Joins("JOIN group_bookings ON group_bookings.booking_id = tasks.booking_id AND group_bookings.deleted_at IS NULL").
			Joins("JOIN groups ON groups.id = group_bookings.group_id").
			Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
			Where("group_members.user_id = ? OR groups.leader_id = ?", user.ID, user.ID).
			Distinct("tasks.*")
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tasks", err)
	}
	return c.JSON(utils.SuccessResponse(tasks))
}

// UpdateTask re-validates the date format but, unlike creation, does not
// re-check that it lies in the future.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Task")
	}

	var input struct {
		Title       string `json:"title" form:"title" validate:"required,max=200"`
		Description string `json:"description" form:"description"`
		DueDate     string `json:"due_date" form:"due_date" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	dueDate, err := utils.ParseDate(input.DueDate)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = dueDate

	if err := tc.DB.Save(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}
	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Task")
	}

	if err := tc.DB.Unscoped().Delete(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Task deleted successfully",
	}))
}
