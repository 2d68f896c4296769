package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

type BookingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBookingController(db *gorm.DB, logger *log.Logger) *BookingController {
	return &BookingController{DB: db, Logger: logger}
}

type bookingInput struct {
	ServiceID uint   `json:"service_id" form:"service_id" validate:"required"`
	DueDate   string `json:"due_date" form:"due_date" validate:"required"`
	// OwnerID is honored only for admin callers on update.
	OwnerID uint `json:"owner_id" form:"owner_id"`
}

// CreateBooking files a request for a service. The due date must be
// strictly in the future; today is rejected.
func (bc *BookingController) CreateBooking(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input bookingInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	dueDate, err := utils.ParseFutureDate(input.DueDate)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	var service models.Service
	if err := bc.DB.First(&service, input.ServiceID).Error; err != nil {
		return utils.NotFoundResponse(c, "Service")
	}

	booking := models.Booking{
		OwnerID:   user.ID,
		ServiceID: service.ID,
		DueDate:   dueDate,
		Status:    models.BookingRequested,
	}
	if err := bc.DB.Create(&booking).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create booking", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(booking))
}

// ListBookings is role-scoped: owners see their own, staff and admin see
// everything.
func (bc *BookingController) ListBookings(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := bc.DB.Preload("Service").Preload("GroupBooking").Order("due_date asc")
	if !user.Role.HasStaff() {
		query = query.Where("owner_id = ?", user.ID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list bookings", err)
	}
	return c.JSON(utils.SuccessResponse(bookings))
}

func (bc *BookingController) GetBooking(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var booking models.Booking
	err := bc.DB.Preload("Service").Preload("GroupBooking").Preload("GroupBooking.Report").
		First(&booking, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return utils.NotFoundResponse(c, "Booking")
	}

	if booking.OwnerID != user.ID && !user.Role.HasStaff() {
		return utils.ForbiddenResponse(c)
	}
	return c.JSON(utils.SuccessResponse(booking))
}

// UpdateBooking re-validates the due date the same way creation does.
// Admin may also reassign the owner.
func (bc *BookingController) UpdateBooking(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var booking models.Booking
	if err := bc.DB.First(&booking, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Booking")
	}

	if booking.OwnerID != user.ID && !user.Role.IsAdmin() {
		return utils.ForbiddenResponse(c)
	}

	var input bookingInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	dueDate, err := utils.ParseFutureDate(input.DueDate)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	var service models.Service
	if err := bc.DB.First(&service, input.ServiceID).Error; err != nil {
		return utils.NotFoundResponse(c, "Service")
	}

	booking.ServiceID = service.ID
	booking.DueDate = dueDate
	if user.Role.IsAdmin() && input.OwnerID != 0 {
		var owner models.User
		if err := bc.DB.First(&owner, input.OwnerID).Error; err != nil {
			return utils.NotFoundResponse(c, "User")
		}
		booking.OwnerID = owner.ID
	}

	if err := bc.DB.Save(&booking).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update booking", err)
	}
	return c.JSON(utils.SuccessResponse(booking))
}

// DeleteBooking: the owner may delete their own unclosed booking, admin
// may always delete, staff is explicitly barred.
func (bc *BookingController) DeleteBooking(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var booking models.Booking
	if err := bc.DB.First(&booking, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.NotFoundResponse(c, "Booking")
	}

	switch {
	case user.Role.IsAdmin():
	case booking.OwnerID == user.ID && !user.Role.HasStaff():
		if booking.Status == models.BookingClosed {
			return utils.ForbiddenResponse(c)
		}
	default:
		return utils.ForbiddenResponse(c)
	}

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteBookingCascade(tx, &booking)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete booking", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Booking deleted successfully",
	}))
}

// deleteBookingCascade removes a booking with its assignment record,
// tasks, and report inside the caller's transaction. Deletes are hard:
// a soft-deleted GroupBooking would keep occupying the unique index on
// booking_id and block any later reassignment.
func deleteBookingCascade(tx *gorm.DB, booking *models.Booking) error {
	var groupBooking models.GroupBooking
	err := tx.Where("booking_id = ?", booking.ID).First(&groupBooking).Error
	if err == nil {
		if err := tx.Unscoped().Where("group_booking_id = ?", groupBooking.ID).Delete(&models.GroupReport{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&groupBooking).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := tx.Unscoped().Where("booking_id = ?", booking.ID).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(booking).Error
}
